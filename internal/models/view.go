package models

// View is a saved selection of PipelineRuns exposed by the gateway
type View struct {
	ViewID      string `json:"view_id"`
	DisplayName string `json:"display_name"`
	Namespace   string `json:"namespace"`
	Selector    string `json:"selector,omitempty"` // Kubernetes label selector
}
