package models

import "time"

// ObjectMeta holds the Kubernetes metadata fields the gateway reads
type ObjectMeta struct {
	Name              string      `json:"name"`
	Namespace         string      `json:"namespace"`
	UID               string      `json:"uid,omitempty"`
	CreationTimestamp *time.Time  `json:"creationTimestamp,omitempty"`
	Labels            Labels      `json:"labels,omitempty"`
	Annotations       Annotations `json:"annotations,omitempty"`
}

// Condition is a Knative-style status condition
type Condition struct {
	Type               string     `json:"type"`
	Status             string     `json:"status"`
	Reason             string     `json:"reason,omitempty"`
	Message            string     `json:"message,omitempty"`
	LastTransitionTime *time.Time `json:"lastTransitionTime,omitempty"`
}

const (
	// ConditionSucceeded is the only condition type Tekton sets on runs
	ConditionSucceeded = "Succeeded"

	ConditionTrue    = "True"
	ConditionFalse   = "False"
	ConditionUnknown = "Unknown"
)

// Result is a named value published by a run on completion
type Result struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Well-known result names
const (
	ResultImageDigest     = "IMAGE_DIGEST"
	ResultImageURL        = "IMAGE_URL"
	ResultTestOutput      = "TEST_OUTPUT"
	ResultScanOutput      = "CLAIR_SCAN_RESULT"
	ResultChainsGitCommit = "CHAINS-GIT_COMMIT"
	ResultChainsGitURL    = "CHAINS-GIT_URL"
)

// PipelineRun is one execution of a pipeline
type PipelineRun struct {
	Metadata ObjectMeta        `json:"metadata"`
	Status   PipelineRunStatus `json:"status"`
}

// PipelineRunStatus is the observed state of a PipelineRun
type PipelineRunStatus struct {
	Conditions     []Condition `json:"conditions,omitempty"`
	StartTime      *time.Time  `json:"startTime,omitempty"`
	CompletionTime *time.Time  `json:"completionTime,omitempty"`
	Results        []Result    `json:"results,omitempty"`
}

// TaskRun is the execution of one pipeline task within a PipelineRun
type TaskRun struct {
	Metadata ObjectMeta    `json:"metadata"`
	Status   TaskRunStatus `json:"status"`

	// Log is filled in by the caller when a log tail has been fetched.
	Log *LogContent `json:"-"`
}

// TaskRunStatus is the observed state of a TaskRun
type TaskRunStatus struct {
	Conditions     []Condition `json:"conditions,omitempty"`
	StartTime      *time.Time  `json:"startTime,omitempty"`
	CompletionTime *time.Time  `json:"completionTime,omitempty"`
	Results        []Result    `json:"results,omitempty"`
	PodName        string      `json:"podName,omitempty"`
	Steps          []StepState `json:"steps,omitempty"`
}

// StepState is the state of a single step container
type StepState struct {
	Name       string          `json:"name"`
	Container  string          `json:"container,omitempty"`
	Terminated *StepTerminated `json:"terminated,omitempty"`
}

// StepTerminated describes a finished step container
type StepTerminated struct {
	ExitCode int32  `json:"exitCode"`
	Reason   string `json:"reason,omitempty"`
	Message  string `json:"message,omitempty"`
}

// LogContent references the log of a TaskRun and, when fetched, its tail
type LogContent struct {
	Ref  string `json:"ref,omitempty"`
	Text string `json:"text,omitempty"`
}

// SucceededCondition returns the Succeeded condition, if any
func (pr *PipelineRun) SucceededCondition() *Condition {
	return findSucceeded(pr.Status.Conditions)
}

// SucceededCondition returns the Succeeded condition, if any
func (tr *TaskRun) SucceededCondition() *Condition {
	return findSucceeded(tr.Status.Conditions)
}

// PipelineTaskName returns the pipeline task this TaskRun executes, falling
// back to the TaskRun name
func (tr *TaskRun) PipelineTaskName() string {
	if name := tr.Metadata.Labels.Value(LabelPipelineTask); name != "" {
		return name
	}
	return tr.Metadata.Name
}

// FailedStep returns the first step that terminated with a non-zero exit code
func (tr *TaskRun) FailedStep() *StepState {
	for i := range tr.Status.Steps {
		s := &tr.Status.Steps[i]
		if s.Terminated != nil && s.Terminated.ExitCode != 0 {
			return s
		}
	}
	return nil
}

// ResultValue looks up a result by name
func ResultValue(results []Result, name string) (string, bool) {
	for _, r := range results {
		if r.Name == name {
			return r.Value, true
		}
	}
	return "", false
}

func findSucceeded(conds []Condition) *Condition {
	for i := range conds {
		if conds[i].Type == ConditionSucceeded {
			return &conds[i]
		}
	}
	return nil
}
