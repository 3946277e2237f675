package provider

import (
	"context"

	"github.com/lei/plr-summary/internal/models"
)

// Provider abstracts read access to the cluster holding pipeline runs
type Provider interface {
	// GetPipelineRun retrieves a single PipelineRun
	GetPipelineRun(ctx context.Context, ref RunRef) (*models.PipelineRun, error)

	// ListPipelineRuns lists PipelineRuns in a namespace matching a label selector
	ListPipelineRuns(ctx context.Context, namespace, selector string) ([]models.PipelineRun, error)

	// ListTaskRuns lists the TaskRuns owned by a PipelineRun
	ListTaskRuns(ctx context.Context, ref RunRef) ([]models.TaskRun, error)

	// TaskRunLog returns the last tailLines lines of the failing (or last) step of a TaskRun
	TaskRunLog(ctx context.Context, tr *models.TaskRun, tailLines int) (string, error)
}

// RunRef identifies a PipelineRun
type RunRef struct {
	Namespace string
	Name      string
}

// ID returns the namespace/name form exposed to API clients
func (r RunRef) ID() string {
	return r.Namespace + "/" + r.Name
}

// RefOf returns the RunRef of a PipelineRun
func RefOf(pr *models.PipelineRun) RunRef {
	return RunRef{Namespace: pr.Metadata.Namespace, Name: pr.Metadata.Name}
}
