package kube

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/lei/plr-summary/internal/models"
	"github.com/lei/plr-summary/internal/provider"
)

var errUnavailable = provider.ErrProviderUnavailable

// apiStatus is the Kubernetes Status object returned on errors
type apiStatus struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Reason  string `json:"reason"`
	Code    int    `json:"code"`
}

// parseError converts HTTP error responses to provider errors
func parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	switch resp.StatusCode {
	case http.StatusNotFound:
		return provider.ErrRunNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return provider.ErrUnauthorized
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return provider.ErrProviderUnavailable
	default:
		var status apiStatus
		if json.Unmarshal(body, &status) == nil && status.Message != "" {
			return &provider.ProviderError{
				Code:    resp.StatusCode,
				Message: status.Message,
			}
		}

		return &provider.ProviderError{
			Code:    resp.StatusCode,
			Message: string(body),
		}
	}
}

// logContainer picks the step container whose log best explains the TaskRun:
// the first failed step, else the last step
func logContainer(tr *models.TaskRun) string {
	step := tr.FailedStep()
	if step == nil && len(tr.Status.Steps) > 0 {
		step = &tr.Status.Steps[len(tr.Status.Steps)-1]
	}
	if step == nil {
		return ""
	}
	if step.Container != "" {
		return step.Container
	}
	return "step-" + step.Name
}

// taskRunSelector selects the TaskRuns owned by a PipelineRun
func taskRunSelector(pipelineRun string) string {
	return models.LabelPipelineRun + "=" + pipelineRun
}

func isNotFound(err error) bool {
	return errors.Is(err, provider.ErrRunNotFound)
}
