package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrRunNotFound indicates the pipeline run doesn't exist in the cluster
	ErrRunNotFound = errors.New("pipeline run not found")

	// ErrUnauthorized indicates cluster authentication failed
	ErrUnauthorized = errors.New("cluster authentication failed")

	// ErrProviderUnavailable indicates the cluster API is temporarily unavailable
	ErrProviderUnavailable = errors.New("cluster API temporarily unavailable")

	// ErrLogUnavailable indicates a TaskRun has no pod log to read
	ErrLogUnavailable = errors.New("task run log unavailable")
)

// ProviderError represents a cluster API error response
type ProviderError struct {
	Code    int
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider error %d: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
