package kube

import (
	"context"
	"fmt"
	"time"

	"github.com/lei/plr-summary/internal/models"
	"github.com/lei/plr-summary/internal/provider"
	"github.com/lei/plr-summary/pkg/logger"
)

// Adapter implements the Provider interface for a Kubernetes cluster running Tekton
type Adapter struct {
	client *Client
	config *Config
	logger *logger.Logger
}

// Config contains cluster connection settings
type Config struct {
	URL                string
	Token              string
	TokenFile          string
	TokenRefresh       time.Duration
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// NewAdapter creates a new cluster adapter
func NewAdapter(cfg *Config, log *logger.Logger) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("cluster url is required")
	}
	refresh := cfg.TokenRefresh
	if refresh == 0 {
		refresh = time.Minute
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	tokens := NewTokenSource(cfg.Token, cfg.TokenFile, refresh)
	client := NewClient(cfg.URL, tokens, timeout, cfg.InsecureSkipVerify, log)

	return &Adapter{
		client: client,
		config: cfg,
		logger: log,
	}, nil
}

// getLogger retrieves logger from context or falls back to adapter logger
func (a *Adapter) getLogger(ctx context.Context) *logger.Logger {
	if ctxLogger := logger.FromContext(ctx); ctxLogger != nil {
		return ctxLogger
	}
	return a.logger
}

// GetPipelineRun implements Provider.GetPipelineRun
func (a *Adapter) GetPipelineRun(ctx context.Context, ref provider.RunRef) (*models.PipelineRun, error) {
	logger := a.getLogger(ctx)

	logger.Debug("provider: getting pipeline run",
		"namespace", ref.Namespace,
		"name", ref.Name)

	pr, err := a.client.GetPipelineRun(ctx, ref.Namespace, ref.Name)
	if err != nil {
		logger.Error("provider: failed to get pipeline run",
			"run_id", ref.ID(),
			"error", err)
		return nil, err
	}

	logger.Debug("provider: pipeline run retrieved",
		"run_id", ref.ID(),
		"conditions", len(pr.Status.Conditions))

	return pr, nil
}

// ListPipelineRuns implements Provider.ListPipelineRuns
func (a *Adapter) ListPipelineRuns(ctx context.Context, namespace, selector string) ([]models.PipelineRun, error) {
	logger := a.getLogger(ctx)

	logger.Debug("provider: listing pipeline runs",
		"namespace", namespace,
		"selector", selector)

	runs, err := a.client.ListPipelineRuns(ctx, namespace, selector)
	if err != nil {
		logger.Error("provider: failed to list pipeline runs",
			"namespace", namespace,
			"selector", selector,
			"error", err)
		return nil, fmt.Errorf("list pipeline runs: %w", err)
	}

	logger.Info("provider: pipeline runs listed",
		"namespace", namespace,
		"count", len(runs))

	return runs, nil
}

// ListTaskRuns implements Provider.ListTaskRuns
func (a *Adapter) ListTaskRuns(ctx context.Context, ref provider.RunRef) ([]models.TaskRun, error) {
	logger := a.getLogger(ctx)

	taskRuns, err := a.client.ListTaskRuns(ctx, ref.Namespace, taskRunSelector(ref.Name))
	if err != nil {
		logger.Error("provider: failed to list task runs",
			"run_id", ref.ID(),
			"error", err)
		return nil, fmt.Errorf("list task runs: %w", err)
	}

	logger.Debug("provider: task runs listed",
		"run_id", ref.ID(),
		"count", len(taskRuns))

	return taskRuns, nil
}

// TaskRunLog implements Provider.TaskRunLog
func (a *Adapter) TaskRunLog(ctx context.Context, tr *models.TaskRun, tailLines int) (string, error) {
	logger := a.getLogger(ctx)

	if tr.Status.PodName == "" {
		return "", provider.ErrLogUnavailable
	}
	container := logContainer(tr)

	logger.Debug("provider: fetching task run log",
		"task_run", tr.Metadata.Name,
		"pod", tr.Status.PodName,
		"container", container,
		"tail_lines", tailLines)

	text, err := a.client.PodLog(ctx, tr.Metadata.Namespace, tr.Status.PodName, container, tailLines)
	if err != nil {
		if isNotFound(err) {
			// Pods are garbage collected long before their TaskRuns
			return "", provider.ErrLogUnavailable
		}
		logger.Warn("provider: failed to fetch task run log",
			"task_run", tr.Metadata.Name,
			"error", err)
		return "", fmt.Errorf("fetch log: %w", err)
	}

	return text, nil
}

// HealthCheck verifies the API server is reachable
func (a *Adapter) HealthCheck(ctx context.Context) error {
	return a.client.Version(ctx)
}
