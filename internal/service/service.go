package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lei/plr-summary/internal/models"
	"github.com/lei/plr-summary/internal/provider"
	"github.com/lei/plr-summary/internal/summary"
	"github.com/lei/plr-summary/internal/watch"
	"github.com/lei/plr-summary/pkg/logger"
)

var (
	// ErrViewNotFound indicates the requested view doesn't exist
	ErrViewNotFound = errors.New("view not found")
	// ErrRunNotFound indicates the requested pipeline run doesn't exist. It is
	// the provider sentinel so callers like the watch poller can match either.
	ErrRunNotFound = provider.ErrRunNotFound
	// ErrHistoryDisabled indicates no history store is configured
	ErrHistoryDisabled = errors.New("summary history is disabled")
)

// HistoryStore persists summaries over time
type HistoryStore interface {
	Record(ctx context.Context, s models.Summary) (bool, error)
	History(ctx context.Context, namespace, name string, limit int) ([]models.SummaryRecord, error)
	Ping(ctx context.Context) error
}

// healthChecker is implemented by providers that can report connectivity
type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Options tunes how summaries are produced
type Options struct {
	SnippetBudget int
	LogTailLines  int
	WatchInterval time.Duration
	Now           func() time.Time
}

// Service coordinates business logic between API and provider layers
type Service struct {
	views    map[string]*models.View
	order    []string
	provider provider.Provider
	store    HistoryStore
	opts     Options
	logger   *logger.Logger
}

// NewService creates a new service instance. store may be nil to disable history.
func NewService(views []*models.View, prov provider.Provider, store HistoryStore, opts Options, log *logger.Logger) *Service {
	viewMap := make(map[string]*models.View, len(views))
	order := make([]string, 0, len(views))
	for _, v := range views {
		if _, dup := viewMap[v.ViewID]; !dup {
			order = append(order, v.ViewID)
		}
		viewMap[v.ViewID] = v
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Service{
		views:    viewMap,
		order:    order,
		provider: prov,
		store:    store,
		opts:     opts,
		logger:   log,
	}
}

// getLogger retrieves logger from context or falls back to service logger
func (s *Service) getLogger(ctx context.Context) *logger.Logger {
	if ctxLogger := logger.FromContext(ctx); ctxLogger != nil {
		return ctxLogger
	}
	return s.logger
}

// summarizeOptions returns the options shared by every Summarize call
func (s *Service) summarizeOptions(related []models.PipelineRun) []summary.Option {
	return []summary.Option{
		summary.WithClock(s.opts.Now),
		summary.WithSnippetBudget(s.opts.SnippetBudget),
		summary.WithRelated(related),
	}
}

// Summary builds the summary of a single PipelineRun, including the log tail
// of failed TaskRuns, and records it in the history store
func (s *Service) Summary(ctx context.Context, namespace, name string) (*models.Summary, error) {
	logger := s.getLogger(ctx)
	ref := provider.RunRef{Namespace: namespace, Name: name}

	logger.Debug("service: summarizing pipeline run", "run_id", ref.ID())

	pr, err := s.provider.GetPipelineRun(ctx, ref)
	if err != nil {
		if errors.Is(err, provider.ErrRunNotFound) {
			logger.Debug("service: pipeline run not found", "run_id", ref.ID())
			return nil, ErrRunNotFound
		}
		logger.Error("service: provider get pipeline run failed", "run_id", ref.ID(), "error", err)
		return nil, fmt.Errorf("get pipeline run: %w", err)
	}

	taskRuns, err := s.provider.ListTaskRuns(ctx, ref)
	if err != nil {
		logger.Error("service: provider list task runs failed", "run_id", ref.ID(), "error", err)
		return nil, fmt.Errorf("list task runs: %w", err)
	}

	s.attachLogs(ctx, taskRuns)
	related := s.relatedCandidates(ctx, pr)

	result := summary.Summarize(pr, taskRuns, s.summarizeOptions(related)...)

	s.record(ctx, result)

	logger.Info("service: pipeline run summarized",
		"run_id", ref.ID(),
		"status", result.Status,
		"task_runs", len(taskRuns),
		"related", result.RelatedCount)

	return &result, nil
}

// attachLogs fetches the log tail of every failed TaskRun. Failures only
// degrade the snippet.
func (s *Service) attachLogs(ctx context.Context, taskRuns []models.TaskRun) {
	logger := s.getLogger(ctx)

	for i := range taskRuns {
		tr := &taskRuns[i]
		if summary.TaskRunStatus(tr) != models.StatusFailed {
			continue
		}

		text, err := s.provider.TaskRunLog(ctx, tr, s.opts.LogTailLines)
		if err != nil {
			if errors.Is(err, provider.ErrLogUnavailable) {
				logger.Debug("service: task run log unavailable", "task_run", tr.Metadata.Name)
			} else {
				logger.Warn("service: failed to fetch task run log",
					"task_run", tr.Metadata.Name,
					"error", err)
			}
			continue
		}
		tr.Log = &models.LogContent{Ref: tr.Status.PodName, Text: text}
	}
}

// relatedCandidates lists runs that may share a commit or snapshot with pr.
// Errors are logged and yield no candidates.
func (s *Service) relatedCandidates(ctx context.Context, pr *models.PipelineRun) []models.PipelineRun {
	logger := s.getLogger(ctx)

	selector, ok := relatedSelector(pr)
	if !ok {
		return nil
	}

	runs, err := s.provider.ListPipelineRuns(ctx, pr.Metadata.Namespace, selector)
	if err != nil {
		logger.Warn("service: failed to list related pipeline runs",
			"run_id", provider.RefOf(pr).ID(),
			"selector", selector,
			"error", err)
		return nil
	}
	return runs
}

// relatedSelector narrows the related-run listing to the label carrying the
// relation key, falling back to the application label when the key only
// appears in annotations or results
func relatedSelector(pr *models.PipelineRun) (string, bool) {
	labels := pr.Metadata.Labels

	label, key := models.LabelCommitSHA, summary.CommitSHA(pr)
	if labels.Value(models.LabelRunType) == models.RunTypeTest {
		if snapshot := summary.Snapshot(pr); snapshot != "" {
			label, key = models.LabelSnapshot, snapshot
		}
	}
	if key == "" {
		return "", false
	}

	if labels.Value(label) == key {
		return label + "=" + key, true
	}
	if app := labels.Value(models.LabelApplication); app != "" {
		return models.LabelApplication + "=" + app, true
	}
	return "", true
}

func (s *Service) record(ctx context.Context, result models.Summary) {
	if s.store == nil {
		return
	}
	logger := s.getLogger(ctx)

	recorded, err := s.store.Record(ctx, result)
	if err != nil {
		logger.Warn("service: failed to record summary",
			"run_id", result.Namespace+"/"+result.Name,
			"error", err)
		return
	}
	if recorded {
		logger.Debug("service: summary recorded",
			"run_id", result.Namespace+"/"+result.Name,
			"status", result.Status)
	}
}

// ListSummaries summarizes every PipelineRun in namespace matching selector,
// newest first. Logs are not fetched for listings.
func (s *Service) ListSummaries(ctx context.Context, namespace, selector string) ([]models.Summary, error) {
	logger := s.getLogger(ctx)

	logger.Debug("service: listing summaries", "namespace", namespace, "selector", selector)

	runs, err := s.provider.ListPipelineRuns(ctx, namespace, selector)
	if err != nil {
		logger.Error("service: provider list pipeline runs failed",
			"namespace", namespace,
			"error", err)
		return nil, fmt.Errorf("list pipeline runs: %w", err)
	}

	summaries := make([]models.Summary, 0, len(runs))
	for i := range runs {
		pr := &runs[i]

		taskRuns, err := s.provider.ListTaskRuns(ctx, provider.RefOf(pr))
		if err != nil {
			logger.Warn("service: failed to list task runs, summarizing without them",
				"run_id", provider.RefOf(pr).ID(),
				"error", err)
			taskRuns = nil
		}
		summaries = append(summaries, summary.Summarize(pr, taskRuns, s.summarizeOptions(runs)...))
	}

	sortNewestFirst(summaries)

	logger.Info("service: summaries listed", "namespace", namespace, "count", len(summaries))
	return summaries, nil
}

func sortNewestFirst(summaries []models.Summary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].CreatedAt, summaries[j].CreatedAt
		switch {
		case a == nil && b == nil:
			return summaries[i].Name < summaries[j].Name
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.After(*b)
		default:
			return summaries[i].Name < summaries[j].Name
		}
	})
}

// History returns recorded summaries of a PipelineRun, newest first
func (s *Service) History(ctx context.Context, namespace, name string, limit int) ([]models.SummaryRecord, error) {
	logger := s.getLogger(ctx)

	if s.store == nil {
		return nil, ErrHistoryDisabled
	}

	records, err := s.store.History(ctx, namespace, name, limit)
	if err != nil {
		logger.Error("service: failed to read history",
			"run_id", namespace+"/"+name,
			"error", err)
		return nil, fmt.Errorf("read history: %w", err)
	}

	logger.Debug("service: history read", "run_id", namespace+"/"+name, "count", len(records))
	return records, nil
}

// Watch follows a PipelineRun until it finishes. The returned channel is
// closed when the run is terminal, disappears, or ctx is done.
func (s *Service) Watch(ctx context.Context, namespace, name string) <-chan watch.Event {
	poller := &watch.Poller{
		Interval: s.opts.WatchInterval,
		Logger:   s.getLogger(ctx),
	}
	return poller.Run(ctx, func(ctx context.Context) (models.Summary, error) {
		result, err := s.Summary(ctx, namespace, name)
		if err != nil {
			return models.Summary{}, err
		}
		return *result, nil
	})
}

// ListViews returns all configured views in configuration order
func (s *Service) ListViews(ctx context.Context) []*models.View {
	views := make([]*models.View, 0, len(s.order))
	for _, id := range s.order {
		views = append(views, s.views[id])
	}
	return views
}

// ViewSummaries summarizes the PipelineRuns selected by a view
func (s *Service) ViewSummaries(ctx context.Context, viewID string) (*models.View, []models.Summary, error) {
	logger := s.getLogger(ctx)

	view, exists := s.views[viewID]
	if !exists {
		logger.Debug("service: view not found", "view_id", viewID)
		return nil, nil, ErrViewNotFound
	}

	summaries, err := s.ListSummaries(ctx, view.Namespace, view.Selector)
	if err != nil {
		return nil, nil, err
	}
	return view, summaries, nil
}

// HealthCheck performs health checks on the service, provider and store
func (s *Service) HealthCheck(ctx context.Context) map[string]interface{} {
	logger := s.getLogger(ctx)

	health := map[string]interface{}{
		"status":  "healthy",
		"service": "plr-summary-gateway",
		"checks":  make(map[string]interface{}),
	}
	checks := health["checks"].(map[string]interface{})

	checks["view_config"] = map[string]interface{}{
		"status": "healthy",
		"count":  len(s.views),
	}

	// Create short timeout context for health check
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if hc, ok := s.provider.(healthChecker); ok {
		if err := hc.HealthCheck(healthCtx); err != nil {
			logger.Warn("provider health check failed", "error", err)
			checks["provider"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			health["status"] = "degraded"
		} else {
			checks["provider"] = map[string]interface{}{"status": "healthy"}
		}
	}

	if s.store == nil {
		checks["history"] = map[string]interface{}{"status": "disabled"}
	} else if err := s.store.Ping(healthCtx); err != nil {
		logger.Warn("history store health check failed", "error", err)
		checks["history"] = map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		}
		health["status"] = "degraded"
	} else {
		checks["history"] = map[string]interface{}{"status": "healthy"}
	}

	logger.Debug("health check completed", "status", health["status"])
	return health
}
