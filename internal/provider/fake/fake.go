// Package fake provides an in-memory Provider backed by PipelineRun and
// TaskRun objects loaded up front. It serves tests and offline summaries of
// manifests read from disk.
package fake

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/lei/plr-summary/internal/models"
	"github.com/lei/plr-summary/internal/provider"
)

// Provider is an in-memory provider.Provider
type Provider struct {
	mu           sync.RWMutex
	pipelineRuns map[provider.RunRef]models.PipelineRun
	taskRuns     map[provider.RunRef][]models.TaskRun
	logs         map[string]string
	errs         map[string]error
}

var _ provider.Provider = (*Provider)(nil)

// New creates an empty provider
func New() *Provider {
	return &Provider{
		pipelineRuns: make(map[provider.RunRef]models.PipelineRun),
		taskRuns:     make(map[provider.RunRef][]models.TaskRun),
		logs:         make(map[string]string),
		errs:         make(map[string]error),
	}
}

// AddPipelineRun stores or replaces a PipelineRun
func (p *Provider) AddPipelineRun(pr models.PipelineRun) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pipelineRuns[provider.RefOf(&pr)] = pr
}

// AddTaskRuns attaches TaskRuns to a PipelineRun, replacing any existing ones
func (p *Provider) AddTaskRuns(ref provider.RunRef, trs ...models.TaskRun) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.taskRuns[ref] = append([]models.TaskRun(nil), trs...)
}

// DeletePipelineRun removes a PipelineRun and its TaskRuns
func (p *Provider) DeletePipelineRun(ref provider.RunRef) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pipelineRuns, ref)
	delete(p.taskRuns, ref)
}

// SetLog sets the log text returned for a TaskRun
func (p *Provider) SetLog(namespace, taskRun, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logs[namespace+"/"+taskRun] = text
}

// FailOn makes the named operation return err until cleared with a nil err.
// Operation names match the Provider method names.
func (p *Provider) FailOn(op string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil {
		delete(p.errs, op)
		return
	}
	p.errs[op] = err
}

func (p *Provider) failure(op string) error {
	return p.errs[op]
}

// GetPipelineRun implements provider.Provider
func (p *Provider) GetPipelineRun(ctx context.Context, ref provider.RunRef) (*models.PipelineRun, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if err := p.failure("GetPipelineRun"); err != nil {
		return nil, err
	}
	pr, ok := p.pipelineRuns[ref]
	if !ok {
		return nil, provider.ErrRunNotFound
	}
	return &pr, nil
}

// ListPipelineRuns implements provider.Provider. Only equality selectors
// joined by commas are understood.
func (p *Provider) ListPipelineRuns(ctx context.Context, namespace, selector string) ([]models.PipelineRun, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if err := p.failure("ListPipelineRuns"); err != nil {
		return nil, err
	}

	want := parseSelector(selector)
	var runs []models.PipelineRun
	for ref, pr := range p.pipelineRuns {
		if ref.Namespace != namespace || !matches(pr.Metadata.Labels, want) {
			continue
		}
		runs = append(runs, pr)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Metadata.Name < runs[j].Metadata.Name
	})
	return runs, nil
}

// ListTaskRuns implements provider.Provider
func (p *Provider) ListTaskRuns(ctx context.Context, ref provider.RunRef) ([]models.TaskRun, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if err := p.failure("ListTaskRuns"); err != nil {
		return nil, err
	}
	return append([]models.TaskRun(nil), p.taskRuns[ref]...), nil
}

// TaskRunLog implements provider.Provider. Only the last tailLines lines of
// the stored text are returned when tailLines is positive.
func (p *Provider) TaskRunLog(ctx context.Context, tr *models.TaskRun, tailLines int) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if err := p.failure("TaskRunLog"); err != nil {
		return "", err
	}
	text, ok := p.logs[tr.Metadata.Namespace+"/"+tr.Metadata.Name]
	if !ok {
		return "", provider.ErrLogUnavailable
	}
	return lastLines(text, tailLines), nil
}

func parseSelector(selector string) map[string]string {
	want := make(map[string]string)
	for _, term := range strings.Split(selector, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(term), "=")
		if !ok || key == "" {
			continue
		}
		want[key] = value
	}
	return want
}

func matches(labels models.Labels, want map[string]string) bool {
	for k, v := range want {
		if got, ok := labels.Get(k); !ok || got != v {
			return false
		}
	}
	return true
}

func lastLines(text string, n int) string {
	if n <= 0 {
		return text
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) <= n {
		return text
	}
	return strings.Join(lines[len(lines)-n:], "\n") + "\n"
}
