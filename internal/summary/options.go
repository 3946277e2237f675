package summary

import (
	"time"

	"github.com/lei/plr-summary/internal/models"
)

// DefaultSnippetBudget is the number of log characters kept in a snippet
const DefaultSnippetBudget = 1000

type options struct {
	now     func() time.Time
	budget  int
	related []models.PipelineRun
}

// Option configures Summarize
type Option func(*options)

// WithClock sets the clock used for elapsed durations of unfinished runs
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithSnippetBudget bounds the log snippet length in characters.
// Non-positive values keep the default.
func WithSnippetBudget(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.budget = n
		}
	}
}

// WithRelated supplies candidate runs for the related-pipelines count
func WithRelated(candidates []models.PipelineRun) Option {
	return func(o *options) {
		o.related = candidates
	}
}

func newOptions(opts []Option) options {
	o := options{
		now:    time.Now,
		budget: DefaultSnippetBudget,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
