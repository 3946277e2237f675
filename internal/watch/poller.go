// Package watch follows a PipelineRun until it finishes, emitting a new
// summary each time something a reader would notice has changed.
package watch

import (
	"context"
	"errors"
	"time"

	"github.com/lei/plr-summary/internal/models"
	"github.com/lei/plr-summary/internal/provider"
	"github.com/lei/plr-summary/pkg/logger"
)

// DefaultInterval is used when a Poller has no interval set
const DefaultInterval = 5 * time.Second

// FetchFunc produces the current summary of the watched run
type FetchFunc func(ctx context.Context) (models.Summary, error)

// Event is one update from a Poller. Exactly one of Summary or Err is set.
type Event struct {
	Summary *models.Summary
	Err     error
}

// Poller re-fetches a summary on a fixed interval
type Poller struct {
	Interval time.Duration
	Logger   *logger.Logger
}

// Run starts polling and returns the event channel. The first summary is
// always emitted; later ones only when they differ from the previous one.
// The channel is closed once the run reaches a terminal status, the run
// disappears, or ctx is done. Other fetch errors are emitted and polling
// continues.
func (p *Poller) Run(ctx context.Context, fetch FetchFunc) <-chan Event {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	log := p.Logger
	if log == nil {
		log = logger.Nop()
	}

	events := make(chan Event)
	go func() {
		defer close(events)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var last *models.Summary
		for {
			s, err := fetch(ctx)
			switch {
			case ctx.Err() != nil:
				return
			case err != nil:
				log.Warn("watch: fetch failed", "error", err)
				if !send(ctx, events, Event{Err: err}) || errors.Is(err, provider.ErrRunNotFound) {
					return
				}
			case last == nil || Changed(*last, s):
				last = &s
				if !send(ctx, events, Event{Summary: &s}) {
					return
				}
			}

			if last != nil && last.Status.IsTerminal() {
				log.Debug("watch: run finished", "status", last.Status)
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return events
}

func send(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Changed reports whether b differs from a in status, duration availability,
// failure snippet or any task's status
func Changed(a, b models.Summary) bool {
	if a.Status != b.Status || a.Reason != b.Reason || a.Duration.Available != b.Duration.Available {
		return true
	}
	if (a.LogSnippet == nil) != (b.LogSnippet == nil) {
		return true
	}
	if a.LogSnippet != nil && *a.LogSnippet != *b.LogSnippet {
		return true
	}
	if len(a.Tasks) != len(b.Tasks) {
		return true
	}
	for i := range a.Tasks {
		if a.Tasks[i].Name != b.Tasks[i].Name || a.Tasks[i].Status != b.Tasks[i].Status {
			return true
		}
	}
	return false
}
