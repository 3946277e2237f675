package summary

import (
	"time"

	"github.com/lei/plr-summary/internal/models"
)

// ComputeDuration returns completion-start, or now-start for an unfinished
// run. Without a start time the duration is unavailable. The result is never
// negative.
func ComputeDuration(start, completion *time.Time, now time.Time) models.Duration {
	if start == nil || start.IsZero() {
		return models.Duration{}
	}

	end := now
	if completion != nil && !completion.IsZero() {
		end = *completion
	}

	d := end.Sub(*start)
	if d < 0 {
		d = 0
	}
	return models.Duration{Value: d, Available: true}
}
