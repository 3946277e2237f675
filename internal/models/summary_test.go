package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want string
	}{
		{"zero", 0, "0 seconds"},
		{"negative", -5 * time.Second, "0 seconds"},
		{"sub-second", 900 * time.Millisecond, "0 seconds"},
		{"one second", time.Second, "1 second"},
		{"fraction truncated", 2*time.Second + 999*time.Millisecond, "2 seconds"},
		{"minute and seconds", time.Minute + 5*time.Second, "1 minute 5 seconds"},
		{"exact hour", time.Hour, "1 hour"},
		{"skipped middle component", time.Hour + 3*time.Second, "1 hour 3 seconds"},
		{"plural units", 2*time.Hour + 2*time.Minute + 2*time.Second, "2 hours 2 minutes 2 seconds"},
		{"day rollover", 25*time.Hour + time.Minute, "1 day 1 hour 1 minute"},
		{"several days", 48 * time.Hour, "2 days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.in); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDuration_String(t *testing.T) {
	tests := []struct {
		name string
		d    Duration
		want string
	}{
		{"unavailable", Duration{}, Placeholder},
		{"unavailable ignores value", Duration{Value: time.Minute}, Placeholder},
		{"available zero", Duration{Available: true}, "0 seconds"},
		{"available", Duration{Value: 90 * time.Second, Available: true}, "1 minute 30 seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.String())
		})
	}
	assert.Equal(t, "-", Placeholder)
}
