package api

import (
	"testing"

	"github.com/lei/plr-summary/internal/models"
)

func TestFilterSummaries(t *testing.T) {
	summaries := []models.Summary{
		{Name: "devfile-sample-on-push-x7k2p", Application: "devfile-sample", Component: "python", Status: models.StatusSucceeded},
		{Name: "devfile-sample-on-pull-request-9mfq2", Application: "devfile-sample", Component: "python", Status: models.StatusFailed},
		{Name: "my-app-enterprise-contract-2lzvx", Application: "my-app", Component: "-", Status: models.StatusRunning},
		{Name: "release-abc", Application: "my-app", Pipeline: "release-pipeline", Status: models.StatusPending},
	}

	tests := []struct {
		name   string
		filter SummaryFilter
		want   int
	}{
		{"no filters", SummaryFilter{}, 4},
		{"search name", SummaryFilter{Search: "on-push"}, 1},
		{"search application", SummaryFilter{Search: "MY-APP"}, 2},
		{"search pipeline", SummaryFilter{Search: "release-pipe"}, 1},
		{"status failed", SummaryFilter{Statuses: []models.Status{models.StatusFailed}}, 1},
		{"status running or pending", SummaryFilter{Statuses: []models.Status{models.StatusRunning, models.StatusPending}}, 2},
		{"finished true", SummaryFilter{Finished: boolPtr(true)}, 2},
		{"finished false", SummaryFilter{Finished: boolPtr(false)}, 2},
		{"search + status", SummaryFilter{Search: "devfile", Statuses: []models.Status{models.StatusSucceeded}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterSummaries(summaries, tt.filter)
			if len(got) != tt.want {
				t.Errorf("FilterSummaries() = %d summaries, want %d", len(got), tt.want)
			}
		})
	}
}

func TestParseStatusParam(t *testing.T) {
	tests := []struct {
		input   string
		want    []models.Status
		wantErr bool
	}{
		{"", nil, false},
		{"failed", []models.Status{models.StatusFailed}, false},
		{"Running, pending", []models.Status{models.StatusRunning, models.StatusPending}, false},
		{"succeeded,,", []models.Status{models.StatusSucceeded}, false},
		{"cancelled", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseStatusParam(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseStatusParam(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseStatusParam(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseStatusParam(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseBoolParam(t *testing.T) {
	tests := []struct {
		input string
		want  *bool
	}{
		{"", nil},
		{"true", boolPtr(true)},
		{"1", boolPtr(true)},
		{"false", boolPtr(false)},
		{"0", boolPtr(false)},
		{"invalid", nil},
		{"yes", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseBoolParam(tt.input)
			if (got == nil) != (tt.want == nil) {
				t.Errorf("parseBoolParam(%q) = %v, want %v", tt.input, got, tt.want)
				return
			}
			if got != nil && *got != *tt.want {
				t.Errorf("parseBoolParam(%q) = %v, want %v", tt.input, *got, *tt.want)
			}
		})
	}
}

func boolPtr(b bool) *bool {
	return &b
}
