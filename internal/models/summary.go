package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is the coarse status of a run or task run
type Status string

const (
	StatusSucceeded Status = "Succeeded"
	StatusFailed    Status = "Failed"
	StatusRunning   Status = "Running"
	StatusPending   Status = "Pending"
	StatusUnknown   Status = "Unknown"
)

// IsTerminal reports whether the status can no longer change
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Placeholder is rendered for any absent display field
const Placeholder = "-"

// Duration is a run duration that may be unavailable
type Duration struct {
	Value     time.Duration
	Available bool
}

// String renders the duration, or Placeholder when unavailable
func (d Duration) String() string {
	if !d.Available {
		return Placeholder
	}
	return FormatDuration(d.Value)
}

type durationJSON struct {
	Available bool    `json:"available"`
	Seconds   float64 `json:"seconds,omitempty"`
	Display   string  `json:"display"`
}

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	out := durationJSON{Available: d.Available, Display: d.String()}
	if d.Available {
		out.Seconds = d.Value.Seconds()
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Duration) UnmarshalJSON(data []byte) error {
	var in durationJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	d.Available = in.Available
	d.Value = time.Duration(in.Seconds * float64(time.Second))
	return nil
}

// FormatDuration renders d as "1 hour 2 minutes 3 seconds", omitting zero parts
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return "0 seconds"
	}
	d = d.Truncate(time.Second)

	parts := make([]string, 0, 4)
	units := []struct {
		name string
		size time.Duration
	}{
		{"day", 24 * time.Hour},
		{"hour", time.Hour},
		{"minute", time.Minute},
		{"second", time.Second},
	}
	for _, u := range units {
		n := d / u.size
		if n == 0 {
			continue
		}
		d -= n * u.size
		if n == 1 {
			parts = append(parts, fmt.Sprintf("1 %s", u.name))
		} else {
			parts = append(parts, fmt.Sprintf("%d %ss", n, u.name))
		}
	}
	return strings.Join(parts, " ")
}

// LogSnippet is the failure detail shown for a failed run
type LogSnippet struct {
	Title     string `json:"title"`
	TaskRun   string `json:"task_run,omitempty"`
	Step      string `json:"step,omitempty"`
	Text      string `json:"text"`
	Truncated bool   `json:"truncated,omitempty"`
}

// ParsedResult is a Result whose value was parsed as JSON when it looked like JSON.
// When IsJSON is false, Raw is the value to display.
type ParsedResult struct {
	Name   string `json:"name"`
	Raw    string `json:"value"`
	IsJSON bool   `json:"is_json"`
	Parsed any    `json:"parsed,omitempty"`
}

// TestOutput is the decoded TEST_OUTPUT result of an integration test task
type TestOutput struct {
	Result    string `json:"result"`
	Timestamp string `json:"timestamp,omitempty"`
	Note      string `json:"note,omitempty"`
	Successes int    `json:"successes"`
	Failures  int    `json:"failures"`
	Warnings  int    `json:"warnings"`
}

// ScanResult counts vulnerabilities reported by a scan task
type ScanResult struct {
	TaskRun  string `json:"task_run"`
	Critical int    `json:"critical"`
	High     int    `json:"high"`
	Medium   int    `json:"medium"`
	Low      int    `json:"low"`
	Unknown  int    `json:"unknown,omitempty"`
}

// SnapshotCreationStatus is the decoded create-snapshot-status annotation
type SnapshotCreationStatus struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	LastUpdateTime string `json:"lastUpdateTime,omitempty"`
}

// TaskSummary is the status of a single TaskRun within a Summary
type TaskSummary struct {
	Name         string     `json:"name"`
	PipelineTask string     `json:"pipeline_task"`
	Status       Status     `json:"status"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	Duration     Duration   `json:"duration"`
}

// Summary is the display-ready view of a PipelineRun
type Summary struct {
	Name      string     `json:"name"`
	Namespace string     `json:"namespace"`
	Status    Status     `json:"status"`
	Reason    string     `json:"reason,omitempty"`
	Message   string     `json:"message,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Created   string     `json:"created"`
	Duration  Duration   `json:"duration"`

	CommitSHA      string `json:"commit_sha,omitempty"`
	CommitShortSHA string `json:"commit_short_sha,omitempty"`
	ImageDigest    string `json:"image_digest,omitempty"`
	ImageURL       string `json:"image_url,omitempty"`
	BuildImage     string `json:"build_image,omitempty"`
	SourceURL      string `json:"source_url,omitempty"`

	Application     string `json:"application"`
	Component       string `json:"component"`
	Pipeline        string `json:"pipeline"`
	RunType         string `json:"run_type,omitempty"`
	Snapshot        string `json:"snapshot,omitempty"`
	IntegrationTest string `json:"integration_test,omitempty"`

	SnapshotCreation *SnapshotCreationStatus `json:"snapshot_creation,omitempty"`
	Results          []ParsedResult          `json:"results,omitempty"`
	TestOutput       *TestOutput             `json:"test_output,omitempty"`
	Scan             *ScanResult             `json:"scan,omitempty"`
	LogSnippet       *LogSnippet             `json:"log_snippet,omitempty"`
	RelatedCount     int                     `json:"related_count"`
	Tasks            []TaskSummary           `json:"tasks,omitempty"`
}

// SummaryRecord is a Summary persisted in the history store
type SummaryRecord struct {
	ID         string    `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`
	Summary    Summary   `json:"summary"`
}
