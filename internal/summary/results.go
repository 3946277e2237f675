package summary

import (
	"encoding/json"
	"strings"

	"github.com/lei/plr-summary/internal/models"
)

// ParseResult parses a result value when it looks like a JSON object or array.
// A value that fails to parse is kept as an opaque display string.
func ParseResult(r models.Result) models.ParsedResult {
	out := models.ParsedResult{Name: r.Name, Raw: r.Value}
	if v, ok := parseJSON(r.Value); ok {
		out.IsJSON = true
		out.Parsed = v
	}
	return out
}

// ParseResults parses every result, preserving order
func ParseResults(results []models.Result) []models.ParsedResult {
	if len(results) == 0 {
		return nil
	}
	out := make([]models.ParsedResult, 0, len(results))
	for _, r := range results {
		out = append(out, ParseResult(r))
	}
	return out
}

// DecodeTestOutput decodes a TEST_OUTPUT value
func DecodeTestOutput(value string) (*models.TestOutput, bool) {
	var out models.TestOutput
	if !decodeObject(value, &out) || out.Result == "" {
		return nil, false
	}
	return &out, true
}

// DecodeScanResult decodes a CLAIR_SCAN_RESULT value
func DecodeScanResult(value string) (*models.ScanResult, bool) {
	var doc struct {
		Vulnerabilities *struct {
			Critical int `json:"critical"`
			High     int `json:"high"`
			Medium   int `json:"medium"`
			Low      int `json:"low"`
			Unknown  int `json:"unknown"`
		} `json:"vulnerabilities"`
	}
	if !decodeObject(value, &doc) || doc.Vulnerabilities == nil {
		return nil, false
	}
	v := doc.Vulnerabilities
	return &models.ScanResult{
		Critical: v.Critical,
		High:     v.High,
		Medium:   v.Medium,
		Low:      v.Low,
		Unknown:  v.Unknown,
	}, true
}

// DecodeSnapshotCreationStatus decodes the create-snapshot-status annotation
func DecodeSnapshotCreationStatus(value string) (*models.SnapshotCreationStatus, bool) {
	var out models.SnapshotCreationStatus
	if !decodeObject(value, &out) {
		return nil, false
	}
	return &out, true
}

func parseJSON(s string) (any, bool) {
	t := strings.TrimSpace(s)
	if t == "" || (t[0] != '{' && t[0] != '[') {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(t), &v); err != nil {
		return nil, false
	}
	return v, true
}

func decodeObject(s string, dst any) bool {
	t := strings.TrimSpace(s)
	if t == "" || t[0] != '{' {
		return false
	}
	return json.Unmarshal([]byte(t), dst) == nil
}
