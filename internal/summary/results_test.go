package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lei/plr-summary/internal/models"
)

func TestParseResult(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		isJSON bool
	}{
		{"plain string", "sha256:abc", false},
		{"object", `{"result":"SUCCESS"}`, true},
		{"array with padding", "  [1, 2, 3]\n", true},
		{"truncated object", `{"result":"SUCC`, false},
		{"scalar json is not parsed", `42`, false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseResult(models.Result{Name: "R", Value: tt.value})
			assert.Equal(t, tt.isJSON, got.IsJSON)
			assert.Equal(t, tt.value, got.Raw)
			if !tt.isJSON {
				assert.Nil(t, got.Parsed)
			}
		})
	}
}

func TestParseResults_Empty(t *testing.T) {
	assert.Nil(t, ParseResults(nil))
}

func TestDecodeTestOutput(t *testing.T) {
	out, ok := DecodeTestOutput(`{"result":"FAILURE","timestamp":"1715248800","failures":2,"successes":5,"warnings":1,"note":"see logs"}`)
	require.True(t, ok)
	assert.Equal(t, "FAILURE", out.Result)
	assert.Equal(t, 2, out.Failures)
	assert.Equal(t, 5, out.Successes)
	assert.Equal(t, 1, out.Warnings)

	for _, bad := range []string{"", "not json", `{"result":`, `{"failures":1}`, `[]`} {
		_, ok := DecodeTestOutput(bad)
		assert.False(t, ok, "value %q", bad)
	}
}

func TestDecodeScanResult(t *testing.T) {
	scan, ok := DecodeScanResult(`{"vulnerabilities":{"critical":1,"high":2,"medium":3,"low":4}}`)
	require.True(t, ok)
	assert.Equal(t, 1, scan.Critical)
	assert.Equal(t, 4, scan.Low)

	_, ok = DecodeScanResult(`{"other":{}}`)
	assert.False(t, ok)
	_, ok = DecodeScanResult(`{"vulnerabilities":`)
	assert.False(t, ok)
}

func TestDecodeSnapshotCreationStatus(t *testing.T) {
	st, ok := DecodeSnapshotCreationStatus(`{"status":"Failed","message":"Failed to create snapshot. Error: quota exceeded"}`)
	require.True(t, ok)
	assert.Equal(t, "Failed", st.Status)
	assert.Contains(t, st.Message, "quota exceeded")

	_, ok = DecodeSnapshotCreationStatus("{bad")
	assert.False(t, ok)
}
