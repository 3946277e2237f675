package kube

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTokenSource_Static(t *testing.T) {
	ts := NewTokenSource("static", "/does/not/exist", time.Minute)
	got, err := ts.Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if got != "static" {
		t.Errorf("Token() = %q, want static", got)
	}
}

func TestTokenSource_FileRefresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("first\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := NewTokenSource("", path, time.Minute)
	ts.now = func() time.Time { return now }

	if got, _ := ts.Token(); got != "first" {
		t.Fatalf("Token() = %q, want first", got)
	}

	if err := os.WriteFile(path, []byte("second"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got, _ := ts.Token(); got != "first" {
		t.Errorf("Token() before refresh = %q, want cached first", got)
	}

	now = now.Add(2 * time.Minute)
	if got, _ := ts.Token(); got != "second" {
		t.Errorf("Token() after refresh = %q, want second", got)
	}
}

func TestTokenSource_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewTokenSource("", path, time.Minute).Token(); err == nil {
		t.Error("Token() error = nil, want error for empty file")
	}
}

func TestTokenSource_Reloadable(t *testing.T) {
	tests := []struct {
		static, path string
		want         bool
	}{
		{"", "/var/run/secrets/token", true},
		{"static", "/var/run/secrets/token", false},
		{"static", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		if got := NewTokenSource(tt.static, tt.path, time.Minute).Reloadable(); got != tt.want {
			t.Errorf("Reloadable() with static=%q path=%q = %v, want %v", tt.static, tt.path, got, tt.want)
		}
	}
}

func TestTokenSource_None(t *testing.T) {
	got, err := NewTokenSource("", "", time.Minute).Token()
	if err != nil || got != "" {
		t.Errorf("Token() = %q, %v; want empty, nil", got, err)
	}
}
