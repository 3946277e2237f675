package kube

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// TokenSource supplies the bearer token for cluster requests. A static token
// is used as-is; a token file (such as a projected service account token) is
// re-read once the cached copy is older than the refresh interval.
type TokenSource struct {
	static       string
	path         string
	refreshAfter time.Duration
	now          func() time.Time

	mu       sync.RWMutex
	token    string
	loadedAt time.Time
}

// NewTokenSource creates a token source. Either argument may be empty; with
// neither, requests are sent unauthenticated.
func NewTokenSource(static, path string, refreshAfter time.Duration) *TokenSource {
	return &TokenSource{
		static:       static,
		path:         path,
		refreshAfter: refreshAfter,
		now:          time.Now,
	}
}

// Token returns a valid token, re-reading the token file if necessary
func (ts *TokenSource) Token() (string, error) {
	if ts.static != "" || ts.path == "" {
		return ts.static, nil
	}

	ts.mu.RLock()
	if ts.token != "" && ts.now().Sub(ts.loadedAt) < ts.refreshAfter {
		token := ts.token
		ts.mu.RUnlock()
		return token, nil
	}
	ts.mu.RUnlock()

	return ts.reload()
}

// Reloadable reports whether a refused token can be replaced by re-reading
// the token file. A static token always wins over the file.
func (ts *TokenSource) Reloadable() bool {
	return ts.static == "" && ts.path != ""
}

// Invalidate forces the token file to be re-read on next Token call
func (ts *TokenSource) Invalidate() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.token = ""
	ts.loadedAt = time.Time{}
}

func (ts *TokenSource) reload() (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	// Double-check after acquiring write lock
	if ts.token != "" && ts.now().Sub(ts.loadedAt) < ts.refreshAfter {
		return ts.token, nil
	}

	data, err := os.ReadFile(ts.path)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", ts.path)
	}

	ts.token = token
	ts.loadedAt = ts.now()
	return ts.token, nil
}
