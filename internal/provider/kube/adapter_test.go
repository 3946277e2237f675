package kube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lei/plr-summary/internal/models"
	"github.com/lei/plr-summary/internal/provider"
	"github.com/lei/plr-summary/pkg/logger"
)

const pipelineRunJSON = `{
  "metadata": {
    "name": "go-on-push-x7k2p",
    "namespace": "team-a",
    "creationTimestamp": "2024-05-09T10:00:00Z",
    "labels": {"appstudio.openshift.io/application": "my-app"}
  },
  "status": {
    "startTime": "2024-05-09T10:00:01Z",
    "conditions": [{"type": "Succeeded", "status": "Unknown", "reason": "Running"}]
  }
}`

const taskRunListJSON = `{"items": [{
  "metadata": {"name": "go-on-push-x7k2p-build", "namespace": "team-a",
    "labels": {"tekton.dev/pipelineTask": "build"}},
  "status": {
    "podName": "go-on-push-x7k2p-build-pod",
    "conditions": [{"type": "Succeeded", "status": "False", "reason": "Failed"}],
    "steps": [
      {"name": "prepare", "container": "step-prepare", "terminated": {"exitCode": 0}},
      {"name": "build", "container": "step-build", "terminated": {"exitCode": 1}}
    ]
  }
}]}`

func newTestAdapter(t *testing.T, handler http.Handler, cfg Config) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.URL = srv.URL
	a, err := NewAdapter(&cfg, logger.Nop())
	require.NoError(t, err)
	return a
}

func TestAdapter_GetPipelineRun(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/apis/tekton.dev/v1/namespaces/team-a/pipelineruns/go-on-push-x7k2p", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(pipelineRunJSON))
	})
	a := newTestAdapter(t, mux, Config{Token: "tok"})

	pr, err := a.GetPipelineRun(context.Background(), provider.RunRef{Namespace: "team-a", Name: "go-on-push-x7k2p"})
	require.NoError(t, err)
	assert.Equal(t, "go-on-push-x7k2p", pr.Metadata.Name)
	assert.Equal(t, "my-app", pr.Metadata.Labels.Value(models.LabelApplication))
	require.NotNil(t, pr.Status.StartTime)
	assert.Nil(t, pr.Status.CompletionTime)
	require.NotNil(t, pr.SucceededCondition())
	assert.Equal(t, "Running", pr.SucceededCondition().Reason)
}

func TestAdapter_GetPipelineRun_NotFound(t *testing.T) {
	a := newTestAdapter(t, http.NotFoundHandler(), Config{})

	_, err := a.GetPipelineRun(context.Background(), provider.RunRef{Namespace: "team-a", Name: "missing"})
	assert.ErrorIs(t, err, provider.ErrRunNotFound)
}

func TestAdapter_ListTaskRunsUsesSelector(t *testing.T) {
	var selector string
	mux := http.NewServeMux()
	mux.HandleFunc("/apis/tekton.dev/v1/namespaces/team-a/taskruns", func(w http.ResponseWriter, r *http.Request) {
		selector = r.URL.Query().Get("labelSelector")
		w.Write([]byte(taskRunListJSON))
	})
	a := newTestAdapter(t, mux, Config{})

	trs, err := a.ListTaskRuns(context.Background(), provider.RunRef{Namespace: "team-a", Name: "go-on-push-x7k2p"})
	require.NoError(t, err)
	require.Len(t, trs, 1)
	assert.Equal(t, "tekton.dev/pipelineRun=go-on-push-x7k2p", selector)
	assert.Equal(t, "build", trs[0].PipelineTaskName())
	assert.Equal(t, int32(1), trs[0].FailedStep().Terminated.ExitCode)
}

func TestAdapter_TaskRunLog(t *testing.T) {
	var container, tail string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/namespaces/team-a/pods/go-on-push-x7k2p-build-pod/log", func(w http.ResponseWriter, r *http.Request) {
		container = r.URL.Query().Get("container")
		tail = r.URL.Query().Get("tailLines")
		w.Write([]byte("go: build failed\nerror: exit 1\n"))
	})
	mux.HandleFunc("/apis/tekton.dev/v1/namespaces/team-a/taskruns", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(taskRunListJSON))
	})
	a := newTestAdapter(t, mux, Config{})
	ctx := context.Background()

	trs, err := a.ListTaskRuns(ctx, provider.RunRef{Namespace: "team-a", Name: "go-on-push-x7k2p"})
	require.NoError(t, err)

	text, err := a.TaskRunLog(ctx, &trs[0], 20)
	require.NoError(t, err)
	assert.Contains(t, text, "exit 1")
	assert.Equal(t, "step-build", container)
	assert.Equal(t, "20", tail)
}

func TestAdapter_TaskRunLog_Unavailable(t *testing.T) {
	a := newTestAdapter(t, http.NotFoundHandler(), Config{})
	ctx := context.Background()

	_, err := a.TaskRunLog(ctx, &models.TaskRun{}, 10)
	assert.ErrorIs(t, err, provider.ErrLogUnavailable)

	tr := &models.TaskRun{Status: models.TaskRunStatus{PodName: "gone"}}
	tr.Metadata.Namespace = "team-a"
	_, err = a.TaskRunLog(ctx, tr, 10)
	assert.ErrorIs(t, err, provider.ErrLogUnavailable)
}

func TestAdapter_RetriesOnceAfterUnauthorized(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte("old\n"), 0o600))

	var calls int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("Authorization") != "Bearer new" {
			// Token rotated on disk after the first request was refused
			os.WriteFile(tokenFile, []byte("new"), 0o600)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"items": []}`))
	})
	a := newTestAdapter(t, handler, Config{TokenFile: tokenFile})

	runs, err := a.ListPipelineRuns(context.Background(), "team-a", "")
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestAdapter_StaticTokenUnauthorizedIsNotRetried(t *testing.T) {
	var calls int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "Bearer static", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	})
	a := newTestAdapter(t, handler, Config{Token: "static"})

	_, err := a.ListPipelineRuns(context.Background(), "team-a", "")
	assert.ErrorIs(t, err, provider.ErrUnauthorized)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAdapter_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"forbidden", http.StatusForbidden, "", func(t *testing.T, err error) {
			assert.ErrorIs(t, err, provider.ErrUnauthorized)
		}},
		{"unavailable", http.StatusServiceUnavailable, "", func(t *testing.T, err error) {
			assert.ErrorIs(t, err, provider.ErrProviderUnavailable)
		}},
		{"status message", http.StatusUnprocessableEntity, `{"kind":"Status","message":"unable to parse requirement","code":422}`, func(t *testing.T, err error) {
			var perr *provider.ProviderError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, 422, perr.Code)
			assert.Equal(t, "unable to parse requirement", perr.Message)
		}},
		{"raw body", http.StatusInternalServerError, "boom", func(t *testing.T, err error) {
			var perr *provider.ProviderError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, "boom", perr.Message)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}), Config{})

			_, err := a.ListPipelineRuns(context.Background(), "team-a", "bad selector")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestNewAdapter_RequiresURL(t *testing.T) {
	_, err := NewAdapter(&Config{}, logger.Nop())
	assert.Error(t, err)
}
