package fake

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lei/plr-summary/internal/models"
	"github.com/lei/plr-summary/internal/provider"
)

func run(ns, name string, labels models.Labels) models.PipelineRun {
	var pr models.PipelineRun
	pr.Metadata.Namespace = ns
	pr.Metadata.Name = name
	pr.Metadata.Labels = labels
	return pr
}

func TestProvider_GetPipelineRun(t *testing.T) {
	p := New()
	p.AddPipelineRun(run("team-a", "build-1", nil))
	ctx := context.Background()

	pr, err := p.GetPipelineRun(ctx, provider.RunRef{Namespace: "team-a", Name: "build-1"})
	require.NoError(t, err)
	assert.Equal(t, "build-1", pr.Metadata.Name)

	_, err = p.GetPipelineRun(ctx, provider.RunRef{Namespace: "team-b", Name: "build-1"})
	assert.ErrorIs(t, err, provider.ErrRunNotFound)
}

func TestProvider_DeletePipelineRun(t *testing.T) {
	p := New()
	p.AddPipelineRun(run("team-a", "build-1", nil))
	ref := provider.RunRef{Namespace: "team-a", Name: "build-1"}
	p.AddTaskRuns(ref, models.TaskRun{Metadata: models.ObjectMeta{Name: "build-1-clone", Namespace: "team-a"}})

	p.DeletePipelineRun(ref)

	_, err := p.GetPipelineRun(context.Background(), ref)
	assert.ErrorIs(t, err, provider.ErrRunNotFound)
	trs, err := p.ListTaskRuns(context.Background(), ref)
	require.NoError(t, err)
	assert.Empty(t, trs)
}

func TestProvider_ListPipelineRuns(t *testing.T) {
	p := New()
	p.AddPipelineRun(run("team-a", "b", models.Labels{models.LabelCommitSHA: "abc", models.LabelRunType: "build"}))
	p.AddPipelineRun(run("team-a", "a", models.Labels{models.LabelCommitSHA: "abc"}))
	p.AddPipelineRun(run("team-a", "c", models.Labels{models.LabelCommitSHA: "def"}))
	p.AddPipelineRun(run("team-b", "d", models.Labels{models.LabelCommitSHA: "abc"}))
	ctx := context.Background()

	tests := []struct {
		selector string
		want     []string
	}{
		{"", []string{"a", "b", "c"}},
		{models.LabelCommitSHA + "=abc", []string{"a", "b"}},
		{models.LabelCommitSHA + "=abc," + models.LabelRunType + "=build", []string{"b"}},
		{models.LabelCommitSHA + "=zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			runs, err := p.ListPipelineRuns(ctx, "team-a", tt.selector)
			require.NoError(t, err)

			var names []string
			for _, r := range runs {
				names = append(names, r.Metadata.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestProvider_TaskRunLogTail(t *testing.T) {
	p := New()
	p.SetLog("team-a", "tr-1", "one\ntwo\nthree\n")
	tr := &models.TaskRun{}
	tr.Metadata.Namespace = "team-a"
	tr.Metadata.Name = "tr-1"
	ctx := context.Background()

	text, err := p.TaskRunLog(ctx, tr, 2)
	require.NoError(t, err)
	assert.Equal(t, "two\nthree\n", text)

	text, err = p.TaskRunLog(ctx, tr, 0)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\n", text)

	tr.Metadata.Name = "missing"
	_, err = p.TaskRunLog(ctx, tr, 2)
	assert.ErrorIs(t, err, provider.ErrLogUnavailable)
}

func TestProvider_FailOn(t *testing.T) {
	p := New()
	boom := errors.New("boom")
	ref := provider.RunRef{Namespace: "team-a", Name: "x"}

	p.FailOn("ListTaskRuns", boom)
	_, err := p.ListTaskRuns(context.Background(), ref)
	assert.ErrorIs(t, err, boom)

	p.FailOn("ListTaskRuns", nil)
	_, err = p.ListTaskRuns(context.Background(), ref)
	assert.NoError(t, err)
}
