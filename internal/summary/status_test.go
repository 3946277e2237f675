package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lei/plr-summary/internal/models"
)

func TestRunStatus(t *testing.T) {
	completed := func(pr *models.PipelineRun) { pr.Status.CompletionTime = at(5 * time.Minute) }

	tests := []struct {
		name     string
		setup    func(*models.PipelineRun)
		taskRuns []models.TaskRun
		want     models.Status
	}{
		{
			name:  "own success wins over failed children",
			setup: func(pr *models.PipelineRun) { pr.Status.Conditions = succeeded(models.ConditionTrue, "Succeeded", "") },
			taskRuns: []models.TaskRun{
				newTaskRun("build", "Failed", at(0)),
			},
			want: models.StatusSucceeded,
		},
		{
			name:  "own failure wins over succeeded children",
			setup: func(pr *models.PipelineRun) { pr.Status.Conditions = succeeded(models.ConditionFalse, "Failed", "") },
			taskRuns: []models.TaskRun{
				newTaskRun("clone", "Succeeded", at(0)),
				newTaskRun("build", "Succeeded", at(time.Minute)),
			},
			want: models.StatusFailed,
		},
		{
			name:     "unfinished with running child",
			taskRuns: []models.TaskRun{newTaskRun("build", "Running", at(0))},
			want:     models.StatusRunning,
		},
		{
			name:     "unfinished with only pending children",
			taskRuns: []models.TaskRun{newTaskRun("build", "Pending", nil)},
			want:     models.StatusPending,
		},
		{
			name: "unfinished, unknown own condition, no children",
			setup: func(pr *models.PipelineRun) {
				pr.Status.Conditions = succeeded(models.ConditionUnknown, "Running", "")
			},
			want: models.StatusPending,
		},
		{
			name: "unfinished with one succeeded and one running child",
			taskRuns: []models.TaskRun{
				newTaskRun("clone", "Succeeded", at(0)),
				newTaskRun("build", "Running", at(time.Minute)),
			},
			want: models.StatusRunning,
		},
		{
			name: "children without conditions but started",
			taskRuns: []models.TaskRun{
				newTaskRun("build", "", at(0)),
			},
			want: models.StatusRunning,
		},
		{
			name:  "completed, all children succeeded",
			setup: completed,
			taskRuns: []models.TaskRun{
				newTaskRun("clone", "Succeeded", at(0)),
				newTaskRun("build", "Succeeded", at(time.Minute)),
			},
			want: models.StatusSucceeded,
		},
		{
			name: "all children terminal without completion time",
			taskRuns: []models.TaskRun{
				newTaskRun("clone", "Succeeded", at(0)),
				newTaskRun("build", "Succeeded", at(time.Minute)),
			},
			want: models.StatusSucceeded,
		},
		{
			name:  "completed, one failed child fails the run",
			setup: completed,
			taskRuns: []models.TaskRun{
				newTaskRun("clone", "Succeeded", at(0)),
				newTaskRun("build", "Failed", at(time.Minute)),
				newTaskRun("test", "Succeeded", at(2*time.Minute)),
			},
			want: models.StatusFailed,
		},
		{
			name:  "completed, failed beats running",
			setup: completed,
			taskRuns: []models.TaskRun{
				newTaskRun("build", "Running", at(0)),
				newTaskRun("test", "Failed", at(time.Minute)),
			},
			want: models.StatusFailed,
		},
		{
			name:  "completed, running beats pending",
			setup: completed,
			taskRuns: []models.TaskRun{
				newTaskRun("build", "Pending", nil),
				newTaskRun("test", "Running", at(time.Minute)),
			},
			want: models.StatusRunning,
		},
		{
			name:  "completed, no children, no condition",
			setup: completed,
			want:  models.StatusUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := newRun("plr")
			if tt.setup != nil {
				tt.setup(pr)
			}
			assert.Equal(t, tt.want, RunStatus(pr, tt.taskRuns))
		})
	}
}

func TestRunStatus_NilRun(t *testing.T) {
	assert.Equal(t, models.StatusUnknown, RunStatus(nil, nil))
}

func TestTaskRunStatus(t *testing.T) {
	tests := []struct {
		name string
		tr   models.TaskRun
		want models.Status
	}{
		{"succeeded", newTaskRun("a", "Succeeded", at(0)), models.StatusSucceeded},
		{"failed", newTaskRun("a", "Failed", at(0)), models.StatusFailed},
		{"running", newTaskRun("a", "Running", at(0)), models.StatusRunning},
		{"pending reason", newTaskRun("a", "Pending", nil), models.StatusPending},
		{"no condition, not started", newTaskRun("a", "", nil), models.StatusPending},
		{"no condition, started", newTaskRun("a", "", at(0)), models.StatusRunning},
		{
			name: "unrecognized condition status",
			tr: models.TaskRun{Status: models.TaskRunStatus{
				Conditions: []models.Condition{{Type: models.ConditionSucceeded, Status: "Maybe"}},
			}},
			want: models.StatusUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TaskRunStatus(&tt.tr); got != tt.want {
				t.Errorf("TaskRunStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}
