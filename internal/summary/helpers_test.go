package summary

import (
	"time"

	"github.com/lei/plr-summary/internal/models"
)

var baseTime = time.Date(2024, 5, 9, 10, 0, 0, 0, time.UTC)

func at(offset time.Duration) *time.Time {
	t := baseTime.Add(offset)
	return &t
}

func fixedClock(offset time.Duration) Option {
	return WithClock(func() time.Time { return baseTime.Add(offset) })
}

func succeeded(status, reason, message string) []models.Condition {
	return []models.Condition{{
		Type:    models.ConditionSucceeded,
		Status:  status,
		Reason:  reason,
		Message: message,
	}}
}

func newRun(name string) *models.PipelineRun {
	return &models.PipelineRun{
		Metadata: models.ObjectMeta{
			Name:              name,
			Namespace:         "team-a",
			CreationTimestamp: at(0),
			Labels:            models.Labels{},
			Annotations:       models.Annotations{},
		},
		Status: models.PipelineRunStatus{StartTime: at(0)},
	}
}

func newTaskRun(name string, status string, start *time.Time) models.TaskRun {
	tr := models.TaskRun{
		Metadata: models.ObjectMeta{
			Name:      "run-" + name,
			Namespace: "team-a",
			Labels:    models.Labels{models.LabelPipelineTask: name},
		},
		Status: models.TaskRunStatus{StartTime: start},
	}
	switch status {
	case "Succeeded":
		tr.Status.Conditions = succeeded(models.ConditionTrue, "Succeeded", "All Steps have completed executing")
	case "Failed":
		tr.Status.Conditions = succeeded(models.ConditionFalse, "Failed", `"step-build" exited with code 1`)
	case "Running":
		tr.Status.Conditions = succeeded(models.ConditionUnknown, "Running", "Not all Steps in the Task have finished executing")
	case "Pending":
		tr.Status.Conditions = succeeded(models.ConditionUnknown, "Pending", "Pending")
	}
	return tr
}

func withLog(tr models.TaskRun, text string) models.TaskRun {
	tr.Log = &models.LogContent{Ref: tr.Status.PodName, Text: text}
	return tr
}
