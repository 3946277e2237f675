package summary

import "github.com/lei/plr-summary/internal/models"

// Condition reasons Tekton uses while a TaskRun waits for its pod
var pendingReasons = map[string]bool{
	"Pending":            true,
	"PodPending":         true,
	"TaskRunPending":     true,
	"PipelineRunPending": true,
}

// statusRank orders child states for aggregation: higher wins
var statusRank = map[models.Status]int{
	models.StatusSucceeded: 0,
	models.StatusUnknown:   1,
	models.StatusPending:   2,
	models.StatusRunning:   3,
	models.StatusFailed:    4,
}

// RunStatus derives the coarse status of a PipelineRun.
//
// The run's own Succeeded condition wins when it is True or False. Without one,
// an unfinished run is Running once any TaskRun has started and Pending before.
// A finished run (or one whose TaskRuns are all terminal) takes the aggregate of
// its TaskRuns with precedence Failed > Running > Pending > Unknown > Succeeded;
// with no TaskRuns at all it is Unknown.
func RunStatus(run *models.PipelineRun, taskRuns []models.TaskRun) models.Status {
	if run == nil {
		return models.StatusUnknown
	}

	if c := run.SucceededCondition(); c != nil {
		switch c.Status {
		case models.ConditionFalse:
			return models.StatusFailed
		case models.ConditionTrue:
			return models.StatusSucceeded
		}
	}

	states := make([]models.Status, len(taskRuns))
	for i := range taskRuns {
		states[i] = TaskRunStatus(&taskRuns[i])
	}

	if run.Status.CompletionTime == nil && (len(states) == 0 || !allTerminal(states)) {
		if anyStarted(taskRuns, states) {
			return models.StatusRunning
		}
		return models.StatusPending
	}

	return aggregate(states)
}

// TaskRunStatus derives the state of a single TaskRun
func TaskRunStatus(tr *models.TaskRun) models.Status {
	if tr == nil {
		return models.StatusUnknown
	}

	c := tr.SucceededCondition()
	if c == nil {
		if tr.Status.StartTime != nil {
			return models.StatusRunning
		}
		return models.StatusPending
	}

	switch c.Status {
	case models.ConditionTrue:
		return models.StatusSucceeded
	case models.ConditionFalse:
		return models.StatusFailed
	case models.ConditionUnknown:
		if pendingReasons[c.Reason] {
			return models.StatusPending
		}
		return models.StatusRunning
	default:
		return models.StatusUnknown
	}
}

func aggregate(states []models.Status) models.Status {
	if len(states) == 0 {
		return models.StatusUnknown
	}
	out := models.StatusSucceeded
	for _, s := range states {
		if statusRank[s] > statusRank[out] {
			out = s
		}
	}
	return out
}

func allTerminal(states []models.Status) bool {
	for _, s := range states {
		if !s.IsTerminal() {
			return false
		}
	}
	return true
}

func anyStarted(taskRuns []models.TaskRun, states []models.Status) bool {
	for i, s := range states {
		if s != models.StatusPending || taskRuns[i].Status.StartTime != nil {
			return true
		}
	}
	return false
}
