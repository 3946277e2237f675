package summary

import (
	"fmt"
	"strings"

	"github.com/lei/plr-summary/internal/models"
)

// NoLogsMessage replaces a snippet body when neither logs nor a message exist
const NoLogsMessage = "No logs available."

// LogSnippet picks the failure detail for a failed run. It returns nil unless
// status is Failed.
//
// The TaskRun named by the failed-task annotation is preferred; otherwise the
// most recently started failed TaskRun is used. Its log tail (or condition
// message) is cut to the last budget characters.
func LogSnippet(run *models.PipelineRun, taskRuns []models.TaskRun, status models.Status, budget int) *models.LogSnippet {
	if run == nil || status != models.StatusFailed {
		return nil
	}
	if budget <= 0 {
		budget = DefaultSnippetBudget
	}

	tr := pickFailedTaskRun(run, taskRuns)
	if tr == nil {
		msg := ""
		if c := run.SucceededCondition(); c != nil {
			msg = c.Message
		}
		text, truncated := tail(orNoLogs(msg), budget)
		return &models.LogSnippet{
			Title:     "Pipeline run failed",
			Text:      text,
			Truncated: truncated,
		}
	}

	body := ""
	if tr.Log != nil {
		body = strings.TrimRight(tr.Log.Text, " \t\r\n")
	}
	if body == "" {
		if c := tr.SucceededCondition(); c != nil {
			body = c.Message
		}
	}

	snippet := &models.LogSnippet{
		Title:   fmt.Sprintf("Failure on task %s - check logs for details.", tr.PipelineTaskName()),
		TaskRun: tr.Metadata.Name,
	}
	if step := tr.FailedStep(); step != nil {
		snippet.Step = step.Name
	}
	snippet.Text, snippet.Truncated = tail(orNoLogs(body), budget)
	return snippet
}

func pickFailedTaskRun(run *models.PipelineRun, taskRuns []models.TaskRun) *models.TaskRun {
	primary := run.Metadata.Annotations.Value(models.AnnotationFailedTask)

	var latest *models.TaskRun
	for i := range taskRuns {
		tr := &taskRuns[i]
		if TaskRunStatus(tr) != models.StatusFailed {
			continue
		}
		if primary != "" && (tr.Metadata.Name == primary || tr.PipelineTaskName() == primary) {
			return tr
		}
		if latest == nil || startedAfter(tr, latest) {
			latest = tr
		}
	}
	return latest
}

// startedAfter reports whether a started strictly after b; unstarted runs sort oldest
func startedAfter(a, b *models.TaskRun) bool {
	as, bs := a.Status.StartTime, b.Status.StartTime
	switch {
	case as == nil:
		return false
	case bs == nil:
		return true
	default:
		return as.After(*bs)
	}
}

// tail keeps the last budget runes of s
func tail(s string, budget int) (string, bool) {
	runes := []rune(s)
	if len(runes) <= budget {
		return s, false
	}
	return "..." + string(runes[len(runes)-budget:]), true
}

func orNoLogs(s string) string {
	if strings.TrimSpace(s) == "" {
		return NoLogsMessage
	}
	return s
}
