// Package summary derives the display-ready Summary of a PipelineRun from
// snapshots of the run and its TaskRuns. Nothing here fails: absent or
// malformed input degrades to placeholders.
package summary

import (
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/lei/plr-summary/internal/models"
)

// Summarize builds the Summary for run. taskRuns may be empty; their order
// only matters for tie-breaking and for the task list, which is returned
// most recently started first. A nil run yields an Unknown summary.
func Summarize(run *models.PipelineRun, taskRuns []models.TaskRun, opts ...Option) models.Summary {
	o := newOptions(opts)
	now := o.now()

	if run == nil {
		return models.Summary{
			Name:        models.Placeholder,
			Namespace:   models.Placeholder,
			Status:      models.StatusUnknown,
			Created:     models.Placeholder,
			Application: models.Placeholder,
			Component:   models.Placeholder,
			Pipeline:    models.Placeholder,
		}
	}

	meta := run.Metadata
	status := RunStatus(run, taskRuns)

	s := models.Summary{
		Name:            orPlaceholder(meta.Name),
		Namespace:       orPlaceholder(meta.Namespace),
		Status:          status,
		CreatedAt:       meta.CreationTimestamp,
		Created:         models.Placeholder,
		Duration:        ComputeDuration(run.Status.StartTime, run.Status.CompletionTime, now),
		Application:     orPlaceholder(meta.Labels.Value(models.LabelApplication)),
		Component:       orPlaceholder(meta.Labels.Value(models.LabelComponent)),
		Pipeline:        orPlaceholder(meta.Labels.Value(models.LabelPipelineName)),
		RunType:         meta.Labels.Value(models.LabelRunType),
		Snapshot:        Snapshot(run),
		IntegrationTest: meta.Labels.Value(models.LabelTestScenario),
		SourceURL:       SourceURL(run),
		BuildImage:      BuildImage(run),
		Results:         ParseResults(run.Status.Results),
		LogSnippet:      LogSnippet(run, taskRuns, status, o.budget),
		RelatedCount:    len(RelatedRuns(run, o.related)),
		Tasks:           taskSummaries(taskRuns, now),
	}

	if c := run.SucceededCondition(); c != nil {
		s.Reason = c.Reason
		s.Message = c.Message
	}
	if meta.CreationTimestamp != nil && !meta.CreationTimestamp.IsZero() {
		s.Created = humanize.RelTime(*meta.CreationTimestamp, now, "ago", "from now")
	}

	s.CommitSHA = CommitSHA(run)
	s.CommitShortSHA = ShortSHA(s.CommitSHA)
	s.ImageDigest, _ = models.ResultValue(run.Status.Results, models.ResultImageDigest)
	s.ImageURL, _ = models.ResultValue(run.Status.Results, models.ResultImageURL)

	if raw, ok := meta.Annotations.Get(models.AnnotationCreateSnapshotStatus); ok {
		if st, ok := DecodeSnapshotCreationStatus(raw); ok {
			s.SnapshotCreation = st
		}
	}

	s.TestOutput = findTestOutput(run, taskRuns)
	s.Scan = findScanResult(taskRuns)

	return s
}

func findTestOutput(run *models.PipelineRun, taskRuns []models.TaskRun) *models.TestOutput {
	if v, ok := models.ResultValue(run.Status.Results, models.ResultTestOutput); ok {
		if out, ok := DecodeTestOutput(v); ok {
			return out
		}
	}
	for i := range taskRuns {
		if v, ok := models.ResultValue(taskRuns[i].Status.Results, models.ResultTestOutput); ok {
			if out, ok := DecodeTestOutput(v); ok {
				return out
			}
		}
	}
	return nil
}

func findScanResult(taskRuns []models.TaskRun) *models.ScanResult {
	for i := range taskRuns {
		v, ok := models.ResultValue(taskRuns[i].Status.Results, models.ResultScanOutput)
		if !ok {
			continue
		}
		if scan, ok := DecodeScanResult(v); ok {
			scan.TaskRun = taskRuns[i].Metadata.Name
			return scan
		}
	}
	return nil
}

func taskSummaries(taskRuns []models.TaskRun, now time.Time) []models.TaskSummary {
	if len(taskRuns) == 0 {
		return nil
	}

	order := make([]int, len(taskRuns))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return startedAfter(&taskRuns[order[a]], &taskRuns[order[b]])
	})

	out := make([]models.TaskSummary, 0, len(taskRuns))
	for _, i := range order {
		tr := &taskRuns[i]
		out = append(out, models.TaskSummary{
			Name:         tr.Metadata.Name,
			PipelineTask: tr.PipelineTaskName(),
			Status:       TaskRunStatus(tr),
			StartedAt:    tr.Status.StartTime,
			Duration:     ComputeDuration(tr.Status.StartTime, tr.Status.CompletionTime, now),
		})
	}
	return out
}
