package summary

import "github.com/lei/plr-summary/internal/models"

// RelatedRuns returns the candidates that belong to the same change as run:
// test runs match on snapshot, everything else on commit SHA. The run itself
// and runs from other namespaces are excluded.
func RelatedRuns(run *models.PipelineRun, candidates []models.PipelineRun) []models.PipelineRun {
	if run == nil || len(candidates) == 0 {
		return nil
	}

	key, match := relationKey(run)
	if key == "" {
		return nil
	}

	var out []models.PipelineRun
	for i := range candidates {
		c := &candidates[i]
		if c.Metadata.Namespace != run.Metadata.Namespace || sameRun(c, run) {
			continue
		}
		if match(c) == key {
			out = append(out, *c)
		}
	}
	return out
}

func relationKey(run *models.PipelineRun) (string, func(*models.PipelineRun) string) {
	if run.Metadata.Labels.Value(models.LabelRunType) == models.RunTypeTest {
		if s := Snapshot(run); s != "" {
			return s, Snapshot
		}
	}
	return CommitSHA(run), CommitSHA
}

func sameRun(a, b *models.PipelineRun) bool {
	if a.Metadata.UID != "" && b.Metadata.UID != "" {
		return a.Metadata.UID == b.Metadata.UID
	}
	return a.Metadata.Name == b.Metadata.Name
}
