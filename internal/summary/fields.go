package summary

import "github.com/lei/plr-summary/internal/models"

const shortSHALength = 7

// CommitSHA returns the commit a run was built from
func CommitSHA(run *models.PipelineRun) string {
	if run == nil {
		return ""
	}
	if sha := run.Metadata.Labels.Value(models.LabelCommitSHA); sha != "" {
		return sha
	}
	if sha := run.Metadata.Annotations.Value(models.AnnotationCommitSHA); sha != "" {
		return sha
	}
	sha, _ := models.ResultValue(run.Status.Results, models.ResultChainsGitCommit)
	return sha
}

// ShortSHA abbreviates a commit SHA
func ShortSHA(sha string) string {
	if len(sha) <= shortSHALength {
		return sha
	}
	return sha[:shortSHALength]
}

// Snapshot returns the snapshot a run belongs to, from annotations first
func Snapshot(run *models.PipelineRun) string {
	if run == nil {
		return ""
	}
	if s := run.Metadata.Annotations.Value(models.AnnotationSnapshot); s != "" {
		return s
	}
	return run.Metadata.Labels.Value(models.LabelSnapshot)
}

// SourceURL returns the repository a run was built from
func SourceURL(run *models.PipelineRun) string {
	if run == nil {
		return ""
	}
	if u := run.Metadata.Annotations.Value(models.AnnotationSourceURL); u != "" {
		return u
	}
	u, _ := models.ResultValue(run.Status.Results, models.ResultChainsGitURL)
	return u
}

// BuildImage returns the image a build run produced
func BuildImage(run *models.PipelineRun) string {
	if run == nil {
		return ""
	}
	if img := run.Metadata.Annotations.Value(models.AnnotationBuildImage); img != "" {
		return img
	}
	img, _ := models.ResultValue(run.Status.Results, models.ResultImageURL)
	return img
}

func orPlaceholder(s string) string {
	if s == "" {
		return models.Placeholder
	}
	return s
}
