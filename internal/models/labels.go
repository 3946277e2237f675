package models

// Labels is the label map of a resource. Keys are unique; a nil map reads as empty.
type Labels map[string]string

// Annotations is the annotation map of a resource
type Annotations map[string]string

// Well-known label keys
const (
	LabelApplication  = "appstudio.openshift.io/application"
	LabelComponent    = "appstudio.openshift.io/component"
	LabelSnapshot     = "appstudio.openshift.io/snapshot"
	LabelPipelineName = "tekton.dev/pipeline"
	LabelPipelineRun  = "tekton.dev/pipelineRun"
	LabelPipelineTask = "tekton.dev/pipelineTask"
	LabelTestScenario = "test.appstudio.openshift.io/scenario"
	LabelRunType      = "pipelines.appstudio.openshift.io/type"
	LabelCommitSHA    = "pipelinesascode.tekton.dev/sha"
)

// Well-known annotation keys
const (
	AnnotationSnapshot             = LabelSnapshot
	AnnotationCommitSHA            = "build.appstudio.redhat.com/commit_sha"
	AnnotationSourceURL            = "pipelinesascode.tekton.dev/repo-url"
	AnnotationBuildImage           = "build.appstudio.openshift.io/image"
	AnnotationCreateSnapshotStatus = "test.appstudio.openshift.io/create-snapshot-status"

	// AnnotationFailedTask names the TaskRun (or pipeline task) that caused
	// the run to fail.
	AnnotationFailedTask = "pipelines.appstudio.openshift.io/failed-task"
)

// Run types carried by LabelRunType
const (
	RunTypeBuild   = "build"
	RunTypeTest    = "test"
	RunTypeRelease = "release"
)

// Get returns the value for key and whether it was present
func (l Labels) Get(key string) (string, bool) {
	v, ok := l[key]
	return v, ok
}

// Value returns the value for key or "" when absent
func (l Labels) Value(key string) string {
	return l[key]
}

// Get returns the value for key and whether it was present
func (a Annotations) Get(key string) (string, bool) {
	v, ok := a[key]
	return v, ok
}

// Value returns the value for key or "" when absent
func (a Annotations) Value(key string) string {
	return a[key]
}
