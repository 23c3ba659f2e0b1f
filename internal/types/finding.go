package types

// Severity classifies how blocking a finding is
type Severity string

const (
	// SeverityFailure marks a structural defect that blocks the pipeline
	SeverityFailure Severity = "failure"
	// SeverityWarning marks an advisory issue requiring human judgment
	SeverityWarning Severity = "warning"
)

// Implement Stringer for Severity
func (s Severity) String() string {
	return string(s)
}

// FindingKind is the closed vocabulary of structural defect types
type FindingKind string

const (
	// Structural findings
	FindingMissingJobs              FindingKind = "missing_jobs"
	FindingMissingTriggers          FindingKind = "missing_triggers"
	FindingMissingSteps             FindingKind = "missing_steps"
	FindingInvalidNeeds             FindingKind = "invalid_needs"
	FindingMissingRunner            FindingKind = "missing_runner"
	FindingUndefinedSecret          FindingKind = "undefined_secret"
	FindingUndefinedVariable        FindingKind = "undefined_variable"
	FindingMissingScript            FindingKind = "missing_script"
	FindingMissingStages            FindingKind = "missing_stages"
	FindingMissingStage             FindingKind = "missing_stage"
	FindingInvalidStage             FindingKind = "invalid_stage"
	FindingMissingPipeline          FindingKind = "missing_pipeline"
	FindingMissingAgent             FindingKind = "missing_agent"
	FindingMissingPool              FindingKind = "missing_pool"
	FindingMissingPipelineStructure FindingKind = "missing_pipeline_structure"
	FindingInvalidDependsOn         FindingKind = "invalid_depends_on"

	// Log-derived findings
	FindingFileNotFound     FindingKind = "file_not_found"
	FindingPermissionDenied FindingKind = "permission_denied"
	FindingExitCodeError    FindingKind = "exit_code_error"
	FindingJobFailed        FindingKind = "job_failed"
	FindingTaskFailed       FindingKind = "task_failed"
	FindingMissingProperty  FindingKind = "missing_property"
)

// Implement Stringer for FindingKind
func (fk FindingKind) String() string {
	return string(fk)
}

// Finding is one reported structural defect or risk. Location fields are
// kind-dependent: named jobs and stages for GitHub Actions, GitLab CI and
// Jenkins, positional indices for Azure DevOps list-shaped documents. Index
// fields are pointers so that index zero survives JSON omitempty.
type Finding struct {
	Kind         FindingKind `json:"kind" yaml:"kind"`
	Severity     Severity    `json:"severity" yaml:"severity"`
	Message      string      `json:"message" yaml:"message"`
	SuggestedFix string      `json:"suggested_fix,omitempty" yaml:"suggested_fix,omitempty"`

	Job        string `json:"job,omitempty" yaml:"job,omitempty"`
	Stage      string `json:"stage,omitempty" yaml:"stage,omitempty"`
	StepIndex  *int   `json:"step,omitempty" yaml:"step,omitempty"`
	JobIndex   *int   `json:"job_index,omitempty" yaml:"job_index,omitempty"`
	StageIndex *int   `json:"stage_index,omitempty" yaml:"stage_index,omitempty"`

	Secret     string `json:"secret,omitempty" yaml:"secret,omitempty"`
	Variable   string `json:"variable,omitempty" yaml:"variable,omitempty"`
	Dependency string `json:"dependency,omitempty" yaml:"dependency,omitempty"`
}

// Index returns a pointer to i, for the optional index fields of Finding
func Index(i int) *int {
	return &i
}
