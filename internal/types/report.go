package types

// Status describes whether a detection pass produced a usable result
type Status string

const (
	// StatusSuccess means the document loaded and every rule ran
	StatusSuccess Status = "success"
	// StatusError means the document could not be loaded; findings are unreliable
	StatusError Status = "error"
)

// Report is the aggregate result of one detection pass over one pipeline
// document. When Status is StatusError the Failures and Warnings slices must
// be treated as empty; consumers check Status first.
type Report struct {
	Status   Status    `json:"status" yaml:"status"`
	Message  string    `json:"message,omitempty" yaml:"message,omitempty"`
	Failures []Finding `json:"failures" yaml:"failures"`
	Warnings []Finding `json:"warnings" yaml:"warnings"`
}

// NewReport creates a success report with empty finding slices
func NewReport() *Report {
	return &Report{
		Status:   StatusSuccess,
		Failures: []Finding{},
		Warnings: []Finding{},
	}
}

// ErrorReport creates an error-status report with the given message
func ErrorReport(message string) *Report {
	return &Report{
		Status:   StatusError,
		Message:  message,
		Failures: []Finding{},
		Warnings: []Finding{},
	}
}

// AddFailure records a blocking finding, forcing its severity
func (r *Report) AddFailure(f Finding) {
	f.Severity = SeverityFailure
	r.Failures = append(r.Failures, f)
}

// AddWarning records an advisory finding, forcing its severity
func (r *Report) AddWarning(f Finding) {
	f.Severity = SeverityWarning
	r.Warnings = append(r.Warnings, f)
}

// HasFailures reports whether the pass produced any blocking findings
func (r *Report) HasFailures() bool {
	return len(r.Failures) > 0
}

// Ok reports whether the detection pass itself completed
func (r *Report) Ok() bool {
	return r.Status == StatusSuccess
}
