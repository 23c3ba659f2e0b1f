// Package types defines the shared value types for pipeline analysis results
package types

import "fmt"

// PipelineKind identifies the CI platform dialect of a pipeline file
type PipelineKind string

const (
	// KindGitHubActions is a GitHub Actions workflow file
	KindGitHubActions PipelineKind = "github_actions"
	// KindGitLabCI is a .gitlab-ci.yml pipeline
	KindGitLabCI PipelineKind = "gitlab_ci"
	// KindJenkins is a declarative Jenkinsfile
	KindJenkins PipelineKind = "jenkins"
	// KindAzureDevOps is an azure-pipelines.yml pipeline
	KindAzureDevOps PipelineKind = "azure_devops"
)

// Kinds lists all supported pipeline kinds in a stable order
func Kinds() []PipelineKind {
	return []PipelineKind{KindGitHubActions, KindGitLabCI, KindJenkins, KindAzureDevOps}
}

// Valid reports whether the kind is one of the supported values
func (k PipelineKind) Valid() bool {
	switch k {
	case KindGitHubActions, KindGitLabCI, KindJenkins, KindAzureDevOps:
		return true
	default:
		return false
	}
}

// Implement Stringer for PipelineKind
func (k PipelineKind) String() string {
	return string(k)
}

// ParseKind converts a string to a PipelineKind
func ParseKind(s string) (PipelineKind, error) {
	k := PipelineKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unsupported pipeline kind: %s", s)
	}
	return k, nil
}
