// Package checker runs a fixed battery of structural rules over a loaded
// pipeline document. Rules are independent, never short-circuit, and always
// run in a fixed order so findings appear deterministically in the report.
package checker

import (
	"fmt"

	"github.com/alevsk/pipescope/internal/loader"
	"github.com/alevsk/pipescope/internal/types"
)

// Options contains the heuristic allowlists used by the variable and secret
// rules. They are passed in explicitly so callers and tests can vary them
// without touching shared process state.
type Options struct {
	// GitLabReservedKeys are top-level keys that are never jobs
	GitLabReservedKeys []string
	// GitLabVariablePrefixes are variable prefixes assumed to be predefined
	GitLabVariablePrefixes []string
	// JenkinsBuiltinVars are variable names Jenkins always provides
	JenkinsBuiltinVars []string
	// AzureVariablePrefixes are variable namespaces Azure always provides
	AzureVariablePrefixes []string
}

// DefaultOptions returns the default checker options
func DefaultOptions() *Options {
	return &Options{
		GitLabReservedKeys:     []string{"stages", "variables", "default", "include"},
		GitLabVariablePrefixes: []string{"CI_"},
		JenkinsBuiltinVars:     []string{"BUILD_NUMBER", "JOB_NAME", "WORKSPACE"},
		AzureVariablePrefixes:  []string{"System.", "Build."},
	}
}

// Checker runs the structural rule battery for one pipeline kind
type Checker interface {
	// Check evaluates every rule against the document, then the log
	// heuristics against logs when non-empty. The document is not mutated.
	Check(doc loader.Document, logs string) *types.Report
}

// New creates the checker for the given pipeline kind
func New(kind types.PipelineKind, opts *Options) (Checker, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	switch kind {
	case types.KindGitHubActions:
		return &githubChecker{opts: opts}, nil
	case types.KindGitLabCI:
		return &gitlabChecker{opts: opts}, nil
	case types.KindJenkins:
		return &jenkinsChecker{opts: opts}, nil
	case types.KindAzureDevOps:
		return &azureChecker{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported pipeline kind: %s", kind)
	}
}

func hasPrefixAny(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

func containsString(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
