// Package loader turns raw pipeline text into inspectable documents.
//
// GitHub Actions, GitLab CI and Azure DevOps pipelines are parsed into an
// order-preserving YAML node tree. Jenkins declarative pipelines are a Groovy
// DSL, not declarative data, so they are reduced to a flat bag of extracted
// spans instead of a parse tree.
package loader

import (
	"fmt"

	"github.com/alevsk/pipescope/internal/types"
	kyaml "sigs.k8s.io/kustomize/kyaml/yaml"
)

// Error types for the loader package
var (
	ErrEmptyDocument = fmt.Errorf("pipeline document is empty")
	ErrNotMapping    = fmt.Errorf("pipeline document is not a mapping at the top level")
)

// Document is the loaded semantic form of one pipeline file. A document is
// derived from exactly one raw text blob and one pipeline kind, and is
// read-only during detection.
type Document interface {
	// Kind returns the pipeline kind the document was loaded as
	Kind() types.PipelineKind
}

// Loader parses raw pipeline text into a Document
type Loader interface {
	// Load parses the text. Structured formats return an error for input that
	// cannot be parsed or parses to nothing; the Jenkins loader never fails.
	Load(text string) (Document, error)
}

// New creates the loader for the given pipeline kind
func New(kind types.PipelineKind) (Loader, error) {
	switch kind {
	case types.KindGitHubActions, types.KindGitLabCI, types.KindAzureDevOps:
		return &yamlLoader{kind: kind}, nil
	case types.KindJenkins:
		return &jenkinsLoader{}, nil
	default:
		return nil, fmt.Errorf("unsupported pipeline kind: %s", kind)
	}
}

// Scalar returns the scalar value of a node, or "" for nil or non-scalar nodes
func Scalar(rn *kyaml.RNode) string {
	if rn == nil || rn.YNode() == nil || rn.YNode().Kind != kyaml.ScalarNode {
		return ""
	}
	return rn.YNode().Value
}
