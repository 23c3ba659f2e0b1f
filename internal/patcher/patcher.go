// Package patcher rewrites pipeline text to resolve the failure findings of a
// report. Only failures are patched; warnings are advisory and the pipeline
// text they describe is left alone. Findings with no canned fix are skipped.
package patcher

import (
	"fmt"

	"github.com/alevsk/pipescope/internal/loader"
	"github.com/alevsk/pipescope/internal/types"
	kyaml "sigs.k8s.io/kustomize/kyaml/yaml"
)

// Patcher applies the canned fixes for one pipeline kind
type Patcher interface {
	// Fix returns the patched pipeline text. The input text is returned
	// unchanged when the report carries no failures.
	Fix(text string, report *types.Report) (string, error)
}

// New creates the patcher for the given pipeline kind
func New(kind types.PipelineKind) (Patcher, error) {
	switch kind {
	case types.KindGitHubActions:
		return &githubPatcher{}, nil
	case types.KindGitLabCI:
		return &gitlabPatcher{}, nil
	case types.KindJenkins:
		return &jenkinsPatcher{}, nil
	case types.KindAzureDevOps:
		return &azurePatcher{}, nil
	default:
		return nil, fmt.Errorf("unsupported pipeline kind: %s", kind)
	}
}

// loadYAML parses text through the loader for kind and returns the node tree
func loadYAML(kind types.PipelineKind, text string) (*loader.YAMLDocument, error) {
	l, err := loader.New(kind)
	if err != nil {
		return nil, err
	}
	doc, err := l.Load(text)
	if err != nil {
		return nil, err
	}
	yamlDoc, ok := doc.(*loader.YAMLDocument)
	if !ok {
		return nil, fmt.Errorf("unexpected document type for %s", kind)
	}
	return yamlDoc, nil
}

// parseSnippet parses a canned YAML fragment into a node
func parseSnippet(text string) (*kyaml.RNode, error) {
	rn, err := kyaml.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid fix snippet: %w", err)
	}
	return rn, nil
}

// setSnippet sets field name on rn to the parsed snippet
func setSnippet(rn *kyaml.RNode, name, snippet string) error {
	value, err := parseSnippet(snippet)
	if err != nil {
		return err
	}
	return rn.PipeE(kyaml.SetField(name, value))
}

// mapField returns the value of a mapping field, or nil when the node is not
// a mapping or the field is absent
func mapField(rn *kyaml.RNode, name string) *kyaml.RNode {
	if rn == nil || rn.YNode().Kind != kyaml.MappingNode {
		return nil
	}
	field := rn.Field(name)
	if field == nil {
		return nil
	}
	return field.Value
}

// sequenceElements returns the elements of a sequence node, or nil otherwise
func sequenceElements(rn *kyaml.RNode) []*kyaml.RNode {
	if rn == nil || rn.YNode().Kind != kyaml.SequenceNode {
		return nil
	}
	elements, err := rn.Elements()
	if err != nil {
		return nil
	}
	return elements
}

// removeDependency drops one name from a scalar or list dependency field on
// node. A scalar match and an emptied list both remove the field entirely.
func removeDependency(node *kyaml.RNode, field, dependency string) error {
	value := mapField(node, field)
	if value == nil {
		return nil
	}
	switch value.YNode().Kind {
	case kyaml.ScalarNode:
		return node.PipeE(kyaml.Clear(field))
	case kyaml.SequenceNode:
		var keep []string
		for _, element := range sequenceElements(value) {
			if element.YNode().Kind == kyaml.ScalarNode && element.YNode().Value != dependency {
				keep = append(keep, element.YNode().Value)
			}
		}
		if len(keep) == 0 {
			return node.PipeE(kyaml.Clear(field))
		}
		return node.PipeE(kyaml.SetField(field, kyaml.NewListRNode(keep...)))
	default:
		return nil
	}
}
