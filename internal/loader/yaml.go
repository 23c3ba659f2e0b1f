package loader

import (
	"fmt"
	"strings"

	"github.com/alevsk/pipescope/internal/types"
	kyaml "sigs.k8s.io/kustomize/kyaml/yaml"
)

// YAMLDocument wraps the parsed node tree of a structured pipeline. The
// underlying nodes preserve key order, so a document mutated by the patch
// engine re-serializes with its original field ordering intact.
type YAMLDocument struct {
	kind types.PipelineKind
	Root *kyaml.RNode
}

// Kind returns the pipeline kind the document was loaded as
func (d *YAMLDocument) Kind() types.PipelineKind {
	return d.kind
}

// Top returns the value node of a top-level field, or nil if absent
func (d *YAMLDocument) Top(name string) *kyaml.RNode {
	field := d.Root.Field(name)
	if field == nil {
		return nil
	}
	return field.Value
}

// Has reports whether a top-level field is present
func (d *YAMLDocument) Has(name string) bool {
	return d.Root.Field(name) != nil
}

// TopFields returns the top-level field names in document order
func (d *YAMLDocument) TopFields() []string {
	fields, err := d.Root.Fields()
	if err != nil {
		return nil
	}
	return fields
}

// Serialize renders the document back to YAML text
func (d *YAMLDocument) Serialize() (string, error) {
	return d.Root.String()
}

// yamlLoader loads the three structured pipeline formats
type yamlLoader struct {
	kind types.PipelineKind
}

// Load parses text as a YAML mapping. Unparseable input, empty input and
// non-mapping top-level values are load errors; there is nothing to check in
// such documents.
func (l *yamlLoader) Load(text string) (Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	root, err := kyaml.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if root.IsNilOrEmpty() {
		return nil, ErrEmptyDocument
	}
	if root.YNode().Kind != kyaml.MappingNode {
		return nil, ErrNotMapping
	}

	return &YAMLDocument{kind: l.kind, Root: root}, nil
}

// IsEmptyValue reports whether a value node is absent content: nil, YAML null
// or an empty sequence. Used for "empty/absent steps" style rules.
func IsEmptyValue(rn *kyaml.RNode) bool {
	if rn == nil || rn.YNode() == nil {
		return true
	}
	node := rn.YNode()
	if node.Tag == kyaml.NodeTagNull {
		return true
	}
	if node.Kind == kyaml.SequenceNode && len(node.Content) == 0 {
		return true
	}
	return false
}
