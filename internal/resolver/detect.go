// Package resolver determines the pipeline kind of a file from its name and content
package resolver

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alevsk/pipescope/internal/types"
)

// kindDefinition maps file-name identifiers to a pipeline kind
type kindDefinition struct {
	Kind        types.PipelineKind
	Exact       []string
	Prefixes    []string
	NeedsYAML   bool
	ContentHint []string
}

// DetectKind determines the pipeline kind for a file. The file name decides
// for Azure DevOps, GitLab CI and Jenkins; GitHub Actions workflows have no
// reserved name, so any other YAML file is sniffed for workflow markers.
func DetectKind(path string, content []byte) (types.PipelineKind, error) {
	fileName := filepath.Base(path)
	isYAML := strings.HasSuffix(fileName, ".yml") || strings.HasSuffix(fileName, ".yaml")

	definitions := []kindDefinition{
		{
			Kind:      types.KindAzureDevOps,
			Prefixes:  []string{"azure-pipelines"},
			NeedsYAML: true,
		},
		{
			Kind:      types.KindGitLabCI,
			Exact:     []string{".gitlab-ci.yml", ".gitlab-ci.yaml"},
			NeedsYAML: true,
		},
		{
			Kind:  types.KindJenkins,
			Exact: []string{"Jenkinsfile"},
		},
		{
			Kind:        types.KindGitHubActions,
			NeedsYAML:   true,
			ContentHint: []string{"actions/", "github."},
		},
	}

	for _, definition := range definitions {
		if definition.NeedsYAML && !isYAML {
			continue
		}
		for _, exact := range definition.Exact {
			if fileName == exact {
				return definition.Kind, nil
			}
		}
		for _, prefix := range definition.Prefixes {
			if strings.HasPrefix(fileName, prefix) {
				return definition.Kind, nil
			}
		}
		for _, hint := range definition.ContentHint {
			if strings.Contains(string(content), hint) {
				return definition.Kind, nil
			}
		}
	}

	return "", fmt.Errorf("unable to determine pipeline kind for %s", fileName)
}
