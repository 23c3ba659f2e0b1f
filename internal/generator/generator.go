// Package generator renders starter pipelines for a repository from its
// analysis. Each pipeline kind has one template; the analysis picks the
// language toolchain and which optional stages appear.
package generator

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/alevsk/pipescope/internal/analyzer"
	"github.com/alevsk/pipescope/internal/logger"
	"github.com/alevsk/pipescope/internal/types"
)

// Generator renders the pipeline files for one pipeline kind
type Generator interface {
	// Generate returns the files to create, keyed by repository-relative path
	Generate(analysis *analyzer.Analysis) (map[string]string, error)
}

// New creates the generator for the given pipeline kind
func New(kind types.PipelineKind) (Generator, error) {
	switch kind {
	case types.KindGitHubActions:
		return &kindGenerator{kind: kind, path: ".github/workflows/ci.yml", text: githubTemplate}, nil
	case types.KindGitLabCI:
		return &kindGenerator{kind: kind, path: ".gitlab-ci.yml", text: gitlabTemplate}, nil
	case types.KindJenkins:
		return &kindGenerator{kind: kind, path: "Jenkinsfile", text: jenkinsTemplate}, nil
	case types.KindAzureDevOps:
		return &kindGenerator{kind: kind, path: "azure-pipelines.yml", text: azureTemplate}, nil
	default:
		return nil, fmt.Errorf("unsupported pipeline kind: %s", kind)
	}
}

// toolchain holds the per-language commands and setup metadata the templates
// consume
type toolchain struct {
	Language     string
	SetupAction  string
	SetupWith    []string
	BuildCommand string
	TestCommand  string
}

// toolchains maps primary languages to their commands. Languages not listed
// fall back to placeholder commands the user replaces.
var toolchains = map[string]toolchain{
	"Go": {
		SetupAction:  "actions/setup-go@v4",
		SetupWith:    []string{"go-version: stable"},
		BuildCommand: "go build ./...",
		TestCommand:  "go test ./...",
	},
	"Python": {
		SetupAction:  "actions/setup-python@v4",
		SetupWith:    []string{"python-version: '3.11'"},
		BuildCommand: "pip install -r requirements.txt",
		TestCommand:  "pytest",
	},
	"JavaScript": {
		SetupAction:  "actions/setup-node@v3",
		SetupWith:    []string{"node-version: '20'"},
		BuildCommand: "npm ci",
		TestCommand:  "npm test",
	},
	"TypeScript": {
		SetupAction:  "actions/setup-node@v3",
		SetupWith:    []string{"node-version: '20'"},
		BuildCommand: "npm ci",
		TestCommand:  "npm test",
	},
	"Java": {
		SetupAction:  "actions/setup-java@v3",
		SetupWith:    []string{"distribution: temurin", "java-version: '17'"},
		BuildCommand: "mvn -B package",
		TestCommand:  "mvn test",
	},
}

var defaultToolchain = toolchain{
	BuildCommand: "echo 'Add your build commands here'",
	TestCommand:  "echo 'Add your test commands here'",
}

// templateData is the rendering context for all pipeline templates
type templateData struct {
	toolchain
	HasTests  bool
	HasDocker bool
}

// kindGenerator renders the single template of one pipeline kind
type kindGenerator struct {
	kind types.PipelineKind
	path string
	text string
}

func (g *kindGenerator) Generate(analysis *analyzer.Analysis) (map[string]string, error) {
	if analysis == nil {
		return nil, fmt.Errorf("nil analysis")
	}

	tc, ok := toolchains[analysis.PrimaryLanguage]
	if !ok {
		tc = defaultToolchain
	}
	tc.Language = analysis.PrimaryLanguage
	data := templateData{
		toolchain: tc,
		HasTests:  analysis.HasTests,
		HasDocker: analysis.HasDocker,
	}

	tmpl, err := template.New(string(g.kind)).Parse(g.text)
	if err != nil {
		return nil, fmt.Errorf("invalid pipeline template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render pipeline: %w", err)
	}

	logger.Debug().Str("kind", g.kind.String()).Str("path", g.path).
		Str("language", analysis.PrimaryLanguage).Msg("pipeline generated")
	return map[string]string{g.path: buf.String()}, nil
}
