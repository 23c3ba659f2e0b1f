package generator

import (
	"strings"
	"testing"

	"github.com/alevsk/pipescope/internal/analyzer"
	"github.com/alevsk/pipescope/internal/dispatcher"
	"github.com/alevsk/pipescope/internal/types"
)

var pipelinePaths = map[types.PipelineKind]string{
	types.KindGitHubActions: ".github/workflows/ci.yml",
	types.KindGitLabCI:      ".gitlab-ci.yml",
	types.KindJenkins:       "Jenkinsfile",
	types.KindAzureDevOps:   "azure-pipelines.yml",
}

func TestGeneratedPipelinesPassDetection(t *testing.T) {
	analyses := map[string]*analyzer.Analysis{
		"go repo": {
			PrimaryLanguage: "Go",
			HasTests:        true,
			HasDocker:       true,
		},
		"unknown language": {},
	}

	for name, analysis := range analyses {
		for _, kind := range types.Kinds() {
			t.Run(name+"/"+kind.String(), func(t *testing.T) {
				g, err := New(kind)
				if err != nil {
					t.Fatal(err)
				}
				files, err := g.Generate(analysis)
				if err != nil {
					t.Fatal(err)
				}

				path := pipelinePaths[kind]
				content, ok := files[path]
				if !ok {
					t.Fatalf("expected file %s, got %v", path, keys(files))
				}

				report := dispatcher.Detect(content, kind, "")
				if report.Status != types.StatusSuccess {
					t.Fatalf("generated pipeline failed to parse: %s\n%s", report.Message, content)
				}
				if len(report.Failures) != 0 {
					t.Errorf("generated pipeline has failures: %+v\n%s", report.Failures, content)
				}
				if len(report.Warnings) != 0 {
					t.Errorf("generated pipeline has warnings: %+v\n%s", report.Warnings, content)
				}
			})
		}
	}
}

func TestGenerateUsesLanguageToolchain(t *testing.T) {
	g, err := New(types.KindGitHubActions)
	if err != nil {
		t.Fatal(err)
	}
	files, err := g.Generate(&analyzer.Analysis{PrimaryLanguage: "Go", HasTests: true})
	if err != nil {
		t.Fatal(err)
	}

	content := files[".github/workflows/ci.yml"]
	for _, want := range []string{"actions/setup-go@v4", "go build ./...", "go test ./..."} {
		if !strings.Contains(content, want) {
			t.Errorf("workflow missing %q:\n%s", want, content)
		}
	}
}

func TestGenerateOmitsOptionalStages(t *testing.T) {
	g, err := New(types.KindGitLabCI)
	if err != nil {
		t.Fatal(err)
	}
	files, err := g.Generate(&analyzer.Analysis{PrimaryLanguage: "Python"})
	if err != nil {
		t.Fatal(err)
	}

	content := files[".gitlab-ci.yml"]
	if strings.Contains(content, "test:") {
		t.Errorf("test stage generated without tests:\n%s", content)
	}
	if strings.Contains(content, "docker build") {
		t.Errorf("package stage generated without docker:\n%s", content)
	}
}

func TestGenerateUnsupportedKind(t *testing.T) {
	if _, err := New(types.PipelineKind("circleci")); err == nil {
		t.Error("expected error for unsupported kind")
	}
}

func TestGenerateNilAnalysis(t *testing.T) {
	g, _ := New(types.KindJenkins)
	if _, err := g.Generate(nil); err == nil {
		t.Error("expected error for nil analysis")
	}
}

func keys(m map[string]string) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}
