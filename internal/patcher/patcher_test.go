package patcher

import (
	"strings"
	"testing"

	"github.com/alevsk/pipescope/internal/checker"
	"github.com/alevsk/pipescope/internal/loader"
	"github.com/alevsk/pipescope/internal/types"
)

// check runs the rule battery for kind over text
func check(t *testing.T, kind types.PipelineKind, text string) *types.Report {
	t.Helper()
	l, err := loader.New(kind)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := l.Load(text)
	if err != nil {
		t.Fatalf("fixture failed to load: %v", err)
	}
	c, err := checker.New(kind, nil)
	if err != nil {
		t.Fatal(err)
	}
	return c.Check(doc, "")
}

// fixAndRecheck patches text against its own findings and asserts the result
// carries no failures
func fixAndRecheck(t *testing.T, kind types.PipelineKind, text string) string {
	t.Helper()
	report := check(t, kind, text)
	if len(report.Failures) == 0 {
		t.Fatalf("fixture for %s is already clean", kind)
	}

	p, err := New(kind)
	if err != nil {
		t.Fatal(err)
	}
	fixed, err := p.Fix(text, report)
	if err != nil {
		t.Fatalf("fix returned error: %v", err)
	}

	after := check(t, kind, fixed)
	if len(after.Failures) != 0 {
		t.Errorf("patched pipeline still has failures: %+v\ntext:\n%s", after.Failures, fixed)
	}
	return fixed
}

func TestNewUnsupportedKind(t *testing.T) {
	if _, err := New(types.PipelineKind("circleci")); err == nil {
		t.Error("expected error for unsupported kind")
	}
}

func TestFixWithoutFailuresIsIdentity(t *testing.T) {
	text := "on:\n  push: {}\njobs:\n  build:\n    runs-on: ubuntu-latest\n    steps:\n      - run: make\n"
	p, _ := New(types.KindGitHubActions)

	fixed, err := p.Fix(text, types.NewReport())
	if err != nil {
		t.Fatal(err)
	}
	if fixed != text {
		t.Errorf("text changed with an empty report:\n%s", fixed)
	}
}

func TestGitHubPatcherConvergence(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "bare job", text: "jobs:\n  build: {}\n"},
		{name: "no jobs", text: "on:\n  push: {}\n"},
		{name: "dangling needs", text: "on:\n  push: {}\njobs:\n  build:\n    runs-on: ubuntu-latest\n    needs: ghost\n    steps:\n      - run: make\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixAndRecheck(t, types.KindGitHubActions, tt.text)
		})
	}
}

func TestGitHubPatcherPreservesKeyOrder(t *testing.T) {
	text := "name: ci\non:\n  push: {}\njobs:\n  build:\n    steps:\n      - run: make\n"
	fixed := fixAndRecheck(t, types.KindGitHubActions, text)

	nameAt := strings.Index(fixed, "name: ci")
	onAt := strings.Index(fixed, "on:")
	jobsAt := strings.Index(fixed, "jobs:")
	if nameAt < 0 || onAt < 0 || jobsAt < 0 || !(nameAt < onAt && onAt < jobsAt) {
		t.Errorf("top-level key order not preserved:\n%s", fixed)
	}
	if !strings.Contains(fixed, "runs-on: ubuntu-latest") {
		t.Errorf("runner not added:\n%s", fixed)
	}
}

func TestGitHubPatcherNeedsListFiltered(t *testing.T) {
	text := `on:
  push: {}
jobs:
  a:
    runs-on: ubuntu-latest
    steps:
      - run: echo a
  b:
    runs-on: ubuntu-latest
    needs: ["a", "ghost"]
    steps:
      - run: echo b
`
	fixed := fixAndRecheck(t, types.KindGitHubActions, text)
	if strings.Contains(fixed, "ghost") {
		t.Errorf("dangling dependency survived:\n%s", fixed)
	}
	if !strings.Contains(fixed, "needs") {
		t.Errorf("valid dependency was dropped:\n%s", fixed)
	}
}

func TestGitHubPatcherScalarNeedsRemoved(t *testing.T) {
	text := "on:\n  push: {}\njobs:\n  b:\n    runs-on: ubuntu-latest\n    needs: ghost\n    steps:\n      - run: echo b\n"
	fixed := fixAndRecheck(t, types.KindGitHubActions, text)
	if strings.Contains(fixed, "needs") {
		t.Errorf("scalar needs field survived:\n%s", fixed)
	}
}

func TestGitLabPatcherConvergence(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "no jobs", text: "stages:\n  - build\nvariables:\n  A: b\n"},
		{name: "job without script", text: "stages:\n  - build\nlint:\n  stage: build\n"},
		{name: "invalid stage", text: "stages:\n  - build\ndeploy:\n  stage: production\n  script:\n    - ./deploy.sh\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixAndRecheck(t, types.KindGitLabCI, tt.text)
		})
	}
}

func TestGitLabPatcherDeclaresInvalidStage(t *testing.T) {
	text := "stages:\n  - build\ndeploy:\n  stage: production\n  script:\n    - ./deploy.sh\n"
	fixed := fixAndRecheck(t, types.KindGitLabCI, text)

	buildAt := strings.Index(fixed, "- build")
	productionAt := strings.Index(fixed, "- production")
	if buildAt < 0 || productionAt < 0 || productionAt < buildAt {
		t.Errorf("stage not appended to stages list:\n%s", fixed)
	}
}

func TestJenkinsPatcherConvergence(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty file", text: ""},
		{name: "missing agent", text: "pipeline {\n    stages {\n        stage('Build') {\n            steps {\n                sh 'make'\n            }\n        }\n    }\n}"},
		{name: "stage without steps", text: "pipeline {\n    agent any\n    stages {\n        stage('Deploy') {\n            echo 'nothing'\n        }\n    }\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixAndRecheck(t, types.KindJenkins, tt.text)
		})
	}
}

func TestJenkinsPatcherSkeletonReplacesEmptyFile(t *testing.T) {
	fixed := fixAndRecheck(t, types.KindJenkins, "")
	if fixed != jenkinsSkeleton {
		t.Errorf("empty file not replaced by the skeleton:\n%s", fixed)
	}
}

func TestJenkinsPatcherAgentInsertedOnce(t *testing.T) {
	text := "pipeline {\n    stages {\n        stage('Build') {\n            steps {\n                sh 'make'\n            }\n        }\n    }\n}"
	fixed := fixAndRecheck(t, types.KindJenkins, text)
	if got := strings.Count(fixed, "agent any"); got != 1 {
		t.Errorf("agent any occurs %d times:\n%s", got, fixed)
	}
}

func TestAzurePatcherConvergence(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "no structure", text: "trigger:\n  - main\npool:\n  vmImage: ubuntu-latest\n"},
		{name: "job without steps", text: "trigger:\n  - main\npool:\n  vmImage: ubuntu-latest\njobs:\n  - job: build\n"},
		{name: "dangling dependsOn", text: "trigger:\n  - main\npool:\n  vmImage: ubuntu-latest\nstages:\n  - name: Build\n    dependsOn: Ghost\n    jobs:\n      - job: build\n        steps:\n          - script: make\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixAndRecheck(t, types.KindAzureDevOps, tt.text)
		})
	}
}

func TestAzurePatcherStepsAtJobIndex(t *testing.T) {
	text := `trigger:
  - main
pool:
  vmImage: ubuntu-latest
jobs:
  - job: build
    steps:
      - script: make
  - job: package
`
	fixed := fixAndRecheck(t, types.KindAzureDevOps, text)
	if !strings.Contains(fixed, "checkout: self") {
		t.Errorf("default steps not added:\n%s", fixed)
	}
	if !strings.Contains(fixed, "script: make") {
		t.Errorf("existing job steps were touched:\n%s", fixed)
	}
}
