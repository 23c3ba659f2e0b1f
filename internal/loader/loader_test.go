package loader

import (
	"strings"
	"testing"

	"github.com/alevsk/pipescope/internal/types"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		kind    types.PipelineKind
		wantErr bool
	}{
		{name: "github actions", kind: types.KindGitHubActions},
		{name: "gitlab ci", kind: types.KindGitLabCI},
		{name: "azure devops", kind: types.KindAzureDevOps},
		{name: "jenkins", kind: types.KindJenkins},
		{name: "unsupported", kind: types.PipelineKind("travis"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.kind)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%v) error = %v, wantErr %v", tt.kind, err, tt.wantErr)
			}
			if !tt.wantErr && got == nil {
				t.Fatal("expected a loader")
			}
		})
	}
}

func TestYAMLLoader(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{
			name: "valid workflow",
			text: "on:\n  push: {}\njobs:\n  build:\n    runs-on: ubuntu-latest\n    steps:\n      - run: echo hi\n",
		},
		{
			name:    "garbage input",
			text:    "jobs: [unclosed",
			wantErr: true,
		},
		{
			name:    "empty input",
			text:    "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			text:    "   \n\t\n",
			wantErr: true,
		},
		{
			name:    "null document",
			text:    "null\n",
			wantErr: true,
		},
		{
			name:    "scalar at top level",
			text:    "just a string\n",
			wantErr: true,
		},
		{
			name:    "sequence at top level",
			text:    "- a\n- b\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(types.KindGitHubActions)
			if err != nil {
				t.Fatal(err)
			}
			doc, err := l.Load(tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			yamlDoc, ok := doc.(*YAMLDocument)
			if !ok {
				t.Fatalf("expected *YAMLDocument, got %T", doc)
			}
			if yamlDoc.Kind() != types.KindGitHubActions {
				t.Errorf("kind = %v, want %v", yamlDoc.Kind(), types.KindGitHubActions)
			}
		})
	}
}

func TestYAMLDocumentAccessors(t *testing.T) {
	l, _ := New(types.KindGitLabCI)
	doc, err := l.Load("stages:\n  - build\n  - test\nbuild:\n  stage: build\n  script:\n    - make\n")
	if err != nil {
		t.Fatal(err)
	}
	d := doc.(*YAMLDocument)

	if !d.Has("stages") {
		t.Error("expected stages field")
	}
	if d.Has("variables") {
		t.Error("did not expect variables field")
	}
	if d.Top("missing") != nil {
		t.Error("Top on absent field should return nil")
	}

	fields := d.TopFields()
	want := []string{"stages", "build"}
	if len(fields) != len(want) {
		t.Fatalf("TopFields() = %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("TopFields()[%d] = %q, want %q", i, fields[i], want[i])
		}
	}

	// Round trip preserves key order
	out, err := d.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Index(out, "stages:") > strings.Index(out, "build:") {
		t.Errorf("serialization reordered keys:\n%s", out)
	}
}

func TestJenkinsLoader(t *testing.T) {
	text := `pipeline {
    agent any
    environment {
        DEPLOY_ENV = 'staging'
    }
    parameters {
        string(name: 'TARGET')
    }
    stages {
        stage('Build') {
            steps {
                sh 'make build'
            }
        }
        stage('Test') {
            echo "${DEPLOY_ENV} and ${UNDECLARED}"
        }
    }
}`

	l, _ := New(types.KindJenkins)
	doc, err := l.Load(text)
	if err != nil {
		t.Fatalf("jenkins loader should never fail: %v", err)
	}
	d := doc.(*JenkinsDocument)

	if !d.HasPipeline || !d.HasAgent || !d.HasStages || !d.HasStageCall {
		t.Errorf("block presence flags = %v %v %v %v, want all true",
			d.HasPipeline, d.HasAgent, d.HasStages, d.HasStageCall)
	}
	if len(d.Stages) != 2 {
		t.Fatalf("extracted %d stages, want 2: %+v", len(d.Stages), d.Stages)
	}
	if d.Stages[0].Name != "Build" || d.Stages[1].Name != "Test" {
		t.Errorf("stage names = %q, %q", d.Stages[0].Name, d.Stages[1].Name)
	}
	if !d.IsDefined("DEPLOY_ENV") {
		t.Error("DEPLOY_ENV should be defined via environment block")
	}
	if !d.IsDefined("string") {
		// parameter extraction keys on the `name(` pattern inside parameters {}
		t.Error("parameters block names should be recorded")
	}
	if d.IsDefined("UNDECLARED") {
		t.Error("UNDECLARED should not be defined")
	}

	foundRef := false
	for _, ref := range d.VarRefs {
		if ref == "UNDECLARED" {
			foundRef = true
		}
	}
	if !foundRef {
		t.Errorf("expected UNDECLARED among var refs: %v", d.VarRefs)
	}
}

func TestJenkinsLoaderArbitraryText(t *testing.T) {
	l, _ := New(types.KindJenkins)
	doc, err := l.Load("this is not a Jenkinsfile at all")
	if err != nil {
		t.Fatalf("jenkins loader must accept arbitrary text: %v", err)
	}
	d := doc.(*JenkinsDocument)
	if d.HasPipeline || d.HasAgent || d.HasStages || d.HasStageCall {
		t.Error("no blocks should be detected in arbitrary text")
	}
	if len(d.Stages) != 0 {
		t.Errorf("no stages expected, got %+v", d.Stages)
	}
}
