package checker

import (
	"testing"

	"github.com/alevsk/pipescope/internal/loader"
	"github.com/alevsk/pipescope/internal/types"
)

func loadJenkins(t *testing.T, text string) loader.Document {
	t.Helper()
	l, err := loader.New(types.KindJenkins)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := l.Load(text)
	if err != nil {
		t.Fatalf("jenkins loader returned error: %v", err)
	}
	return doc
}

const cleanJenkinsfile = `pipeline {
    agent any
    stages {
        stage('Build') {
            steps {
                sh 'make build'
            }
        }
    }
}`

func TestJenkinsCheckerCleanPipeline(t *testing.T) {
	c, _ := New(types.KindJenkins, nil)
	report := c.Check(loadJenkins(t, cleanJenkinsfile), "")
	if len(report.Failures) != 0 {
		t.Errorf("clean pipeline produced failures: %+v", report.Failures)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("clean pipeline produced warnings: %+v", report.Warnings)
	}
}

func TestJenkinsCheckerStructuralRules(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantFailures []types.FindingKind
	}{
		{
			name: "empty text misses everything",
			text: "",
			wantFailures: []types.FindingKind{
				types.FindingMissingPipeline,
				types.FindingMissingAgent,
				types.FindingMissingStages,
				types.FindingMissingStage,
			},
		},
		{
			name: "missing agent only",
			text: `pipeline {
    stages {
        stage('Build') {
            steps {
                sh 'make'
            }
        }
    }
}`,
			wantFailures: []types.FindingKind{types.FindingMissingAgent},
		},
		{
			name: "agent block form accepted",
			text: `pipeline {
    agent {
        label 'linux'
    }
    stages {
        stage('Build') {
            steps {
                sh 'make'
            }
        }
    }
}`,
			wantFailures: nil,
		},
		{
			name: "stage without steps",
			text: `pipeline {
    agent any
    stages {
        stage('Deploy') {
            echo 'no steps block here'
        }
    }
}`,
			wantFailures: []types.FindingKind{types.FindingMissingSteps},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := New(types.KindJenkins, nil)
			report := c.Check(loadJenkins(t, tt.text), "")
			if len(report.Failures) != len(tt.wantFailures) {
				t.Fatalf("failures = %+v, want kinds %v", report.Failures, tt.wantFailures)
			}
			for i, kind := range tt.wantFailures {
				if report.Failures[i].Kind != kind {
					t.Errorf("failure[%d] = %v, want %v", i, report.Failures[i].Kind, kind)
				}
			}
		})
	}
}

func TestJenkinsCheckerUndefinedVariables(t *testing.T) {
	text := `pipeline {
    agent any
    environment {
        DEPLOY_ENV = 'staging'
    }
    stages {
        stage('Build') {
            steps {
                echo "${DEPLOY_ENV} ${BUILD_NUMBER} ${MYSTERY}"
            }
        }
    }
}`
	c, _ := New(types.KindJenkins, nil)
	report := c.Check(loadJenkins(t, text), "")
	if len(report.Warnings) != 1 {
		t.Fatalf("want one warning, got %+v", report.Warnings)
	}
	w := report.Warnings[0]
	if w.Kind != types.FindingUndefinedVariable || w.Variable != "MYSTERY" {
		t.Errorf("unexpected warning: %+v", w)
	}
}

func TestJenkinsCheckerBuiltinsConfigurable(t *testing.T) {
	opts := DefaultOptions()
	opts.JenkinsBuiltinVars = append(opts.JenkinsBuiltinVars, "GIT_COMMIT")

	text := `pipeline {
    agent any
    stages {
        stage('Build') {
            steps {
                echo "${GIT_COMMIT}"
            }
        }
    }
}`
	c, _ := New(types.KindJenkins, opts)
	report := c.Check(loadJenkins(t, text), "")
	if len(report.Warnings) != 0 {
		t.Errorf("GIT_COMMIT should be treated as builtin, got %+v", report.Warnings)
	}
}

func TestJenkinsCheckerLogHeuristics(t *testing.T) {
	c, _ := New(types.KindJenkins, nil)
	report := c.Check(loadJenkins(t, cleanJenkinsfile),
		"groovy.lang.MissingPropertyException: No such property: foo")
	if len(report.Warnings) != 1 || report.Warnings[0].Kind != types.FindingMissingProperty {
		t.Errorf("want missing_property warning, got %+v", report.Warnings)
	}
}
