package patcher

import (
	"regexp"

	"github.com/alevsk/pipescope/internal/logger"
	"github.com/alevsk/pipescope/internal/types"
)

// Jenkinsfiles are patched as text. The insertion points match the spans the
// loader extracts, so a patched pipeline re-checks clean.
var (
	jenkinsPipelineOpenRe = regexp.MustCompile(`(pipeline\s*\{)`)
	jenkinsPipelineBodyRe = regexp.MustCompile(`(pipeline\s*\{[^}]*)`)
	jenkinsStagesBodyRe   = regexp.MustCompile(`(stages\s*\{[^}]*)`)
	jenkinsAnyAgentRe     = regexp.MustCompile(`agent\s+any|agent\s*\{`)
	jenkinsAnyStagesRe    = regexp.MustCompile(`stages\s*\{`)
	jenkinsAnyStageRe     = regexp.MustCompile(`stage\s*\(`)
)

const jenkinsSkeleton = "pipeline {\n" +
	"    agent any\n" +
	"    stages {\n" +
	"        stage('Build') {\n" +
	"            steps {\n" +
	"                echo 'Building...'\n" +
	"            }\n" +
	"        }\n" +
	"    }\n" +
	"}"

const jenkinsStagesBlock = "\n    stages {\n" +
	"        stage('Build') {\n" +
	"            steps {\n" +
	"                echo 'Building...'\n" +
	"            }\n" +
	"        }\n" +
	"    }"

const jenkinsStageBlock = "\n        stage('Build') {\n" +
	"            steps {\n" +
	"                echo 'Building...'\n" +
	"            }\n" +
	"        }"

const jenkinsStepsBlock = "\n            steps {\n" +
	"                echo 'Running...'\n" +
	"            }"

// jenkinsPatcher fixes declarative Jenkinsfiles by inserting blocks at their
// expected anchors
type jenkinsPatcher struct{}

func (p *jenkinsPatcher) Fix(text string, report *types.Report) (string, error) {
	if report == nil || len(report.Failures) == 0 {
		return text, nil
	}

	for _, failure := range report.Failures {
		switch failure.Kind {
		case types.FindingMissingPipeline:
			// A skeleton replaces whatever was there; it already carries an
			// agent, a stages block and a stage, so the remaining structural
			// fixes below become no-ops through their presence guards
			text = jenkinsSkeleton

		case types.FindingMissingAgent:
			if !jenkinsAnyAgentRe.MatchString(text) {
				text = jenkinsPipelineOpenRe.ReplaceAllString(text, "${1}\n    agent any")
			}

		case types.FindingMissingStages:
			if !jenkinsAnyStagesRe.MatchString(text) {
				text = jenkinsPipelineBodyRe.ReplaceAllString(text, "${1}"+jenkinsStagesBlock)
			}

		case types.FindingMissingStage:
			if !jenkinsAnyStageRe.MatchString(text) {
				text = jenkinsStagesBodyRe.ReplaceAllString(text, "${1}"+jenkinsStageBlock)
			}

		case types.FindingMissingSteps:
			if failure.Stage == "" {
				continue
			}
			stageRe, err := regexp.Compile(
				`(stage\s*\(\s*['"]` + regexp.QuoteMeta(failure.Stage) + `['"]\s*\)\s*\{[^}]*)`)
			if err != nil {
				return "", err
			}
			text = stageRe.ReplaceAllString(text, "${1}"+jenkinsStepsBlock)
		}
	}

	logger.Debug().Int("failures", len(report.Failures)).Msg("jenkins patch complete")
	return text, nil
}
