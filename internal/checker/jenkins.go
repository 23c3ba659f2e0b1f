package checker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alevsk/pipescope/internal/loader"
	"github.com/alevsk/pipescope/internal/logger"
	"github.com/alevsk/pipescope/internal/types"
)

// jenkinsStepsRe locates a steps block inside an extracted stage body
var jenkinsStepsRe = regexp.MustCompile(`steps\s*\{`)

var jenkinsLogRules = append(commonLogRules, logRule{
	Substring: "groovy.lang.MissingPropertyException",
	Kind:      types.FindingMissingProperty,
	Message:   "possible reference to an undefined property",
	Fix:       "check the variables and properties used by the pipeline",
})

// jenkinsChecker validates Jenkins declarative pipelines via the extracted
// span bag; there is no tree to walk.
type jenkinsChecker struct {
	opts *Options
}

func (c *jenkinsChecker) Check(doc loader.Document, logs string) *types.Report {
	jenkinsDoc, ok := doc.(*loader.JenkinsDocument)
	if !ok {
		return types.ErrorReport("unexpected document type for jenkins")
	}

	report := types.NewReport()

	// 1. A declarative pipeline needs a pipeline block
	if !jenkinsDoc.HasPipeline {
		report.AddFailure(types.Finding{
			Kind:         types.FindingMissingPipeline,
			Message:      "no 'pipeline' block defined",
			SuggestedFix: "add a 'pipeline { ... }' block",
		})
	}

	// 2. An agent must be declared
	if !jenkinsDoc.HasAgent {
		report.AddFailure(types.Finding{
			Kind:         types.FindingMissingAgent,
			Message:      "no 'agent' defined",
			SuggestedFix: "add 'agent any' or 'agent { ... }'",
		})
	}

	// 3. A stages block must exist
	if !jenkinsDoc.HasStages {
		report.AddFailure(types.Finding{
			Kind:         types.FindingMissingStages,
			Message:      "no 'stages' block defined",
			SuggestedFix: "add a 'stages { ... }' block",
		})
	}

	// 4. At least one stage must exist
	if !jenkinsDoc.HasStageCall {
		report.AddFailure(types.Finding{
			Kind:         types.FindingMissingStage,
			Message:      "no 'stage' defined",
			SuggestedFix: "add at least one 'stage(...)'",
		})
	}

	// 5. Every extracted stage needs a steps block
	for _, stage := range jenkinsDoc.Stages {
		if !jenkinsStepsRe.MatchString(stage.Body) {
			report.AddFailure(types.Finding{
				Kind:         types.FindingMissingSteps,
				Message:      fmt.Sprintf("stage '%s' has no 'steps' block defined", stage.Name),
				Stage:        stage.Name,
				SuggestedFix: fmt.Sprintf("add a 'steps { ... }' block to stage '%s'", stage.Name),
			})
		}
	}

	// 6. Variable references not declared in environment or parameters
	for _, variable := range jenkinsDoc.VarRefs {
		if jenkinsDoc.IsDefined(variable) ||
			strings.HasPrefix(variable, "env.") ||
			containsString(c.opts.JenkinsBuiltinVars, variable) {
			continue
		}
		report.AddWarning(types.Finding{
			Kind:         types.FindingUndefinedVariable,
			Message:      fmt.Sprintf("possible reference to undefined variable '%s'", variable),
			Variable:     variable,
			SuggestedFix: fmt.Sprintf("define the variable '%s' in the 'environment' section or as a parameter", variable),
		})
	}

	// 7. Log heuristics
	scanLogs(report, logs, jenkinsLogRules)

	logger.Debug().Int("failures", len(report.Failures)).Int("warnings", len(report.Warnings)).
		Msg("jenkins check complete")
	return report
}
