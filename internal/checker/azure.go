package checker

import (
	"fmt"
	"regexp"

	"github.com/alevsk/pipescope/internal/loader"
	"github.com/alevsk/pipescope/internal/logger"
	"github.com/alevsk/pipescope/internal/types"
	kyaml "sigs.k8s.io/kustomize/kyaml/yaml"
)

// azureVarRefRe matches $(NAME) macro tokens in the document's textual form
var azureVarRefRe = regexp.MustCompile(`\$\(([a-zA-Z0-9_.-]+)\)`)

var azureLogRules = append(commonLogRules, logRule{
	Substring: "Task failed",
	Kind:      types.FindingTaskFailed,
	Message:   "a task failed during execution",
	Fix:       "check the task configurations in the pipeline",
})

// azureChecker validates Azure DevOps pipeline documents
type azureChecker struct {
	opts *Options
}

func (c *azureChecker) Check(doc loader.Document, logs string) *types.Report {
	yamlDoc, ok := doc.(*loader.YAMLDocument)
	if !ok {
		return types.ErrorReport("unexpected document type for azure_devops")
	}

	report := types.NewReport()

	// 1. Triggers are advisory: a pipeline without them still runs manually
	if !yamlDoc.Has("trigger") && !yamlDoc.Has("pr") {
		report.AddWarning(types.Finding{
			Kind:         types.FindingMissingTriggers,
			Message:      "no triggers (trigger/pr) defined in the pipeline",
			SuggestedFix: "add a 'trigger' or 'pr' section",
		})
	}

	// 2. Pool is advisory: the organization default pool applies
	if !yamlDoc.Has("pool") {
		report.AddWarning(types.Finding{
			Kind:         types.FindingMissingPool,
			Message:      "no 'pool' defined in the pipeline",
			SuggestedFix: "add a 'pool' section with the agent to use",
		})
	}

	// 3. The pipeline needs at least one of stages, jobs or steps
	if !yamlDoc.Has("stages") && !yamlDoc.Has("jobs") && !yamlDoc.Has("steps") {
		report.AddFailure(types.Finding{
			Kind:         types.FindingMissingPipelineStructure,
			Message:      "no 'stages', 'jobs' or 'steps' defined in the pipeline",
			SuggestedFix: "add at least one of the sections: 'stages', 'jobs' or 'steps'",
		})
	}

	// 4. Every job in a top-level jobs list needs steps
	for index, job := range listElements(yamlDoc.Top("jobs")) {
		if loader.IsEmptyValue(fieldValue(job, "steps")) {
			report.AddFailure(types.Finding{
				Kind:         types.FindingMissingSteps,
				Message:      fmt.Sprintf("job %d has no steps defined", index+1),
				JobIndex:     types.Index(index),
				SuggestedFix: fmt.Sprintf("add at least one step to job %d", index+1),
			})
		}
	}

	// 5. Every stage needs jobs
	for index, stage := range listElements(yamlDoc.Top("stages")) {
		if loader.IsEmptyValue(fieldValue(stage, "jobs")) {
			report.AddFailure(types.Finding{
				Kind:         types.FindingMissingJobs,
				Message:      fmt.Sprintf("stage '%s' has no jobs defined", stageLabel(stage, index)),
				StageIndex:   types.Index(index),
				SuggestedFix: fmt.Sprintf("add at least one job to stage '%s'", stageLabel(stage, index)),
			})
		}
	}

	// 6. Variable references not covered by the variables section
	defined := azureDefinedVariables(yamlDoc.Top("variables"))
	if text, err := yamlDoc.Root.String(); err == nil {
		for _, match := range azureVarRefRe.FindAllStringSubmatch(text, -1) {
			variable := match[1]
			if defined[variable] || hasPrefixAny(variable, c.opts.AzureVariablePrefixes) {
				continue
			}
			report.AddWarning(types.Finding{
				Kind:         types.FindingUndefinedVariable,
				Message:      fmt.Sprintf("possible reference to undefined variable '%s'", variable),
				Variable:     variable,
				SuggestedFix: fmt.Sprintf("define the variable '%s' in the 'variables' section", variable),
			})
		}
	}

	// 7. Stage dependencies must reference declared stage names
	stages := listElements(yamlDoc.Top("stages"))
	if len(stages) > 0 {
		names := map[string]bool{}
		for index, stage := range stages {
			names[stageName(stage, index)] = true
		}
		for index, stage := range stages {
			dependsOn := fieldValue(stage, "dependsOn")
			if dependsOn == nil {
				continue
			}
			for _, dependency := range dependencyNames(dependsOn) {
				if !names[dependency] {
					report.AddFailure(types.Finding{
						Kind:         types.FindingInvalidDependsOn,
						Message:      fmt.Sprintf("stage '%s' depends on nonexistent stage '%s'", stageLabel(stage, index), dependency),
						StageIndex:   types.Index(index),
						Dependency:   dependency,
						SuggestedFix: "point the 'dependsOn' dependency at an existing stage or remove it",
					})
				}
			}
		}
	}

	// 8. Log heuristics
	scanLogs(report, logs, azureLogRules)

	logger.Debug().Int("failures", len(report.Failures)).Int("warnings", len(report.Warnings)).
		Msg("azure devops check complete")
	return report
}

// listElements returns the elements of a sequence node, or nil otherwise
func listElements(rn *kyaml.RNode) []*kyaml.RNode {
	if rn == nil || rn.YNode().Kind != kyaml.SequenceNode {
		return nil
	}
	elements, err := rn.Elements()
	if err != nil {
		return nil
	}
	return elements
}

// stageName returns the declared stage name, or the positional default used
// for dependency matching
func stageName(stage *kyaml.RNode, index int) string {
	if name := loader.Scalar(fieldValue(stage, "name")); name != "" {
		return name
	}
	return fmt.Sprintf("stage_%d", index)
}

// stageLabel returns the declared stage name, or a human-readable positional
// label for messages
func stageLabel(stage *kyaml.RNode, index int) string {
	if name := loader.Scalar(fieldValue(stage, "name")); name != "" {
		return name
	}
	return fmt.Sprintf("Stage %d", index+1)
}

// azureDefinedVariables collects declared variable names from either the
// mapping form or the list-of-name/value form of the variables section
func azureDefinedVariables(variables *kyaml.RNode) map[string]bool {
	defined := map[string]bool{}
	if variables == nil {
		return defined
	}
	switch variables.YNode().Kind {
	case kyaml.MappingNode:
		if names, err := variables.Fields(); err == nil {
			for _, name := range names {
				defined[name] = true
			}
		}
	case kyaml.SequenceNode:
		for _, entry := range listElements(variables) {
			if name := loader.Scalar(fieldValue(entry, "name")); name != "" {
				defined[name] = true
			}
		}
	}
	return defined
}
