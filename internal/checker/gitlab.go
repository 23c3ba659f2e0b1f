package checker

import (
	"fmt"
	"regexp"

	"github.com/alevsk/pipescope/internal/loader"
	"github.com/alevsk/pipescope/internal/logger"
	"github.com/alevsk/pipescope/internal/types"
	kyaml "sigs.k8s.io/kustomize/kyaml/yaml"
)

// gitlabVarRefRe matches $VAR tokens in a job's textual form. Shell syntax in
// script lines can match too; the heuristic accepts that false-positive rate.
var gitlabVarRefRe = regexp.MustCompile(`\$([A-Z0-9_]+)`)

var gitlabLogRules = append(commonLogRules, logRule{
	Substring: "Job failed",
	Kind:      types.FindingJobFailed,
	Message:   "a job failed during execution",
	Fix:       "check the commands and scripts run by the pipeline",
})

// gitlabChecker validates GitLab CI documents
type gitlabChecker struct {
	opts *Options
}

func (c *gitlabChecker) Check(doc loader.Document, logs string) *types.Report {
	yamlDoc, ok := doc.(*loader.YAMLDocument)
	if !ok {
		return types.ErrorReport("unexpected document type for gitlab_ci")
	}

	report := types.NewReport()

	// 1. Implicit stages are tolerated by GitLab, so this is advisory only
	if !yamlDoc.Has("stages") {
		report.AddWarning(types.Finding{
			Kind:         types.FindingMissingStages,
			Message:      "no stages defined in the pipeline",
			SuggestedFix: "add a 'stages' section with the pipeline stages",
		})
	}

	// 2. At least one entry must look like a job (contains script or extends)
	jobCount := 0
	c.eachMapping(yamlDoc, func(name string, entry *kyaml.RNode) {
		if entry.Field("script") != nil || entry.Field("extends") != nil {
			jobCount++
		}
	})
	if jobCount == 0 {
		report.AddFailure(types.Finding{
			Kind:         types.FindingMissingJobs,
			Message:      "no jobs defined in the pipeline",
			SuggestedFix: "add at least one job with a script or extends",
		})
	}

	// 3. Every non-reserved job needs script or extends
	c.eachJob(yamlDoc, func(name string, job *kyaml.RNode) {
		if job.Field("script") == nil && job.Field("extends") == nil {
			report.AddFailure(types.Finding{
				Kind:         types.FindingMissingScript,
				Message:      fmt.Sprintf("job '%s' has no script or extends defined", name),
				Job:          name,
				SuggestedFix: fmt.Sprintf("add 'script' or 'extends' to job '%s'", name),
			})
		}
	})

	// 4. Variable references not covered by the variables map. Only checked
	// when the pipeline declares variables at all.
	if variables := yamlDoc.Top("variables"); variables != nil {
		defined := map[string]bool{}
		if names, err := variables.Fields(); err == nil {
			for _, name := range names {
				defined[name] = true
			}
		}
		c.eachJob(yamlDoc, func(name string, job *kyaml.RNode) {
			text, err := job.String()
			if err != nil {
				return
			}
			for _, match := range gitlabVarRefRe.FindAllStringSubmatch(text, -1) {
				variable := match[1]
				if defined[variable] || hasPrefixAny(variable, c.opts.GitLabVariablePrefixes) {
					continue
				}
				report.AddWarning(types.Finding{
					Kind:         types.FindingUndefinedVariable,
					Message:      fmt.Sprintf("possible reference to undefined variable '%s' in job '%s'", variable, name),
					Job:          name,
					Variable:     variable,
					SuggestedFix: fmt.Sprintf("define the variable '%s' in the 'variables' section", variable),
				})
			}
		})
	}

	// 5. Stage references must exist in the declared stages list. Skipped
	// entirely when stages itself is undeclared.
	if stages := yamlDoc.Top("stages"); stages != nil {
		declared := map[string]bool{}
		for _, stage := range dependencyNames(stages) {
			declared[stage] = true
		}
		c.eachJob(yamlDoc, func(name string, job *kyaml.RNode) {
			stage := loader.Scalar(fieldValue(job, "stage"))
			if stage != "" && !declared[stage] {
				report.AddFailure(types.Finding{
					Kind:         types.FindingInvalidStage,
					Message:      fmt.Sprintf("job '%s' uses nonexistent stage '%s'", name, stage),
					Job:          name,
					Stage:        stage,
					SuggestedFix: fmt.Sprintf("add '%s' to the stages list or fix the stage name", stage),
				})
			}
		})
	}

	// 6. Log heuristics
	scanLogs(report, logs, gitlabLogRules)

	logger.Debug().Int("failures", len(report.Failures)).Int("warnings", len(report.Warnings)).
		Msg("gitlab ci check complete")
	return report
}

// eachMapping visits every top-level entry whose value is a mapping
func (c *gitlabChecker) eachMapping(doc *loader.YAMLDocument, fn func(name string, entry *kyaml.RNode)) {
	for _, name := range doc.TopFields() {
		entry := doc.Top(name)
		if entry == nil || entry.YNode().Kind != kyaml.MappingNode {
			continue
		}
		fn(name, entry)
	}
}

// eachJob visits every top-level mapping entry that is not a reserved key
func (c *gitlabChecker) eachJob(doc *loader.YAMLDocument, fn func(name string, job *kyaml.RNode)) {
	c.eachMapping(doc, func(name string, entry *kyaml.RNode) {
		if containsString(c.opts.GitLabReservedKeys, name) {
			return
		}
		fn(name, entry)
	})
}
