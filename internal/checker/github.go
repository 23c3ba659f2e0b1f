package checker

import (
	"fmt"
	"regexp"

	"github.com/alevsk/pipescope/internal/loader"
	"github.com/alevsk/pipescope/internal/logger"
	"github.com/alevsk/pipescope/internal/types"
	kyaml "sigs.k8s.io/kustomize/kyaml/yaml"
)

// secretRefRe matches ${{ secrets.NAME }} tokens in a step's textual form
var secretRefRe = regexp.MustCompile(`\$\{\{\s*secrets\.([a-zA-Z0-9_-]+)\s*\}\}`)

var githubLogRules = append(commonLogRules, logRule{
	Substring: "Error: Process completed with exit code",
	Kind:      types.FindingExitCodeError,
	Message:   "a process completed with a non-zero exit code",
	Fix:       "check the commands and scripts run by the pipeline",
})

// githubChecker validates GitHub Actions workflow documents
type githubChecker struct {
	opts *Options
}

func (c *githubChecker) Check(doc loader.Document, logs string) *types.Report {
	yamlDoc, ok := doc.(*loader.YAMLDocument)
	if !ok {
		return types.ErrorReport("unexpected document type for github_actions")
	}

	report := types.NewReport()
	jobs := yamlDoc.Top("jobs")

	// 1. The workflow must define jobs
	if jobs == nil {
		report.AddFailure(types.Finding{
			Kind:         types.FindingMissingJobs,
			Message:      "no jobs defined in the pipeline",
			SuggestedFix: "add a 'jobs' section with at least one job",
		})
	}

	// 2. The workflow must define triggers
	if !yamlDoc.Has("on") {
		report.AddFailure(types.Finding{
			Kind:         types.FindingMissingTriggers,
			Message:      "no triggers (on) defined in the pipeline",
			SuggestedFix: "add an 'on' section with at least one trigger (push, pull_request, etc.)",
		})
	}

	// 3. Every job needs steps
	c.eachJob(jobs, func(name string, job *kyaml.RNode) {
		steps := fieldValue(job, "steps")
		if loader.IsEmptyValue(steps) {
			report.AddFailure(types.Finding{
				Kind:         types.FindingMissingSteps,
				Message:      fmt.Sprintf("job '%s' has no steps defined", name),
				Job:          name,
				SuggestedFix: fmt.Sprintf("add at least one step to job '%s'", name),
			})
		}
	})

	// 4. Flag every secret reference. The engine has no ground truth about
	// which secrets exist in the repository settings, so each reference is a
	// possible, not confirmed, undefined secret.
	c.eachJob(jobs, func(name string, job *kyaml.RNode) {
		steps := fieldValue(job, "steps")
		if steps == nil {
			return
		}
		elements, err := steps.Elements()
		if err != nil {
			return
		}
		for stepIndex, step := range elements {
			text, err := step.String()
			if err != nil {
				continue
			}
			for _, match := range secretRefRe.FindAllStringSubmatch(text, -1) {
				secret := match[1]
				report.AddWarning(types.Finding{
					Kind:         types.FindingUndefinedSecret,
					Message:      fmt.Sprintf("possible reference to undefined secret '%s' in job '%s', step %d", secret, name, stepIndex+1),
					Job:          name,
					StepIndex:    types.Index(stepIndex),
					Secret:       secret,
					SuggestedFix: fmt.Sprintf("check that the secret '%s' is defined in the repository settings", secret),
				})
			}
		}
	})

	// 5. Every needs reference must point at a declared job
	jobNames := map[string]bool{}
	c.eachJob(jobs, func(name string, job *kyaml.RNode) {
		jobNames[name] = true
	})
	c.eachJob(jobs, func(name string, job *kyaml.RNode) {
		needs := fieldValue(job, "needs")
		if needs == nil {
			return
		}
		for _, dependency := range dependencyNames(needs) {
			if !jobNames[dependency] {
				report.AddFailure(types.Finding{
					Kind:         types.FindingInvalidNeeds,
					Message:      fmt.Sprintf("job '%s' depends on nonexistent job '%s'", name, dependency),
					Job:          name,
					Dependency:   dependency,
					SuggestedFix: "point the 'needs' dependency at an existing job or remove it",
				})
			}
		}
	})

	// 6. Every job needs a runner
	c.eachJob(jobs, func(name string, job *kyaml.RNode) {
		if job.Field("runs-on") == nil {
			report.AddFailure(types.Finding{
				Kind:         types.FindingMissingRunner,
				Message:      fmt.Sprintf("job '%s' has no runner (runs-on) defined", name),
				Job:          name,
				SuggestedFix: fmt.Sprintf("add 'runs-on' to job '%s'", name),
			})
		}
	})

	// 7. Log heuristics
	scanLogs(report, logs, githubLogRules)

	logger.Debug().Int("failures", len(report.Failures)).Int("warnings", len(report.Warnings)).
		Msg("github actions check complete")
	return report
}

// eachJob visits every job mapping entry in declaration order. Non-mapping
// jobs values are silently skipped; the rules do not apply to them.
func (c *githubChecker) eachJob(jobs *kyaml.RNode, fn func(name string, job *kyaml.RNode)) {
	if jobs == nil || jobs.YNode().Kind != kyaml.MappingNode {
		return
	}
	names, err := jobs.Fields()
	if err != nil {
		return
	}
	for _, name := range names {
		field := jobs.Field(name)
		if field == nil || field.Value == nil {
			continue
		}
		fn(name, field.Value)
	}
}

// fieldValue returns the value of a mapping field, or nil when the node is
// not a mapping or the field is absent
func fieldValue(rn *kyaml.RNode, name string) *kyaml.RNode {
	if rn == nil || rn.YNode().Kind != kyaml.MappingNode {
		return nil
	}
	field := rn.Field(name)
	if field == nil {
		return nil
	}
	return field.Value
}

// dependencyNames flattens a scalar or list dependency field to names
func dependencyNames(rn *kyaml.RNode) []string {
	if rn == nil {
		return nil
	}
	switch rn.YNode().Kind {
	case kyaml.ScalarNode:
		return []string{rn.YNode().Value}
	case kyaml.SequenceNode:
		elements, err := rn.Elements()
		if err != nil {
			return nil
		}
		var names []string
		for _, element := range elements {
			if element.YNode().Kind == kyaml.ScalarNode {
				names = append(names, element.YNode().Value)
			}
		}
		return names
	default:
		return nil
	}
}
