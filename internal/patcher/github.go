package patcher

import (
	"github.com/alevsk/pipescope/internal/logger"
	"github.com/alevsk/pipescope/internal/types"
	kyaml "sigs.k8s.io/kustomize/kyaml/yaml"
)

const githubDefaultJobs = `build:
  runs-on: ubuntu-latest
  steps:
    - uses: actions/checkout@v3
    - name: Run a one-line script
      run: echo Hello, world!
`

const githubDefaultTriggers = `push:
  branches:
    - main
pull_request:
  branches:
    - main
`

const githubDefaultSteps = `- uses: actions/checkout@v3
- name: Run a one-line script
  run: echo Hello, world!
`

// githubPatcher fixes GitHub Actions workflow documents
type githubPatcher struct{}

func (p *githubPatcher) Fix(text string, report *types.Report) (string, error) {
	if report == nil || len(report.Failures) == 0 {
		return text, nil
	}

	doc, err := loadYAML(types.KindGitHubActions, text)
	if err != nil {
		return "", err
	}

	for _, failure := range report.Failures {
		switch failure.Kind {
		case types.FindingMissingJobs:
			err = setSnippet(doc.Root, "jobs", githubDefaultJobs)

		case types.FindingMissingTriggers:
			err = setSnippet(doc.Root, "on", githubDefaultTriggers)

		case types.FindingMissingSteps:
			if job := mapField(doc.Top("jobs"), failure.Job); job != nil {
				err = setSnippet(job, "steps", githubDefaultSteps)
			}

		case types.FindingInvalidNeeds:
			if job := mapField(doc.Top("jobs"), failure.Job); job != nil {
				err = removeDependency(job, "needs", failure.Dependency)
			}

		case types.FindingMissingRunner:
			if job := mapField(doc.Top("jobs"), failure.Job); job != nil {
				err = job.PipeE(kyaml.SetField("runs-on", kyaml.NewScalarRNode("ubuntu-latest")))
			}
		}
		if err != nil {
			return "", err
		}
	}

	logger.Debug().Int("failures", len(report.Failures)).Msg("github actions patch complete")
	return doc.Serialize()
}
