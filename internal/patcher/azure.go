package patcher

import (
	"github.com/alevsk/pipescope/internal/logger"
	"github.com/alevsk/pipescope/internal/types"
	kyaml "sigs.k8s.io/kustomize/kyaml/yaml"
)

const azureDefaultPool = `vmImage: ubuntu-latest
`

const azureDefaultJobs = `- job: build
  steps:
    - checkout: self
    - script: echo Hello, world!
      displayName: Run a one-line script
`

const azureDefaultSteps = `- checkout: self
- script: echo Hello, world!
  displayName: Run a one-line script
`

// azurePatcher fixes Azure DevOps pipeline documents
type azurePatcher struct{}

func (p *azurePatcher) Fix(text string, report *types.Report) (string, error) {
	if report == nil || len(report.Failures) == 0 {
		return text, nil
	}

	doc, err := loadYAML(types.KindAzureDevOps, text)
	if err != nil {
		return "", err
	}

	for _, failure := range report.Failures {
		switch failure.Kind {
		case types.FindingMissingTriggers:
			err = doc.Root.PipeE(kyaml.SetField("trigger", kyaml.NewListRNode("main")))

		case types.FindingMissingPool:
			err = setSnippet(doc.Root, "pool", azureDefaultPool)

		case types.FindingMissingPipelineStructure:
			if !doc.Has("stages") && !doc.Has("jobs") && !doc.Has("steps") {
				err = setSnippet(doc.Root, "jobs", azureDefaultJobs)
			}

		case types.FindingMissingSteps:
			if job := elementAt(doc.Top("jobs"), failure.JobIndex); job != nil {
				err = setSnippet(job, "steps", azureDefaultSteps)
			}

		case types.FindingMissingJobs:
			if stage := elementAt(doc.Top("stages"), failure.StageIndex); stage != nil {
				err = setSnippet(stage, "jobs", azureDefaultJobs)
			}

		case types.FindingInvalidDependsOn:
			if stage := elementAt(doc.Top("stages"), failure.StageIndex); stage != nil {
				err = removeDependency(stage, "dependsOn", failure.Dependency)
			}
		}
		if err != nil {
			return "", err
		}
	}

	logger.Debug().Int("failures", len(report.Failures)).Msg("azure devops patch complete")
	return doc.Serialize()
}

// elementAt returns the sequence element at the given optional index
func elementAt(list *kyaml.RNode, index *int) *kyaml.RNode {
	if index == nil {
		return nil
	}
	elements := sequenceElements(list)
	if *index < 0 || *index >= len(elements) {
		return nil
	}
	return elements[*index]
}
