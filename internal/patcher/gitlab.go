package patcher

import (
	"github.com/alevsk/pipescope/internal/logger"
	"github.com/alevsk/pipescope/internal/types"
	kyaml "sigs.k8s.io/kustomize/kyaml/yaml"
)

const gitlabDefaultJob = `stage: build
script:
  - echo 'Building...'
`

// gitlabPatcher fixes GitLab CI pipeline documents
type gitlabPatcher struct{}

func (p *gitlabPatcher) Fix(text string, report *types.Report) (string, error) {
	if report == nil || len(report.Failures) == 0 {
		return text, nil
	}

	doc, err := loadYAML(types.KindGitLabCI, text)
	if err != nil {
		return "", err
	}

	for _, failure := range report.Failures {
		switch failure.Kind {
		case types.FindingMissingStages:
			err = doc.Root.PipeE(kyaml.SetField("stages", kyaml.NewListRNode("build", "test", "deploy")))

		case types.FindingMissingJobs:
			err = setSnippet(doc.Root, "build", gitlabDefaultJob)

		case types.FindingMissingScript:
			if job := doc.Top(failure.Job); job != nil && job.YNode().Kind == kyaml.MappingNode {
				err = job.PipeE(kyaml.SetField("script", kyaml.NewListRNode("echo 'Running...'")))
			}

		case types.FindingInvalidStage:
			err = p.declareStage(doc.Root, failure.Stage)
		}
		if err != nil {
			return "", err
		}
	}

	logger.Debug().Int("failures", len(report.Failures)).Msg("gitlab ci patch complete")
	return doc.Serialize()
}

// declareStage makes stage a valid stage name, creating the default stages
// list when none exists and appending to it otherwise
func (p *gitlabPatcher) declareStage(root *kyaml.RNode, stage string) error {
	stages := mapField(root, "stages")
	if stages == nil {
		return root.PipeE(kyaml.SetField("stages", kyaml.NewListRNode("build", "test", "deploy")))
	}
	for _, element := range sequenceElements(stages) {
		if element.YNode().Kind == kyaml.ScalarNode && element.YNode().Value == stage {
			return nil
		}
	}
	return stages.PipeE(kyaml.Append(kyaml.NewScalarRNode(stage).YNode()))
}
