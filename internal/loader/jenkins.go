package loader

import (
	"regexp"

	"github.com/alevsk/pipescope/internal/types"
)

// Pattern extraction over the Jenkins declarative DSL. The format has no
// round-trippable data model, so blocks are located by anchored regular
// expressions; stage bodies run up to the first closing brace, which is an
// approximation, not a grammar.
var (
	jenkinsPipelineRe   = regexp.MustCompile(`pipeline\s*\{`)
	jenkinsAgentBlockRe = regexp.MustCompile(`agent\s*\{`)
	jenkinsAgentAnyRe   = regexp.MustCompile(`agent\s+any`)
	jenkinsStagesRe     = regexp.MustCompile(`stages\s*\{`)
	jenkinsStageCallRe  = regexp.MustCompile(`stage\s*\(`)
	jenkinsStageRe      = regexp.MustCompile(`stage\s*\(\s*['"]([^'"]+)['"]\s*\)\s*\{([^}]*)\}`)
	jenkinsVarRefRe     = regexp.MustCompile(`\$\{([a-zA-Z0-9_]+)\}`)
	jenkinsEnvBlockRe   = regexp.MustCompile(`environment\s*\{([^}]*)\}`)
	jenkinsEnvVarRe     = regexp.MustCompile(`([a-zA-Z0-9_]+)\s*=`)
	jenkinsParamsRe     = regexp.MustCompile(`parameters\s*\{([^}]*)\}`)
	jenkinsParamVarRe   = regexp.MustCompile(`([a-zA-Z0-9_]+)\s*\(`)
)

// JenkinsStage is one extracted stage span: its name and the body text
// between the stage's opening brace and the first closing brace.
type JenkinsStage struct {
	Name string
	Body string
}

// JenkinsDocument is the flat bag of spans extracted from a Jenkinsfile
type JenkinsDocument struct {
	// Raw is the original pipeline text
	Raw string

	HasPipeline  bool
	HasAgent     bool
	HasStages    bool
	HasStageCall bool

	// Stages are the extracted stage spans in order of appearance
	Stages []JenkinsStage
	// VarRefs are ${NAME} references in order of appearance
	VarRefs []string
	// DefinedVars are names declared in environment{} or parameters{} blocks
	DefinedVars map[string]bool
}

// Kind returns types.KindJenkins
func (d *JenkinsDocument) Kind() types.PipelineKind {
	return types.KindJenkins
}

// IsDefined reports whether a referenced variable name is declared
func (d *JenkinsDocument) IsDefined(name string) bool {
	return d.DefinedVars[name]
}

// jenkinsLoader extracts spans from Jenkinsfile text
type jenkinsLoader struct{}

// Load never fails: absence of expected constructs is reported as findings by
// the checker, not as load errors.
func (l *jenkinsLoader) Load(text string) (Document, error) {
	doc := &JenkinsDocument{
		Raw:          text,
		HasPipeline:  jenkinsPipelineRe.MatchString(text),
		HasAgent:     jenkinsAgentBlockRe.MatchString(text) || jenkinsAgentAnyRe.MatchString(text),
		HasStages:    jenkinsStagesRe.MatchString(text),
		HasStageCall: jenkinsStageCallRe.MatchString(text),
		DefinedVars:  make(map[string]bool),
	}

	for _, match := range jenkinsStageRe.FindAllStringSubmatch(text, -1) {
		doc.Stages = append(doc.Stages, JenkinsStage{Name: match[1], Body: match[2]})
	}

	for _, match := range jenkinsVarRefRe.FindAllStringSubmatch(text, -1) {
		doc.VarRefs = append(doc.VarRefs, match[1])
	}

	if envBlock := jenkinsEnvBlockRe.FindStringSubmatch(text); envBlock != nil {
		for _, match := range jenkinsEnvVarRe.FindAllStringSubmatch(envBlock[1], -1) {
			doc.DefinedVars[match[1]] = true
		}
	}

	if paramsBlock := jenkinsParamsRe.FindStringSubmatch(text); paramsBlock != nil {
		for _, match := range jenkinsParamVarRe.FindAllStringSubmatch(paramsBlock[1], -1) {
			doc.DefinedVars[match[1]] = true
		}
	}

	return doc, nil
}
