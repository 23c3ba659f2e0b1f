package checker

import (
	"strings"

	"github.com/alevsk/pipescope/internal/types"
)

// logRule is one substring heuristic over raw execution-log text. Log
// heuristics are advisory: they never block and are independent of the
// structural model.
type logRule struct {
	Substring string
	Kind      types.FindingKind
	Message   string
	Fix       string
}

var commonLogRules = []logRule{
	{
		Substring: "No such file or directory",
		Kind:      types.FindingFileNotFound,
		Message:   "possible file-not-found error in execution logs",
		Fix:       "check file paths referenced by the pipeline",
	},
	{
		Substring: "Permission denied",
		Kind:      types.FindingPermissionDenied,
		Message:   "possible permission-denied error in execution logs",
		Fix:       "check file permissions or add 'chmod +x' for scripts",
	},
}

// scanLogs appends one warning per matching log rule, in rule order
func scanLogs(report *types.Report, logs string, rules []logRule) {
	if logs == "" {
		return
	}
	for _, rule := range rules {
		if strings.Contains(logs, rule.Substring) {
			report.AddWarning(types.Finding{
				Kind:         rule.Kind,
				Message:      rule.Message,
				SuggestedFix: rule.Fix,
			})
		}
	}
}
