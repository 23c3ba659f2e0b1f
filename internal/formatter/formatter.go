package formatter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alevsk/pipescope/internal/types"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Formatter defines the interface for rendering a report
type Formatter interface {
	Format(report *types.Report) (string, error)
}

// Type represents the type of formatter
type Type string

const (
	// TypeJSON formats the report as JSON
	TypeJSON Type = "json"
	// TypeYAML formats the report as YAML
	TypeYAML Type = "yaml"
	// TypeTable formats the report as a table
	TypeTable Type = "table"
)

// JSON implements JSON formatting
type JSON struct{}

// YAML implements YAML formatting
type YAML struct{}

// Table implements table formatting
type Table struct{}

// Format formats the report as JSON
func (j *JSON) Format(report *types.Report) (string, error) {
	bytes, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error formatting as JSON: %w", err)
	}
	return string(bytes), nil
}

// Format formats the report as YAML
func (y *YAML) Format(report *types.Report) (string, error) {
	bytes, err := yaml.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("error formatting as YAML: %w", err)
	}
	return string(bytes), nil
}

// Format formats the report as tables using go-pretty/v6/table, one table for
// failures and one for warnings
func (t *Table) Format(report *types.Report) (string, error) {
	if report.Status == types.StatusError {
		return fmt.Sprintf("STATUS: %s\n%s\n", report.Status, report.Message), nil
	}

	failureTable := newFindingTable("FAILURES")
	for _, finding := range report.Failures {
		failureTable.AppendRow(findingRow(finding))
	}

	warningTable := newFindingTable("WARNINGS")
	for _, finding := range report.Warnings {
		warningTable.AppendRow(findingRow(finding))
	}

	return failureTable.Render() + "\n\n" + warningTable.Render() + "\n", nil
}

// newFindingTable creates a finding table with the shared style and headers
func newFindingTable(title string) table.Writer {
	w := table.NewWriter()
	w.SetOutputMirror(nil)
	w.SetStyle(table.StyleLight)
	w.Style().Options.SeparateColumns = true
	w.SetTitle(title)
	w.AppendHeader(table.Row{
		"TYPE",
		"LOCATION",
		"MESSAGE",
		"SUGGESTED FIX",
	})
	return w
}

// findingRow converts a finding to a table row
func findingRow(finding types.Finding) table.Row {
	return table.Row{
		string(finding.Kind),
		findingLocation(finding),
		finding.Message,
		finding.SuggestedFix,
	}
}

// findingLocation renders whichever location fields the finding carries
func findingLocation(finding types.Finding) string {
	var parts []string
	if finding.Job != "" {
		parts = append(parts, fmt.Sprintf("job=%s", finding.Job))
	}
	if finding.Stage != "" {
		parts = append(parts, fmt.Sprintf("stage=%s", finding.Stage))
	}
	if finding.JobIndex != nil {
		parts = append(parts, fmt.Sprintf("job=%d", *finding.JobIndex))
	}
	if finding.StageIndex != nil {
		parts = append(parts, fmt.Sprintf("stage=%d", *finding.StageIndex))
	}
	if finding.StepIndex != nil {
		parts = append(parts, fmt.Sprintf("step=%d", *finding.StepIndex))
	}
	return strings.Join(parts, " ")
}

// ParseType converts a string to a Type
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeJSON, TypeYAML, TypeTable:
		return Type(s), nil
	default:
		return "", fmt.Errorf("unknown formatter type: %s", s)
	}
}

// NewFormatter creates a new formatter of the specified type
func NewFormatter(t Type) (Formatter, error) {
	switch t {
	case TypeJSON:
		return &JSON{}, nil
	case TypeYAML:
		return &YAML{}, nil
	case TypeTable:
		return &Table{}, nil
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", t)
	}
}
