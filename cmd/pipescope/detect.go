package main

import (
	"fmt"
	"os"

	"github.com/alevsk/pipescope/internal/dispatcher"
	"github.com/alevsk/pipescope/internal/formatter"
	"github.com/alevsk/pipescope/internal/resolver"
	"github.com/alevsk/pipescope/internal/types"
	"github.com/spf13/cobra"
)

var (
	detectKind   string
	detectLogs   string
	detectOutput string
)

var detectCmd = &cobra.Command{
	Use:   "detect [pipeline-file]",
	Short: "Detect failures in a pipeline definition",
	Long: `Detect structural failures and common misconfigurations in a pipeline file.

The pipeline kind is inferred from the file name and content; use --kind to
force it. Build logs can be supplied to surface runtime failure hints.

Examples:
  # Detect failures in a GitHub Actions workflow
  pipescope detect .github/workflows/ci.yml

  # Force the pipeline kind and include build logs
  pipescope detect ci.yml --kind gitlab_ci --logs build.log

  # Machine-readable output
  pipescope detect Jenkinsfile -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read pipeline: %w", err)
		}

		kind, err := pipelineKind(path, content, detectKind)
		if err != nil {
			return err
		}

		var logs string
		if detectLogs != "" {
			logBytes, err := os.ReadFile(detectLogs)
			if err != nil {
				return fmt.Errorf("failed to read logs: %w", err)
			}
			logs = string(logBytes)
		}

		report := dispatcher.Detect(string(content), kind, logs)

		formatType, err := formatter.ParseType(detectOutput)
		if err != nil {
			return err
		}
		f, err := formatter.NewFormatter(formatType)
		if err != nil {
			return err
		}
		out, err := f.Format(report)
		if err != nil {
			return err
		}
		fmt.Println(out)

		if report.Status == types.StatusError {
			return fmt.Errorf("pipeline could not be analyzed: %s", report.Message)
		}
		return nil
	},
}

// pipelineKind resolves the pipeline kind from the flag, or from the file
// name and content when the flag is empty
func pipelineKind(path string, content []byte, flag string) (types.PipelineKind, error) {
	if flag != "" {
		return types.ParseKind(flag)
	}
	kind, err := resolver.DetectKind(path, content)
	if err != nil {
		return "", fmt.Errorf("%w (use --kind to set it explicitly)", err)
	}
	return kind, nil
}

func init() {
	flags := detectCmd.Flags()
	flags.StringVarP(&detectKind, "kind", "k", "", "pipeline kind (github_actions, gitlab_ci, jenkins, azure_devops)")
	flags.StringVarP(&detectLogs, "logs", "l", "", "path to a build log file to scan for failure hints")
	flags.StringVarP(&detectOutput, "output", "o", "table", "output format (table, json, yaml)")
}
