package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alevsk/pipescope/internal/dispatcher"
	"github.com/alevsk/pipescope/internal/logger"
	"github.com/alevsk/pipescope/internal/types"
	"github.com/spf13/cobra"
)

var (
	fixKind   string
	fixWrite  bool
	fixReport string
)

var fixCmd = &cobra.Command{
	Use:   "fix [pipeline-file]",
	Short: "Patch the failures detected in a pipeline definition",
	Long: `Detect failures in a pipeline file and rewrite it with the problems fixed.

Only failures are patched; warnings are advisory and left alone. The patched
pipeline is printed to stdout unless --write is given.

Examples:
  # Print the patched pipeline
  pipescope fix .gitlab-ci.yml

  # Patch the file in place
  pipescope fix Jenkinsfile --write

  # Patch using a previously saved findings report
  pipescope fix ci.yml --report findings.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read pipeline: %w", err)
		}

		kind, err := pipelineKind(path, content, fixKind)
		if err != nil {
			return err
		}

		var report *types.Report
		if fixReport != "" {
			raw, err := os.ReadFile(fixReport)
			if err != nil {
				return fmt.Errorf("failed to read report: %w", err)
			}
			report = &types.Report{}
			if err := json.Unmarshal(raw, report); err != nil {
				return fmt.Errorf("failed to parse report: %w", err)
			}
		} else {
			report = dispatcher.Detect(string(content), kind, "")
		}
		fixed, err := dispatcher.Fix(string(content), kind, report)
		if err != nil {
			return err
		}

		if len(report.Failures) == 0 {
			logger.Info().Str("path", path).Msg("no failures to fix")
		}

		if fixWrite {
			if err := os.WriteFile(path, []byte(fixed), 0o644); err != nil {
				return fmt.Errorf("failed to write pipeline: %w", err)
			}
			fmt.Printf("Patched %d failure(s) in %s\n", len(report.Failures), path)
			return nil
		}

		fmt.Print(fixed)
		return nil
	},
}

func init() {
	flags := fixCmd.Flags()
	flags.StringVarP(&fixKind, "kind", "k", "", "pipeline kind (github_actions, gitlab_ci, jenkins, azure_devops)")
	flags.BoolVarP(&fixWrite, "write", "w", false, "write the patched pipeline back to the file")
	flags.StringVarP(&fixReport, "report", "r", "", "findings report (JSON) to patch from instead of re-detecting")
}
