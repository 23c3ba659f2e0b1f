package main

import (
	"encoding/json"
	"fmt"

	"github.com/alevsk/pipescope/internal/analyzer"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var analyzeOutput string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze a repository and recommend a pipeline kind",
	Long: `Analyze a repository checkout: detect languages, build tooling, existing
pipeline files, tests, Docker and Helm charts, and recommend the pipeline
kind that fits the project best.

Examples:
  # Analyze the current directory
  pipescope analyze .

  # Analyze another checkout as JSON
  pipescope analyze ~/src/service -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		analysis, err := analyzer.Analyze(cmd.Context(), args[0], analyzerOptions())
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		switch analyzeOutput {
		case "json":
			out, err := json.MarshalIndent(analysis, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
		case "yaml":
			out, err := yaml.Marshal(analysis)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
		default:
			return fmt.Errorf("unknown output format: %s", analyzeOutput)
		}
		return nil
	},
}

// analyzerOptions builds analyzer options from the loaded configuration
func analyzerOptions() *analyzer.Options {
	opts := analyzer.DefaultOptions()
	if cfg.Analyzer.MaxFileSize > 0 {
		opts.MaxFileSize = cfg.Analyzer.MaxFileSize
	}
	if len(cfg.Analyzer.ExcludedDirs) > 0 {
		opts.ExcludedDirs = cfg.Analyzer.ExcludedDirs
	}
	return opts
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "yaml", "output format (json, yaml)")
}
