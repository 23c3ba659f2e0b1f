package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/alevsk/pipescope/internal/analyzer"
	"github.com/alevsk/pipescope/internal/generator"
	"github.com/alevsk/pipescope/internal/types"
	"github.com/spf13/cobra"
)

var (
	generateKind string
	generateOut  string
)

var generateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Generate a starter pipeline for a repository",
	Long: `Analyze a repository and generate a starter pipeline for it. Without
--kind the recommended pipeline kind from the analysis is used.

Examples:
  # Print a starter pipeline for the current directory
  pipescope generate .

  # Generate a Jenkinsfile and write it into the repository
  pipescope generate . --kind jenkins --out .`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		analysis, err := analyzer.Analyze(cmd.Context(), args[0], analyzerOptions())
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		kind := analysis.RecommendedKind
		if generateKind != "" {
			kind, err = types.ParseKind(generateKind)
			if err != nil {
				return err
			}
		}

		g, err := generator.New(kind)
		if err != nil {
			return err
		}
		files, err := g.Generate(analysis)
		if err != nil {
			return fmt.Errorf("generation failed: %w", err)
		}

		paths := make([]string, 0, len(files))
		for path := range files {
			paths = append(paths, path)
		}
		sort.Strings(paths)

		if generateOut == "" {
			for _, path := range paths {
				fmt.Printf("# %s\n%s", path, files[path])
			}
			return nil
		}

		for _, path := range paths {
			target := filepath.Join(generateOut, path)
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
			}
			if err := os.WriteFile(target, []byte(files[path]), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", target, err)
			}
			fmt.Printf("Wrote %s\n", target)
		}
		return nil
	},
}

func init() {
	flags := generateCmd.Flags()
	flags.StringVarP(&generateKind, "kind", "k", "", "pipeline kind to generate (default: recommended by the analysis)")
	flags.StringVar(&generateOut, "out", "", "directory to write the generated files into (default: print to stdout)")
}
