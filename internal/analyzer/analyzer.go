// Package analyzer inspects a repository checkout and reports the facts a
// pipeline generator needs: languages, build tooling, existing CI files and
// the pipeline kind that fits the project best.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alevsk/pipescope/internal/logger"
	"github.com/alevsk/pipescope/internal/resolver"
	"github.com/alevsk/pipescope/internal/types"
)

// Options controls how the repository walk behaves
type Options struct {
	// MaxFileSize is the largest file, in bytes, read for content checks
	MaxFileSize int64
	// ExcludedDirs are directory names skipped entirely during the walk
	ExcludedDirs []string
}

// DefaultOptions returns the default analyzer options
func DefaultOptions() *Options {
	return &Options{
		MaxFileSize: 1000000,
		ExcludedDirs: []string{
			"node_modules", "venv", "env", "__pycache__",
			"dist", "build", "target", "vendor",
		},
	}
}

// ChartInfo identifies a Helm chart found in the repository
type ChartInfo struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	Path    string `json:"path" yaml:"path"`
}

// Analysis is the result of analyzing a repository
type Analysis struct {
	Root            string                          `json:"root" yaml:"root"`
	Languages       map[string]float64              `json:"languages" yaml:"languages"`
	PrimaryLanguage string                          `json:"primary_language,omitempty" yaml:"primary_language,omitempty"`
	BuildTools      []string                        `json:"build_tools,omitempty" yaml:"build_tools,omitempty"`
	PackageManagers []string                        `json:"package_managers,omitempty" yaml:"package_managers,omitempty"`
	CIFiles         map[types.PipelineKind][]string `json:"ci_files,omitempty" yaml:"ci_files,omitempty"`
	HasTests        bool                            `json:"has_tests" yaml:"has_tests"`
	HasDocker       bool                            `json:"has_docker" yaml:"has_docker"`
	HelmChart       *ChartInfo                      `json:"helm_chart,omitempty" yaml:"helm_chart,omitempty"`
	RecommendedKind types.PipelineKind              `json:"recommended_kind" yaml:"recommended_kind"`
}

// extensionLanguages maps file extensions to language names
var extensionLanguages = map[string]string{
	".py": "Python", ".js": "JavaScript", ".ts": "TypeScript",
	".jsx": "JavaScript/React", ".tsx": "TypeScript/React",
	".java": "Java", ".c": "C", ".cpp": "C++", ".cs": "C#", ".go": "Go",
	".rb": "Ruby", ".php": "PHP", ".swift": "Swift", ".kt": "Kotlin",
	".rs": "Rust", ".scala": "Scala", ".html": "HTML", ".css": "CSS",
	".scss": "SCSS", ".sass": "Sass", ".sh": "Shell", ".bat": "Batch",
	".ps1": "PowerShell", ".md": "Markdown", ".json": "JSON", ".xml": "XML",
	".yaml": "YAML", ".yml": "YAML", ".toml": "TOML", ".sql": "SQL",
	".r": "R", ".dart": "Dart", ".lua": "Lua", ".ex": "Elixir",
	".exs": "Elixir", ".erl": "Erlang", ".fs": "F#", ".hs": "Haskell",
	".pl": "Perl", ".groovy": "Groovy", ".clj": "Clojure",
}

// testDirs are directory names that imply the repository has tests
var testDirs = []string{"test", "tests", "spec", "specs", "__tests__", "Testing", "unittest"}

// testFilePatterns are file name patterns that imply the repository has tests
var testFilePatterns = []string{
	"test_*.py", "*_test.py", "*Test.java", "*Tests.java",
	"*.test.js", "*.spec.js", "*_test.go",
}

// Analyze walks the repository rooted at root and builds an Analysis
func Analyze(ctx context.Context, root string, opts *Options) (*Analysis, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("repository path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository path %s is not a directory", root)
	}

	analysis := &Analysis{
		Root:      root,
		Languages: map[string]float64{},
		CIFiles:   map[types.PipelineKind][]string{},
	}

	counts := map[string]int{}
	total := 0

	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := entry.Name()
		if entry.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(name, ".") || containsString(opts.ExcludedDirs, name) {
				return filepath.SkipDir
			}
			if containsString(testDirs, name) {
				analysis.HasTests = true
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		if lang, ok := extensionLanguages[filepath.Ext(name)]; ok {
			counts[lang]++
			total++
		}
		for _, pattern := range testFilePatterns {
			if ok, _ := filepath.Match(pattern, name); ok {
				analysis.HasTests = true
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if total > 0 {
		for lang, count := range counts {
			analysis.Languages[lang] = math.Round(float64(count)/float64(total)*10000) / 100
		}
	}
	analysis.PrimaryLanguage = primaryLanguage(counts)

	analysis.BuildTools = detectBuildTools(root)
	analysis.PackageManagers = detectPackageManagers(root)
	analysis.CIFiles = findPipelineFiles(root, opts)
	analysis.HasDocker = hasDocker(root)
	analysis.HelmChart = findHelmChart(root)
	if !analysis.HasTests {
		analysis.HasTests = hasTestScript(root, opts)
	}
	analysis.RecommendedKind = recommendKind(analysis)

	logger.Debug().Str("root", root).Str("primary_language", analysis.PrimaryLanguage).
		Str("recommended", analysis.RecommendedKind.String()).Msg("repository analysis complete")
	return analysis, nil
}

// primaryLanguage picks the most frequent language, breaking ties by name
func primaryLanguage(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// detectBuildTools reports the build tools present in the repository root
func detectBuildTools(root string) []string {
	var tools []string
	if hasFile(root, "pom.xml") {
		tools = append(tools, "Maven")
	}
	if hasFile(root, "build.gradle") || hasFile(root, "build.gradle.kts") {
		tools = append(tools, "Gradle")
	}
	if hasFile(root, "package.json") {
		if hasFile(root, "yarn.lock") {
			tools = append(tools, "Yarn")
		} else {
			tools = append(tools, "npm")
		}
	}
	if hasFile(root, "requirements.txt") {
		tools = append(tools, "pip")
	}
	if hasFile(root, "Makefile") {
		tools = append(tools, "Make")
	}
	if hasFile(root, "CMakeLists.txt") {
		tools = append(tools, "CMake")
	}
	if hasFile(root, "Cargo.toml") {
		tools = append(tools, "Cargo")
	}
	if hasFile(root, "go.mod") {
		tools = append(tools, "Go Modules")
	}
	return tools
}

// detectPackageManagers reports the package managers present in the
// repository root
func detectPackageManagers(root string) []string {
	var managers []string
	if hasFile(root, "package.json") {
		if hasFile(root, "yarn.lock") {
			managers = append(managers, "Yarn")
		} else {
			managers = append(managers, "npm")
		}
	}
	if hasFile(root, "requirements.txt") {
		managers = append(managers, "pip")
	}
	if hasFile(root, "Pipfile") || hasFile(root, "Pipfile.lock") {
		managers = append(managers, "Pipenv")
	}
	if hasFile(root, "pom.xml") {
		managers = append(managers, "Maven")
	}
	if hasFile(root, "build.gradle") || hasFile(root, "build.gradle.kts") {
		managers = append(managers, "Gradle")
	}
	if hasFile(root, "Cargo.toml") {
		managers = append(managers, "Cargo")
	}
	if hasFile(root, "go.mod") {
		managers = append(managers, "Go Modules")
	}
	if hasFile(root, "composer.json") {
		managers = append(managers, "Composer")
	}
	if hasFile(root, "Gemfile") {
		managers = append(managers, "Bundler")
	}
	return managers
}

// findPipelineFiles locates existing pipeline definitions. Root-level
// candidates are classified through the same detection rules the CLI uses
// for standalone files.
func findPipelineFiles(root string, opts *Options) map[types.PipelineKind][]string {
	found := map[types.PipelineKind][]string{}

	workflows := filepath.Join(root, ".github", "workflows")
	if entries, err := os.ReadDir(workflows); err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := filepath.Ext(entry.Name())
			if ext == ".yml" || ext == ".yaml" {
				found[types.KindGitHubActions] = append(found[types.KindGitHubActions],
					filepath.Join(".github", "workflows", entry.Name()))
			}
		}
	}

	candidates := []string{
		".gitlab-ci.yml", ".gitlab-ci.yaml",
		"Jenkinsfile",
		"azure-pipelines.yml", "azure-pipelines.yaml",
	}
	for _, name := range candidates {
		path := filepath.Join(root, name)
		content, err := readSmallFile(path, opts.MaxFileSize)
		if err != nil {
			continue
		}
		kind, err := resolver.DetectKind(name, content)
		if err != nil {
			continue
		}
		found[kind] = append(found[kind], name)
	}
	return found
}

// hasDocker reports whether the repository carries Docker files
func hasDocker(root string) bool {
	for _, name := range []string{"Dockerfile", "docker-compose.yml", "docker-compose.yaml"} {
		if hasFile(root, name) {
			return true
		}
	}
	return false
}

// hasTestScript reports whether package.json declares a test script
func hasTestScript(root string, opts *Options) bool {
	content, err := readSmallFile(filepath.Join(root, "package.json"), opts.MaxFileSize)
	if err != nil {
		return false
	}
	var manifest struct {
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal(content, &manifest); err != nil {
		return false
	}
	for name := range manifest.Scripts {
		if strings.Contains(name, "test") {
			return true
		}
	}
	return false
}

// recommendKind picks the pipeline kind for the repository. An existing
// pipeline wins; otherwise the primary language decides.
func recommendKind(analysis *Analysis) types.PipelineKind {
	for _, kind := range types.Kinds() {
		if len(analysis.CIFiles[kind]) > 0 {
			return kind
		}
	}

	switch analysis.PrimaryLanguage {
	case "Java", "Kotlin":
		return types.KindJenkins
	case "C#", "F#":
		return types.KindAzureDevOps
	default:
		return types.KindGitHubActions
	}
}

func hasFile(root, name string) bool {
	info, err := os.Stat(filepath.Join(root, name))
	return err == nil && !info.IsDir()
}

// readSmallFile reads a file only when it exists and fits the size limit
func readSmallFile(path string, maxSize int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, fmt.Errorf("%s exceeds the size limit", path)
	}
	return os.ReadFile(path)
}

func containsString(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
