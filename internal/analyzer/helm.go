package analyzer

import (
	"os"
	"path/filepath"

	"github.com/alevsk/pipescope/internal/logger"
	helmloader "helm.sh/helm/v3/pkg/chart/loader"
)

// chartParents are directories commonly holding chart subdirectories
var chartParents = []string{"charts", "chart", "helm", "deploy"}

// findHelmChart locates and loads the first Helm chart in the repository.
// Charts that fail to load are skipped; a broken chart is not an analysis
// error.
func findHelmChart(root string) *ChartInfo {
	for _, dir := range chartDirs(root) {
		c, err := helmloader.Load(dir)
		if err != nil {
			logger.Debug().Str("dir", dir).Err(err).Msg("chart failed to load")
			continue
		}
		rel, err := filepath.Rel(root, dir)
		if err != nil {
			rel = dir
		}
		return &ChartInfo{
			Name:    c.Metadata.Name,
			Version: c.Metadata.Version,
			Path:    rel,
		}
	}
	return nil
}

// chartDirs lists candidate chart directories, the repository root first
func chartDirs(root string) []string {
	var dirs []string
	if hasFile(root, "Chart.yaml") {
		dirs = append(dirs, root)
	}
	for _, parent := range chartParents {
		entries, err := os.ReadDir(filepath.Join(root, parent))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			dir := filepath.Join(root, parent, entry.Name())
			if hasFile(dir, "Chart.yaml") {
				dirs = append(dirs, dir)
			}
		}
	}
	return dirs
}
