// Package dispatcher is the engine entrypoint: it routes pipeline text to the
// loader, rule battery and patcher for its kind and folds load problems into
// the report instead of returning them as errors.
package dispatcher

import (
	"fmt"

	"github.com/alevsk/pipescope/internal/checker"
	"github.com/alevsk/pipescope/internal/loader"
	"github.com/alevsk/pipescope/internal/logger"
	"github.com/alevsk/pipescope/internal/patcher"
	"github.com/alevsk/pipescope/internal/types"
)

// Detect runs the failure rules for kind over the pipeline text and optional
// build logs. Text that cannot be loaded yields an error report rather than
// an error; there is always a report to show.
func Detect(text string, kind types.PipelineKind, logs string) *types.Report {
	l, err := loader.New(kind)
	if err != nil {
		return types.ErrorReport(err.Error())
	}
	doc, err := l.Load(text)
	if err != nil {
		logger.Debug().Str("kind", kind.String()).Err(err).Msg("pipeline failed to load")
		return types.ErrorReport(fmt.Sprintf("failed to parse pipeline: %v", err))
	}

	c, err := checker.New(kind, nil)
	if err != nil {
		return types.ErrorReport(err.Error())
	}
	return c.Check(doc, logs)
}

// Fix patches the pipeline text to resolve the report's failures. A nil
// report triggers a fresh detection first. Error reports and reports without
// failures are not patchable; the text is returned unchanged in the latter
// case.
func Fix(text string, kind types.PipelineKind, report *types.Report) (string, error) {
	if report == nil {
		report = Detect(text, kind, "")
	}
	if report.Status == types.StatusError {
		return "", fmt.Errorf("cannot patch an unparseable pipeline: %s", report.Message)
	}
	if len(report.Failures) == 0 {
		return text, nil
	}

	p, err := patcher.New(kind)
	if err != nil {
		return "", err
	}
	fixed, err := p.Fix(text, report)
	if err != nil {
		return "", fmt.Errorf("failed to patch pipeline: %w", err)
	}
	logger.Info().Str("kind", kind.String()).Int("failures", len(report.Failures)).
		Msg("pipeline patched")
	return fixed, nil
}
