package preflight

import (
	"context"

	"ballotlink/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckOutputDirectory("Output directory", cfg.Paths.OutputDir))
	results = append(results, CheckOutputDirectory("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckSkipPattern(cfg.Matching.SkipPattern, cfg.Matching.SkipChoices))

	if cfg.Paths.OverridesPath != "" {
		results = append(results, CheckOverrides(cfg.Paths.OverridesPath))
	}

	if cfg.RunStore.Enabled {
		results = append(results, CheckRunStore(ctx, cfg.RunStore.Path))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
