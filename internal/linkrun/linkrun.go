package linkrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ballotlink/internal/config"
	"ballotlink/internal/dataset"
	"ballotlink/internal/fileutil"
	"ballotlink/internal/linker"
	"ballotlink/internal/logging"
	"ballotlink/internal/mapfile"
	"ballotlink/internal/overrides"
	"ballotlink/internal/runstore"
)

// OverridesSnapshotFile is the copy of the applied overrides kept beside the
// outputs. YAML override files keep their own extension.
const OverridesSnapshotFile = "overrides.applied.json"

func snapshotName(overridesPath string) string {
	switch ext := strings.ToLower(filepath.Ext(overridesPath)); ext {
	case ".yaml", ".yml":
		return "overrides.applied" + ext
	}
	return OverridesSnapshotFile
}

// ErrNoInputs reports a request without candidate files for both sides.
var ErrNoInputs = errors.New("primary and secondary inputs are required")

// Inputs names the four TSV files of a run. Contest files are optional.
type Inputs struct {
	PrimaryContests     string
	PrimaryCandidates   string
	SecondaryContests   string
	SecondaryCandidates string
}

func (in Inputs) primaryGiven() bool {
	return strings.TrimSpace(in.PrimaryContests) != "" || strings.TrimSpace(in.PrimaryCandidates) != ""
}

func (in Inputs) secondaryGiven() bool {
	return strings.TrimSpace(in.SecondaryContests) != "" || strings.TrimSpace(in.SecondaryCandidates) != ""
}

// Request describes one run. Empty fields fall back to the configuration.
type Request struct {
	RunID         string
	Inputs        Inputs
	OutputDir     string
	OverridesPath string
	ConfigPath    string
	// NoStore skips recording the run in the history store.
	NoStore bool
	// DryRun matches and reports without writing output files.
	DryRun bool
}

// Summary is the outcome of a run.
type Summary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	OutputDir  string
	Counts     mapfile.Counts
	Result     linker.Result
	Files      mapfile.Files
	Overrides  overrides.Applied
	Recorded   bool
}

// Runner executes linking runs against a configuration.
type Runner struct {
	cfg    *config.Config
	base   *slog.Logger
	logger *slog.Logger
	now    func() time.Time
}

// NewRunner constructs a Runner.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		base:   logger,
		logger: logging.NewComponentLogger(logger, "linkrun"),
		now:    time.Now,
	}
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Run performs the full pipeline. Data-quality problems never fail a run;
// they are reported in the Summary. Malformed input, misuse, I/O failures,
// and cancellation do.
func (r *Runner) Run(ctx context.Context, req Request) (*Summary, error) {
	summary := &Summary{
		RunID:     strings.TrimSpace(req.RunID),
		StartedAt: r.now(),
		OutputDir: firstNonEmpty(req.OutputDir, r.cfg.Paths.OutputDir),
	}
	if summary.RunID == "" {
		summary.RunID = NewRunID()
	}
	overridesPath := firstNonEmpty(req.OverridesPath, r.cfg.Paths.OverridesPath)
	logger := r.logger

	err := r.run(ctx, req, overridesPath, summary)
	summary.FinishedAt = r.now()

	if !req.NoStore && r.cfg.RunStore.Enabled && !errors.Is(err, context.Canceled) {
		if recErr := r.record(ctx, req, overridesPath, summary, err); recErr != nil {
			logging.WarnWithContext(logger, "failed to record run", "run_store_failed",
				logging.Error(recErr),
				logging.String(logging.FieldErrorHint, "check run_store.path permissions or pass --no-store"),
				logging.String(logging.FieldImpact, "run history not updated"),
			)
		} else {
			summary.Recorded = true
		}
	}
	if err != nil {
		return summary, err
	}

	logger.Info("link run complete",
		logging.Int("contests_mapped", summary.Counts.ContestsMapped),
		logging.Int("candidates_mapped", summary.Counts.CandidatesMapped),
		logging.Int("conflicts", summary.Counts.Conflicts),
		logging.Int("warnings", summary.Counts.Warnings),
		logging.String("duration", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond).String()),
	)
	return summary, nil
}

func (r *Runner) run(ctx context.Context, req Request, overridesPath string, summary *Summary) error {
	logger := r.logger
	if !req.Inputs.primaryGiven() || !req.Inputs.secondaryGiven() {
		return ErrNoInputs
	}

	var primary, secondary dataset.Side
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		side, err := dataset.Load(gctx, req.Inputs.PrimaryContests, req.Inputs.PrimaryCandidates)
		if err != nil {
			return fmt.Errorf("load primary: %w", err)
		}
		primary = side
		return nil
	})
	g.Go(func() error {
		side, err := dataset.Load(gctx, req.Inputs.SecondaryContests, req.Inputs.SecondaryCandidates)
		if err != nil {
			return fmt.Errorf("load secondary: %w", err)
		}
		secondary = side
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	summary.Counts.PrimaryContests, summary.Counts.PrimaryCandidates = primary.Counts()
	summary.Counts.SecondaryContests, summary.Counts.SecondaryCandidates = secondary.Counts()
	logger.Info("datasets loaded",
		logging.Int("primary_contests", summary.Counts.PrimaryContests),
		logging.Int("primary_candidates", summary.Counts.PrimaryCandidates),
		logging.Int("secondary_contests", summary.Counts.SecondaryContests),
		logging.Int("secondary_candidates", summary.Counts.SecondaryCandidates),
	)
	if err := ctx.Err(); err != nil {
		return err
	}

	matcher, err := linker.New(linker.Options{
		SkipPattern:         r.cfg.Matching.SkipPattern,
		SkipChoices:         r.cfg.Matching.SkipChoices,
		SuppressTieWarnings: !r.cfg.Matching.WarnOnTies,
		Logger:              r.base,
	})
	if err != nil {
		return err
	}

	catalog := overrides.NewCatalog(overridesPath, r.base)
	applied, err := catalog.Apply(matcher)
	if err != nil {
		return fmt.Errorf("apply overrides: %w", err)
	}
	summary.Overrides = applied
	summary.Counts.OverridesApplied = applied.Contests + applied.Candidates

	if err := dataset.Feed(matcher, linker.Primary, primary); err != nil {
		return err
	}
	if err := dataset.Feed(matcher, linker.Secondary, secondary); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := matcher.Resolve(); err != nil {
		return err
	}
	if err := matcher.ResolveCandidates(); err != nil {
		return err
	}
	summary.Result = matcher.Result()
	report := mapfile.NewReport(summary.RunID, summary.StartedAt, r.now(), summary.Counts, summary.Result)
	summary.Counts = report.Counts
	if err := ctx.Err(); err != nil {
		return err
	}

	if req.DryRun {
		logger.Info("dry run; outputs not written", logging.String("output_dir", summary.OutputDir))
		return nil
	}
	files, err := mapfile.Write(summary.OutputDir, report)
	if err != nil {
		return fmt.Errorf("write outputs: %w", err)
	}
	summary.Files = files
	logger.Info("outputs written", logging.String("output_dir", summary.OutputDir))

	if path := catalog.Path(); path != "" && applied.Contests+applied.Candidates+applied.Rejected > 0 {
		snapshot := filepath.Join(summary.OutputDir, snapshotName(path))
		if err := fileutil.CopyFileVerified(path, snapshot); err != nil {
			logging.WarnWithContext(logger, "failed to snapshot overrides", "overrides_snapshot_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "outputs written without a copy of the applied overrides"),
			)
		}
	}
	return nil
}

func (r *Runner) record(ctx context.Context, req Request, overridesPath string, summary *Summary, runErr error) error {
	store, err := runstore.Open(r.cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	run := runstore.Run{
		ID:          summary.RunID,
		Status:      runstore.StatusCompleted,
		StartedAt:   summary.StartedAt,
		FinishedAt:  summary.FinishedAt,
		ConfigPath:  req.ConfigPath,
		OutputDir:   summary.OutputDir,
		SkipPattern: r.cfg.Matching.SkipPattern,
		Inputs: map[string]string{
			runstore.InputPrimaryContests:     req.Inputs.PrimaryContests,
			runstore.InputPrimaryCandidates:   req.Inputs.PrimaryCandidates,
			runstore.InputSecondaryContests:   req.Inputs.SecondaryContests,
			runstore.InputSecondaryCandidates: req.Inputs.SecondaryCandidates,
			runstore.InputOverrides:           overridesPath,
		},
		Counts:         summary.Counts,
		ContestLinks:   summary.Result.ContestLinks,
		CandidateLinks: summary.Result.CandidateLinks,
		Conflicts:      summary.Result.Conflicts,
		Warnings:       summary.Result.Warnings,
	}
	if req.DryRun {
		run.OutputDir = ""
	}
	if runErr != nil {
		run.Status = runstore.StatusFailed
		run.ErrorMessage = runErr.Error()
	}
	return store.Record(context.WithoutCancel(ctx), run)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
