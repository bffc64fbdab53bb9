package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ballotlink/internal/config"
	"ballotlink/internal/linker"
)

// ErrDisabled is returned by Open when the run store is turned off.
var ErrDisabled = errors.New("run store disabled")

// ErrAmbiguousID reports a run id prefix matching more than one run.
var ErrAmbiguousID = errors.New("ambiguous run id")

const (
	diagnosticConflict = "conflict"
	diagnosticWarning  = "warning"
)

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run database configured in cfg and
// applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if !cfg.RunStore.Enabled {
		return nil, ErrDisabled
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.RunStore.Path)
}

// OpenPath opens the database at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores run with its inputs, links, and diagnostics in one
// transaction.
func (s *Store) Record(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}
	return retryOnBusy(ctx, func() error { return s.record(ctx, run) })
}

func (s *Store) record(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	c := run.Counts
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (
            id, status, started_at, finished_at, config_path, output_dir, skip_pattern,
            primary_contests, primary_candidates, secondary_contests, secondary_candidates,
            contests_mapped, candidates_mapped, overrides_applied, conflicts, warnings, error_message
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		string(run.Status),
		formatTime(run.StartedAt),
		nullableTime(run.FinishedAt),
		nullableString(run.ConfigPath),
		nullableString(run.OutputDir),
		nullableString(run.SkipPattern),
		c.PrimaryContests, c.PrimaryCandidates, c.SecondaryContests, c.SecondaryCandidates,
		c.ContestsMapped, c.CandidatesMapped, c.OverridesApplied, c.Conflicts, c.Warnings,
		nullableString(run.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for role, path := range run.Inputs {
		if strings.TrimSpace(path) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO run_inputs (run_id, role, path) VALUES (?, ?, ?)`, run.ID, role, path); err != nil {
			return fmt.Errorf("insert input %s: %w", role, err)
		}
	}
	for i, link := range run.ContestLinks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_contest_links (run_id, position, secondary_id, primary_id, secondary_name, primary_name)
             VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, i, link.Secondary, link.Primary, nullableString(link.SecondaryName), nullableString(link.PrimaryName),
		); err != nil {
			return fmt.Errorf("insert contest link: %w", err)
		}
	}
	for i, link := range run.CandidateLinks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_candidate_links (
                run_id, position, secondary_contest_id, secondary_candidate_id,
                primary_contest_id, primary_candidate_id, secondary_name, primary_name
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, link.Secondary.ContestID, link.Secondary.CandidateID,
			link.Primary.ContestID, link.Primary.CandidateID,
			nullableString(link.SecondaryName), nullableString(link.PrimaryName),
		); err != nil {
			return fmt.Errorf("insert candidate link: %w", err)
		}
	}
	if err := insertDiagnostics(ctx, tx, run.ID, diagnosticConflict, run.Conflicts); err != nil {
		return err
	}
	if err := insertDiagnostics(ctx, tx, run.ID, diagnosticWarning, run.Warnings); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

func insertDiagnostics(ctx context.Context, tx *sql.Tx, runID, kind string, messages []string) error {
	for i, msg := range messages {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_diagnostics (run_id, position, kind, message) VALUES (?, ?, ?, ?)`,
			runID, i, kind, msg,
		); err != nil {
			return fmt.Errorf("insert %s: %w", kind, err)
		}
	}
	return nil
}

const runColumns = `id, status, started_at, finished_at, config_path, output_dir, skip_pattern,
    primary_contests, primary_candidates, secondary_contests, secondary_candidates,
    contests_mapped, candidates_mapped, overrides_applied, conflicts, warnings, error_message`

// List returns the most recent runs, newest first, without links or
// diagnostics. A limit <= 0 returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Get fetches a run by id or unique id prefix, including links and
// diagnostics. It returns nil when no run matches.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	run, err := s.lookup(ctx, id)
	if err != nil || run == nil {
		return run, err
	}
	if err := s.loadDetails(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Store) lookup(ctx context.Context, id string) (*Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == nil {
		return run, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run: %w", err)
	}

	pattern := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(id) + "%"
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`, pattern)
	if err != nil {
		return nil, fmt.Errorf("get run by prefix: %w", err)
	}
	defer rows.Close()
	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousID, id)
	}
}

func (s *Store) loadDetails(ctx context.Context, run *Run) error {
	inputs, err := s.db.QueryContext(ctx, `SELECT role, path FROM run_inputs WHERE run_id = ? ORDER BY role`, run.ID)
	if err != nil {
		return fmt.Errorf("query inputs: %w", err)
	}
	run.Inputs = make(map[string]string)
	for inputs.Next() {
		var role, path string
		if err := inputs.Scan(&role, &path); err != nil {
			inputs.Close()
			return fmt.Errorf("scan input: %w", err)
		}
		run.Inputs[role] = path
	}
	inputs.Close()
	if err := inputs.Err(); err != nil {
		return fmt.Errorf("iterate inputs: %w", err)
	}

	contests, err := s.db.QueryContext(ctx,
		`SELECT secondary_id, primary_id, secondary_name, primary_name
         FROM run_contest_links WHERE run_id = ? ORDER BY position`, run.ID)
	if err != nil {
		return fmt.Errorf("query contest links: %w", err)
	}
	for contests.Next() {
		var link linker.ContestLink
		var secName, primName sql.NullString
		if err := contests.Scan(&link.Secondary, &link.Primary, &secName, &primName); err != nil {
			contests.Close()
			return fmt.Errorf("scan contest link: %w", err)
		}
		link.SecondaryName, link.PrimaryName = secName.String, primName.String
		run.ContestLinks = append(run.ContestLinks, link)
	}
	contests.Close()
	if err := contests.Err(); err != nil {
		return fmt.Errorf("iterate contest links: %w", err)
	}

	candidates, err := s.db.QueryContext(ctx,
		`SELECT secondary_contest_id, secondary_candidate_id, primary_contest_id, primary_candidate_id,
                secondary_name, primary_name
         FROM run_candidate_links WHERE run_id = ? ORDER BY position`, run.ID)
	if err != nil {
		return fmt.Errorf("query candidate links: %w", err)
	}
	for candidates.Next() {
		var link linker.CandidateLink
		var secName, primName sql.NullString
		if err := candidates.Scan(
			&link.Secondary.ContestID, &link.Secondary.CandidateID,
			&link.Primary.ContestID, &link.Primary.CandidateID,
			&secName, &primName,
		); err != nil {
			candidates.Close()
			return fmt.Errorf("scan candidate link: %w", err)
		}
		link.SecondaryName, link.PrimaryName = secName.String, primName.String
		run.CandidateLinks = append(run.CandidateLinks, link)
	}
	candidates.Close()
	if err := candidates.Err(); err != nil {
		return fmt.Errorf("iterate candidate links: %w", err)
	}

	diags, err := s.db.QueryContext(ctx,
		`SELECT kind, message FROM run_diagnostics WHERE run_id = ? ORDER BY kind, position`, run.ID)
	if err != nil {
		return fmt.Errorf("query diagnostics: %w", err)
	}
	defer diags.Close()
	for diags.Next() {
		var kind, msg string
		if err := diags.Scan(&kind, &msg); err != nil {
			return fmt.Errorf("scan diagnostic: %w", err)
		}
		if kind == diagnosticConflict {
			run.Conflicts = append(run.Conflicts, msg)
		} else {
			run.Warnings = append(run.Warnings, msg)
		}
	}
	return diags.Err()
}

// Prune deletes runs started before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, formatTime(cutoff))
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return removed, nil
}
