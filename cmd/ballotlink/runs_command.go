package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ballotlink/internal/linker"
	"ballotlink/internal/mapfile"
	"ballotlink/internal/runstore"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded link runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunStore(func(store *runstore.Store) error {
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					views := make([]runView, 0, len(runs))
					for _, run := range runs {
						views = append(views, newRunView(run))
					}
					return writeJSON(cmd, views)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderRunsTable(runs))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")

	cmd.AddCommand(newRunsShowCommand(ctx))
	cmd.AddCommand(newRunsPruneCommand(ctx))
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one recorded run (an unambiguous id prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunStore(func(store *runstore.Store) error {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %q not found", args[0])
				}
				if asJSON {
					return writeJSON(cmd, newRunView(*run))
				}
				out := cmd.OutOrStdout()
				renderRunDetail(out, *run, shouldColorize(out))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newRunsPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete recorded runs older than a given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			return ctx.withRunStore(func(store *runstore.Store) error {
				removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s)\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Minimum age of runs to delete")
	return cmd
}

func (c *commandContext) withRunStore(fn func(*runstore.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := runstore.Open(cfg)
	if errors.Is(err, runstore.ErrDisabled) {
		return errors.New("run history is disabled (set run_store.enabled = true)")
	}
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

type runView struct {
	ID           string                 `json:"id"`
	Status       string                 `json:"status"`
	StartedAt    time.Time              `json:"started_at"`
	FinishedAt   time.Time              `json:"finished_at"`
	ConfigPath   string                 `json:"config_path,omitempty"`
	OutputDir    string                 `json:"output_dir,omitempty"`
	SkipPattern  string                 `json:"skip_pattern,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Inputs       map[string]string      `json:"inputs,omitempty"`
	Counts       mapfile.Counts         `json:"counts"`
	Contests     []linker.ContestLink   `json:"contests,omitempty"`
	Candidates   []linker.CandidateLink `json:"candidates,omitempty"`
	Conflicts    []string               `json:"conflicts,omitempty"`
	Warnings     []string               `json:"warnings,omitempty"`
}

func newRunView(run runstore.Run) runView {
	return runView{
		ID:           run.ID,
		Status:       string(run.Status),
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
		ConfigPath:   run.ConfigPath,
		OutputDir:    run.OutputDir,
		SkipPattern:  run.SkipPattern,
		ErrorMessage: run.ErrorMessage,
		Inputs:       run.Inputs,
		Counts:       run.Counts,
		Contests:     run.ContestLinks,
		Candidates:   run.CandidateLinks,
		Conflicts:    run.Conflicts,
		Warnings:     run.Warnings,
	}
}

func renderRunsTable(runs []runstore.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		c := run.Counts
		rows = append(rows, []string{
			shortID(run.ID),
			humanize.Time(run.StartedAt),
			string(run.Status),
			fmt.Sprintf("%d/%d", c.ContestsMapped, c.SecondaryContests),
			fmt.Sprintf("%d/%d", c.CandidatesMapped, c.SecondaryCandidates),
			strconv.Itoa(c.Conflicts),
			strconv.Itoa(c.Warnings),
		})
	}
	return renderTable(
		[]string{"ID", "Started", "Status", "Contests", "Candidates", "Conflicts", "Warnings"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}

func renderRunDetail(out io.Writer, run runstore.Run, colorize bool) {
	for _, line := range renderSectionHeader("Run "+run.ID, colorize) {
		fmt.Fprintln(out, line)
	}
	statusKind := statusOK
	if run.Status == runstore.StatusFailed {
		statusKind = statusError
	}
	fmt.Fprintln(out, renderStatusLine("Status", statusKind, run.ErrorMessage, colorize))
	fmt.Fprintln(out, renderStatusLine("Started", statusInfo,
		fmt.Sprintf("%s (%s)", run.StartedAt.Local().Format(time.RFC3339), humanize.Time(run.StartedAt)), colorize))
	fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, run.Duration().Round(time.Millisecond).String(), colorize))
	if run.OutputDir != "" {
		fmt.Fprintln(out, renderStatusLine("Outputs", statusInfo, run.OutputDir, colorize))
	}
	c := run.Counts
	kind, msg := coverageStatus(c.ContestsMapped, c.SecondaryContests)
	fmt.Fprintln(out, renderStatusLine("Contests", kind, msg, colorize))
	kind, msg = coverageStatus(c.CandidatesMapped, c.SecondaryCandidates)
	fmt.Fprintln(out, renderStatusLine("Candidates", kind, msg, colorize))

	if len(run.Inputs) > 0 {
		roles := make([]string, 0, len(run.Inputs))
		for role := range run.Inputs {
			roles = append(roles, role)
		}
		sort.Strings(roles)
		rows := make([][]string, 0, len(roles))
		for _, role := range roles {
			rows = append(rows, []string{role, run.Inputs[role]})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable([]string{"Input", "Path"}, rows, nil))
	}
	if len(run.ContestLinks) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderContestLinks(run.ContestLinks))
	}
	printList(out, "Conflicts", run.Conflicts, colorize)
	printList(out, "Warnings", run.Warnings, colorize)
}
