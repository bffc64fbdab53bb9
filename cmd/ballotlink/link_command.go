package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ballotlink/internal/linker"
	"ballotlink/internal/linkrun"
	"ballotlink/internal/mapfile"
)

type linkOptions struct {
	inputs    linkrun.Inputs
	outputDir string
	overrides string
	noStore   bool
	dryRun    bool
	json      bool
	details   bool
}

func newLinkCommand(ctx *commandContext) *cobra.Command {
	var opts linkOptions

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Match a secondary dataset against the primary dataset",
		Long: `Match contests and candidates from a secondary dataset to a primary dataset
using exact normalized names, then write contest_map.tsv, candidate_map.tsv,
unmapped.tsv and report.json to the output directory.

Contest files hold contest_id, contest_name and an optional ballot choice per
line; candidate files hold contest_id, candidate_id and full_name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runID := linkrun.NewRunID()
			logger, err := ctx.logger(runID)
			if err != nil {
				return err
			}

			runner := linkrun.NewRunner(cfg, logger)
			summary, err := runner.Run(cmd.Context(), linkrun.Request{
				RunID:         runID,
				Inputs:        opts.inputs,
				OutputDir:     opts.outputDir,
				OverridesPath: opts.overrides,
				ConfigPath:    ctx.loadedConfigPath(),
				NoStore:       opts.noStore,
				DryRun:        opts.dryRun,
			})
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd, newLinkJSON(summary))
			}
			out := cmd.OutOrStdout()
			renderLinkSummary(out, summary, opts.details, shouldColorize(out))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.inputs.PrimaryContests, "primary-contests", "", "Primary contests TSV (contest_id, contest_name[, choice])")
	flags.StringVar(&opts.inputs.PrimaryCandidates, "primary-candidates", "", "Primary candidates TSV (contest_id, candidate_id, full_name)")
	flags.StringVar(&opts.inputs.SecondaryContests, "secondary-contests", "", "Secondary contests TSV")
	flags.StringVar(&opts.inputs.SecondaryCandidates, "secondary-candidates", "", "Secondary candidates TSV")
	flags.StringVarP(&opts.outputDir, "out", "o", "", "Output directory (default paths.output_dir)")
	flags.StringVar(&opts.overrides, "overrides", "", "Manual overrides JSON (default paths.overrides_path)")
	flags.BoolVar(&opts.noStore, "no-store", false, "Do not record this run in the run history")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Match and report without writing output files")
	flags.BoolVar(&opts.json, "json", false, "Emit the run summary as JSON")
	flags.BoolVar(&opts.details, "details", false, "Also list every contest link and unmapped entry")
	return cmd
}

type linkJSON struct {
	RunID              string                     `json:"run_id"`
	OutputDir          string                     `json:"output_dir,omitempty"`
	DurationMillis     int64                      `json:"duration_ms"`
	Recorded           bool                       `json:"recorded"`
	Counts             mapfile.Counts             `json:"counts"`
	Contests           []linker.ContestLink       `json:"contests"`
	Candidates         []linker.CandidateLink     `json:"candidates"`
	Conflicts          []string                   `json:"conflicts"`
	Warnings           []string                   `json:"warnings"`
	UnmappedContests   []linker.UnmappedContest   `json:"unmapped_contests"`
	UnmappedCandidates []linker.UnmappedCandidate `json:"unmapped_candidates"`
}

func newLinkJSON(summary *linkrun.Summary) linkJSON {
	report := mapfile.NewReport(summary.RunID, summary.StartedAt, summary.FinishedAt, summary.Counts, summary.Result)
	out := linkJSON{
		RunID:              summary.RunID,
		DurationMillis:     summary.FinishedAt.Sub(summary.StartedAt).Milliseconds(),
		Recorded:           summary.Recorded,
		Counts:             report.Counts,
		Contests:           report.Contests,
		Candidates:         report.Candidates,
		Conflicts:          report.Conflicts,
		Warnings:           report.Warnings,
		UnmappedContests:   report.UnmappedContests,
		UnmappedCandidates: report.UnmappedCandidates,
	}
	if summary.Files.Report != "" {
		out.OutputDir = summary.OutputDir
	}
	return out
}

func renderLinkSummary(out io.Writer, summary *linkrun.Summary, details, colorize bool) {
	res := summary.Result
	c := summary.Counts

	for _, line := range renderSectionHeader("Link run "+summary.RunID, colorize) {
		fmt.Fprintln(out, line)
	}
	kind, msg := coverageStatus(c.ContestsMapped, c.SecondaryContests)
	fmt.Fprintln(out, renderStatusLine("Contests", kind, msg, colorize))
	kind, msg = coverageStatus(c.CandidatesMapped, c.SecondaryCandidates)
	fmt.Fprintln(out, renderStatusLine("Candidates", kind, msg, colorize))
	if c.OverridesApplied > 0 || summary.Overrides.Rejected > 0 {
		fmt.Fprintln(out, renderStatusLine("Overrides", statusInfo,
			fmt.Sprintf("%d applied, %d rejected", c.OverridesApplied, summary.Overrides.Rejected), colorize))
	}
	kind, msg = countStatus(len(res.Conflicts), statusError)
	fmt.Fprintln(out, renderStatusLine("Conflicts", kind, msg, colorize))
	kind, msg = countStatus(len(res.Warnings), statusWarn)
	fmt.Fprintln(out, renderStatusLine("Warnings", kind, msg, colorize))
	unmapped := len(res.UnmappedContestsPrimary) + len(res.UnmappedContestsSecondary) +
		len(res.UnmappedCandidatesPrimary) + len(res.UnmappedCandidatesSecondary)
	kind, msg = countStatus(unmapped, statusWarn)
	fmt.Fprintln(out, renderStatusLine("Unmapped", kind, msg, colorize))
	if summary.Files.Report != "" {
		fmt.Fprintln(out, renderStatusLine("Outputs", statusInfo, summary.OutputDir, colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Outputs", statusInfo, "not written (dry run)", colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Duration", statusInfo,
		summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond).String(), colorize))

	printList(out, "Conflicts", res.Conflicts, colorize)
	printList(out, "Warnings", res.Warnings, colorize)

	if !details {
		return
	}
	if len(res.ContestLinks) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderContestLinks(res.ContestLinks))
	}
	if unmapped > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderUnmapped(res))
	}
}

func printList(out io.Writer, title string, items []string, colorize bool) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(out)
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(out, line)
	}
	for _, item := range items {
		fmt.Fprintf(out, "%s- %s\n", statusIndent, item)
	}
}

func renderContestLinks(links []linker.ContestLink) string {
	rows := make([][]string, 0, len(links))
	for _, link := range links {
		rows = append(rows, []string{link.Secondary, link.SecondaryName, link.Primary, link.PrimaryName})
	}
	return renderTable([]string{"Secondary", "Name", "Primary", "Name"}, rows, nil)
}

func renderUnmapped(res linker.Result) string {
	var rows [][]string
	for _, list := range [][]linker.UnmappedContest{res.UnmappedContestsPrimary, res.UnmappedContestsSecondary} {
		for _, c := range list {
			rows = append(rows, []string{"contest", c.Side.String(), c.ContestID, c.Name})
		}
	}
	for _, list := range [][]linker.UnmappedCandidate{res.UnmappedCandidatesPrimary, res.UnmappedCandidatesSecondary} {
		for _, c := range list {
			rows = append(rows, []string{"candidate", c.Side.String(), c.Ref.String(), c.Name})
		}
	}
	return renderTable([]string{"Kind", "Side", "ID", "Name"}, rows, nil)
}

func shortID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
