package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ballotlink/internal/linkrun"
	"ballotlink/internal/preflight"
)

type checkJSON struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var inputs linkrun.Inputs
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify paths, overrides, run history and (optionally) input files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			if inputs.PrimaryContests != "" || inputs.PrimaryCandidates != "" {
				results = append(results, preflight.CheckInputs(cmd.Context(), "Primary inputs", inputs.PrimaryContests, inputs.PrimaryCandidates))
			}
			if inputs.SecondaryContests != "" || inputs.SecondaryCandidates != "" {
				results = append(results, preflight.CheckInputs(cmd.Context(), "Secondary inputs", inputs.SecondaryContests, inputs.SecondaryCandidates))
			}

			if asJSON {
				views := make([]checkJSON, 0, len(results))
				for _, r := range results {
					views = append(views, checkJSON(r))
				}
				if err := writeJSON(cmd, views); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Preflight", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, r := range results {
					kind := statusOK
					if !r.Passed {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
				}
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d preflight check(s) failed", len(failed))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&inputs.PrimaryContests, "primary-contests", "", "Primary contests TSV to validate")
	flags.StringVar(&inputs.PrimaryCandidates, "primary-candidates", "", "Primary candidates TSV to validate")
	flags.StringVar(&inputs.SecondaryContests, "secondary-contests", "", "Secondary contests TSV to validate")
	flags.StringVar(&inputs.SecondaryCandidates, "secondary-candidates", "", "Secondary candidates TSV to validate")
	flags.BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}
