package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ballotlink/internal/logging"
	"ballotlink/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var filter logs.Filter
	var level string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show entries from the run log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := filter.MinLevel.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
				return fmt.Errorf("--level: %w", err)
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			entries, err := logs.Read(cmd.Context(), path, filter)
			if err != nil {
				return err
			}
			if asJSON {
				if entries == nil {
					entries = []logs.Entry{}
				}
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No log entries in %s\n", path)
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.Time.Local().Format("2006-01-02 15:04:05"),
					strings.ToUpper(e.Level),
					shortID(e.RunID),
					e.Component,
					e.Message,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Time", "Level", "Run", "Component", "Message"}, rows, nil))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&filter.RunID, "run", "", "Only entries from this run (id or prefix)")
	flags.StringVar(&filter.EventType, "event", "", "Only entries with this event_type (e.g. conflict, majority_tie)")
	flags.StringVar(&filter.Component, "component", "", "Only entries from this component")
	flags.StringVar(&level, "level", slog.LevelInfo.String(), "Minimum level (debug, info, warn, error)")
	flags.IntVarP(&filter.Limit, "limit", "n", 50, "Show at most this many of the newest entries (0 for all)")
	flags.BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}
