package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ballotlink/internal/linker"
	"ballotlink/internal/namekey"
)

type keyView struct {
	Name        string `json:"name"`
	Key         string `json:"key"`
	LastNameKey string `json:"last_name_key"`
	Skipped     bool   `json:"skipped"`
	Prefix      string `json:"prefix,omitempty"`
	Title       string `json:"title,omitempty"`
	First       string `json:"first,omitempty"`
	Middle      string `json:"middle,omitempty"`
	Last        string `json:"last,omitempty"`
	Suffix      string `json:"suffix,omitempty"`
	Nickname    string `json:"nickname,omitempty"`
}

func newKeysCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "keys NAME...",
		Short: "Show how names normalize into matching keys",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("at least one name is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			matcher, err := linker.New(linker.Options{
				SkipPattern: cfg.Matching.SkipPattern,
				SkipChoices: cfg.Matching.SkipChoices,
			})
			if err != nil {
				return err
			}

			views := make([]keyView, 0, len(args))
			for _, name := range args {
				parts := namekey.Split(name)
				key := namekey.Key(name)
				views = append(views, keyView{
					Name:        name,
					Key:         key,
					LastNameKey: namekey.LastNameKey(name),
					Skipped:     matcher.Skips(name),
					Prefix:      parts.Prefix,
					Title:       parts.Title,
					First:       parts.First,
					Middle:      parts.Middle,
					Last:        parts.Last,
					Suffix:      parts.Suffix,
					Nickname:    parts.Nickname,
				})
			}

			if asJSON {
				return writeJSON(cmd, views)
			}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				rows = append(rows, []string{v.Name, v.Key, v.LastNameKey, yesNo(v.Skipped), v.First, v.Last, v.Suffix})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Name", "Key", "Last-name key", "Skipped", "First", "Last", "Suffix"},
				rows, nil,
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}
