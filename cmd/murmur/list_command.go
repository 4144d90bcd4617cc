package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"murmur/internal/config"
	"murmur/internal/ledger"
	"murmur/internal/logging"
	"murmur/internal/scanner"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List candidate recordings waiting to be processed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *ledger.Store) error {
				source := scanner.New(cfg, store, logging.NewNop())
				candidates, err := source.Scan(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(candidates) == 0 {
					fmt.Fprintln(out, "No candidate recordings found")
					return nil
				}

				rows := make([][]string, 0, len(candidates))
				for i, candidate := range candidates {
					rows = append(rows, []string{
						fmt.Sprintf("%d", i+1),
						candidate.Path,
						humanize.Bytes(uint64(candidate.Size)),
						humanize.Time(candidate.ModTime),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]column{
						{title: "#", right: true},
						{title: "File"},
						{title: "Size", right: true},
						{title: "Modified"},
					},
					rows,
				))
				fmt.Fprintf(out, "%d candidate(s)\n", len(candidates))
				return nil
			})
		},
	}
}
