package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"murmur/internal/config"
	"murmur/internal/ledger"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and maintain the processing ledger",
	}

	ledgerCmd.AddCommand(newLedgerListCommand(ctx))
	ledgerCmd.AddCommand(newLedgerStatsCommand(ctx))
	ledgerCmd.AddCommand(newLedgerCleanupCommand(ctx))
	ledgerCmd.AddCommand(newLedgerClearCommand(ctx))

	return ledgerCmd
}

func newLedgerListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recent ledger entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *ledger.Store) error {
				entries, err := store.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Ledger is empty")
					return nil
				}

				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					detail := entry.RemoteURL
					if entry.Outcome == ledger.OutcomeFailed {
						detail = entry.ErrorMessage
					}
					rows = append(rows, []string{
						fmt.Sprintf("%d", entry.ID),
						filepath.Base(entry.Path),
						string(entry.Outcome),
						humanize.Time(entry.ProcessedAt),
						fmt.Sprintf("%d", entry.Attempts),
						detail,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]column{
						{title: "ID", right: true},
						{title: "File"},
						{title: "Outcome"},
						{title: "Processed"},
						{title: "Attempts", right: true},
						{title: "Detail"},
					},
					rows,
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	return cmd
}

func newLedgerStatsCommand(ctx *commandContext) *cobra.Command {
	var windowHours int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show ledger counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *ledger.Store) error {
				stats, err := store.Stats(cmd.Context(), time.Duration(windowHours)*time.Hour)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Ledger: %s\n", store.Path())
				fmt.Fprintf(out, "  Total entries:  %d\n", stats.Total)
				fmt.Fprintf(out, "  Succeeded:      %d\n", stats.Succeeded)
				fmt.Fprintf(out, "  Failed:         %d\n", stats.Failed)
				fmt.Fprintf(out, "  Last %dh:       %d\n", windowHours, stats.InWindow)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&windowHours, "window-hours", 24, "Window for the recent-activity counter")
	return cmd
}

func newLedgerCleanupCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove entries older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *ledger.Store) error {
				retention := days
				if retention <= 0 {
					retention = cfg.Ledger.RetentionDays
				}
				if retention <= 0 {
					return fmt.Errorf("no retention window: pass --days or set ledger.retention_days")
				}
				removed, err := store.CleanupOlderThan(cmd.Context(), retention)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entr%s older than %d day(s)\n",
					removed, pluralY(removed), retention)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Retention window in days (defaults to ledger.retention_days)")
	return cmd
}

func newLedgerClearCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all ledger entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("clearing the ledger makes every recording eligible again; pass --force to confirm")
			}
			return ctx.withStore(func(cfg *config.Config, store *ledger.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entr%s\n", removed, pluralY(removed))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm clearing the ledger")
	return cmd
}

func pluralY(count int64) string {
	if count == 1 {
		return "y"
	}
	return "ies"
}
