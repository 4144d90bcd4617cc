package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"murmur/internal/logs"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display daemon logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			reader := logs.NewReader(cfg.Paths.LogDir)

			chunk, err := reader.Last(lines)
			if err != nil {
				return fmt.Errorf("read logs: %w", err)
			}
			for _, line := range chunk.Lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			if !follow {
				if len(chunk.Lines) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No log entries available")
				}
				return nil
			}

			cursor := chunk.Cursor
			for {
				next, err := reader.Next(cmd.Context(), cursor, time.Second)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return fmt.Errorf("follow logs: %w", err)
				}
				for _, line := range next.Lines {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
				cursor = next.Cursor
			}
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of lines to show (0 for all)")
	return cmd
}
