package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"murmur/internal/config"
	"murmur/internal/ledger"
	"murmur/internal/logging"
	"murmur/internal/monitor"
	"murmur/internal/pipeline"
	"murmur/internal/scanner"
	"murmur/internal/signature"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run a single scan cycle and exit",
		Long: "Performs one full cycle: discover candidates, process the stable ones,\n" +
			"and record outcomes. Exits non-zero when any recording fails.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *ledger.Store) error {
				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}

				processor, err := pipeline.New(cfg, logger)
				if err != nil {
					return fmt.Errorf("build pipeline: %w", err)
				}
				source := scanner.New(cfg, store, logger)
				checker := signature.NewChecker(cfg.MinFileAge())
				mon := monitor.New(cfg, source, checker, processor, store, logger)

				result, err := mon.RunScan(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Scanned in %s: %d found, %d processed, %d succeeded, %d failed, %d deferred\n",
					result.Elapsed.Round(time.Millisecond), result.Found, result.Queued,
					result.Succeeded, result.Failed, result.Deferred)
				if result.Failed > 0 {
					return fmt.Errorf("%d recording(s) failed; see the ledger for details", result.Failed)
				}
				return nil
			})
		},
	}
}
