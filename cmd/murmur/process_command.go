package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"murmur/internal/config"
	"murmur/internal/ledger"
	"murmur/internal/logging"
	"murmur/internal/pipeline"
	"murmur/internal/signature"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "process <file>",
		Short: "Process a single recording immediately",
		Long: "Runs one file through the full pipeline regardless of the scan roots.\n" +
			"The outcome is recorded in the ledger like any daemon-processed file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *ledger.Store) error {
				path, err := filepath.Abs(args[0])
				if err != nil {
					return fmt.Errorf("resolve path: %w", err)
				}

				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}

				checker := signature.NewChecker(cfg.MinFileAge())
				complete, sig, err := checker.Complete(cmd.Context(), path)
				if err != nil {
					return err
				}
				if !complete && !force {
					return fmt.Errorf("%s looks like it is still syncing; retry shortly or pass --force", path)
				}

				if !force {
					succeeded, err := store.HasSucceeded(cmd.Context(), sig)
					if err != nil {
						return err
					}
					if succeeded {
						fmt.Fprintf(cmd.OutOrStdout(), "%s was already processed (use --force to repeat)\n", path)
						return nil
					}
				}

				processor, err := pipeline.New(cfg, logger)
				if err != nil {
					return fmt.Errorf("build pipeline: %w", err)
				}

				result, err := processor.Process(cmd.Context(), path)
				if err != nil {
					if recordErr := store.Record(cmd.Context(), sig, ledger.OutcomeFailed, "", err.Error()); recordErr != nil {
						return fmt.Errorf("record failure: %w (processing error: %v)", recordErr, err)
					}
					return err
				}

				var remoteURL string
				if result.Page != nil {
					remoteURL = result.Page.URL
				}
				if err := store.Record(cmd.Context(), sig, ledger.OutcomeSucceeded, remoteURL, ""); err != nil {
					return fmt.Errorf("record success: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Processed %s\n", path)
				fmt.Fprintf(out, "  Words: %d", result.Transcript.WordCount())
				if name := result.Transcript.LanguageName(); name != "" {
					fmt.Fprintf(out, "  Language: %s", name)
				}
				fmt.Fprintln(out)
				if remoteURL != "" {
					fmt.Fprintf(out, "  Page: %s\n", remoteURL)
				}
				for _, suggestion := range result.Suggestions {
					fmt.Fprintf(out, "  Link (%s, %.0f%%): %s (%s)\n",
						suggestion.Kind, suggestion.Confidence*100, suggestion.Value, suggestion.Rationale)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Process even if the file was already handled or looks unstable")
	return cmd
}
