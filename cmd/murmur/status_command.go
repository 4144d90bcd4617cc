package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"murmur/internal/config"
	"murmur/internal/deps"
	"murmur/internal/ledger"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, ledger, and dependency status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *ledger.Store) error {
				report := newStatusReport(cmd.OutOrStdout())

				running, pid := daemonRunning(cfg)
				if running {
					report.line("Daemon", statusOK, "running (pid %s)", pid)
				} else {
					report.line("Daemon", statusInfo, "not running")
				}

				stats, err := store.Stats(cmd.Context(), 24*time.Hour)
				if err != nil {
					return err
				}
				report.line("Ledger", statusOK, "%d entries (%d succeeded, %d failed, %d in last 24h)",
					stats.Total, stats.Succeeded, stats.Failed, stats.InWindow)

				roots := 0
				for _, root := range cfg.Scan.Roots {
					if _, err := os.Stat(root); err == nil {
						roots++
					}
				}
				rootKind := statusOK
				if roots == 0 {
					rootKind = statusWarn
				}
				report.line("Scan roots", rootKind, "%d of %d reachable", roots, len(cfg.Scan.Roots))

				for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
					if status.Available {
						report.line(status.Name, statusOK, "%s", status.Command)
						continue
					}
					kind := statusError
					if status.Optional {
						kind = statusWarn
					}
					report.line(status.Name, kind, "%s", status.Detail)
				}

				if strings.TrimSpace(cfg.Whisper.APIKey) != "" {
					report.line("Whisper", statusOK, "key set, model %s", cfg.Whisper.Model)
				} else {
					report.line("Whisper", statusError, "api key missing")
				}

				switch {
				case !cfg.Notion.Enabled:
					report.line("Notion", statusInfo, "publishing disabled")
				case strings.TrimSpace(cfg.Notion.Token) == "" || strings.TrimSpace(cfg.Notion.DatabaseID) == "":
					report.line("Notion", statusError, "enabled but token or database_id missing")
				default:
					report.line("Notion", statusOK, "configured")
				}

				report.line("Link suggestions", statusInfo, "%s", yesNo(cfg.Linking.Enabled))
				return nil
			})
		},
	}
}

// daemonRunning reports whether a daemon process appears alive based on its
// pid file. The flock is authoritative for mutual exclusion; this is only a
// status hint.
func daemonRunning(cfg *config.Config) (bool, string) {
	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "murmur.pid"))
	if err != nil {
		return false, ""
	}
	pid := strings.TrimSpace(string(data))
	if pid == "" {
		return false, ""
	}
	if _, err := os.Stat(filepath.Join("/proc", pid)); err == nil {
		return true, pid
	}
	return false, pid
}
