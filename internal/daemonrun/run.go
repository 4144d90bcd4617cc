package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"murmur/internal/config"
	"murmur/internal/daemon"
	"murmur/internal/deps"
	"murmur/internal/ledger"
	"murmur/internal/logging"
	"murmur/internal/logs"
	"murmur/internal/monitor"
	"murmur/internal/pipeline"
	"murmur/internal/scanner"
	"murmur/internal/signature"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the murmur daemon runtime loop and blocks until the process
// receives SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	sessionID := uuid.NewString()
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("murmur-%s.log", runID))

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg, sessionID)

	store, err := ledger.Open(cfg)
	if err != nil {
		logger.Error("open ledger store", logging.Error(err))
		return err
	}
	defer store.Close()

	if cfg.Ledger.RetentionDays > 0 {
		removed, err := store.CleanupOlderThan(signalCtx, cfg.Ledger.RetentionDays)
		if err != nil {
			logger.Warn("ledger retention cleanup failed", logging.Error(err))
		} else if removed > 0 {
			logger.Info("ledger retention cleanup", logging.Int64("removed", removed))
		}
	}

	processor, err := pipeline.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	source := scanner.New(cfg, store, logger)
	checker := signature.NewChecker(cfg.MinFileAge())
	mon := monitor.New(cfg, source, checker, processor, store, logger)

	d, err := daemon.New(cfg, store, logger, mon)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed", logging.Error(err))
		return err
	}

	// The instance lock is held from here on: only now is it safe to
	// claim the pid file and murmur.log pointer, or another starting
	// daemon would clobber the running one's.
	pidPath := filepath.Join(cfg.Paths.LogDir, "murmur.pid")
	if err := writePIDFile(pidPath); err != nil {
		d.Stop()
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update %s link: %v\n", logs.CurrentPointer, err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "murmur-*.log", Exclude: []string{logPath}},
	)

	<-signalCtx.Done()
	logger.Info("murmur daemon shutting down")
	return nil
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, logs.CurrentPointer)
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config, sessionID string) {
	if logger == nil || cfg == nil {
		return
	}
	logger.Info("dependency snapshot",
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.String("session_id", sessionID),
		logging.Bool("whisper_key_present", strings.TrimSpace(cfg.Whisper.APIKey) != ""),
		logging.Bool("notion_enabled", cfg.Notion.Enabled),
		logging.Bool("notion_token_present", strings.TrimSpace(cfg.Notion.Token) != ""),
		logging.Bool("linking_enabled", cfg.Linking.Enabled),
		logging.Int("scan_roots", len(cfg.Scan.Roots)),
	)
	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		logger.Info("external binary",
			logging.String("name", status.Name),
			logging.String("command", status.Command),
			logging.Bool("available", status.Available),
			logging.String("detail", status.Detail),
		)
	}
}
