package testsupport

import (
	"path/filepath"
	"testing"

	"murmur/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Whisper.APIKey = "test"
	cfg.Paths.LedgerPath = filepath.Join(base, "ledger.db")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Scan.Roots = []string{filepath.Join(base, "recordings")}
	cfg.Scan.PollInterval = 1
	cfg.Scan.MinFileAge = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithRoots overrides the scan roots on the test config.
func WithRoots(roots ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scan.Roots = roots
	}
}

// WithRetryLimit sets the failed-signature retry cap on the test config.
func WithRetryLimit(limit int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scan.RetryLimit = limit
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LedgerPath)
}
