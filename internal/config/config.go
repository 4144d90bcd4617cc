package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations used by the daemon.
type Paths struct {
	LedgerPath string `toml:"ledger_path"`
	LogDir     string `toml:"log_dir"`
}

// Scan contains configuration for recording discovery and pacing.
type Scan struct {
	Roots          []string `toml:"roots"`
	Extensions     []string `toml:"extensions"`
	PollInterval   int      `toml:"poll_interval"`
	MinFileAge     int      `toml:"min_file_age"`
	MaxFileAgeDays int      `toml:"max_file_age_days"`
	RetryLimit     int      `toml:"retry_limit"`
}

// Whisper contains configuration for the speech-recognition API.
type Whisper struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Notion contains configuration for the Notion publishing integration.
type Notion struct {
	Enabled        bool   `toml:"enabled"`
	Token          string `toml:"token"`
	DatabaseID     string `toml:"database_id"`
	BaseURL        string `toml:"base_url"`
	Version        string `toml:"version"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Linking contains configuration for activity link suggestions.
type Linking struct {
	Enabled     bool `toml:"enabled"`
	MaxKeywords int  `toml:"max_keywords"`
}

// Ledger contains maintenance settings for the processed-file ledger.
type Ledger struct {
	RetentionDays int `toml:"retention_days"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for murmur.
//
// Configuration sections by subsystem:
//   - Paths: ledger database path and log directory
//   - Scan: root patterns, extension filter, polling and age thresholds
//   - Whisper: transcription API credentials and timeouts
//   - Notion: document publishing credentials
//   - Linking: activity link suggestion settings
//   - Ledger: processed-file retention
//   - Logging: log format, level, and retention
type Config struct {
	Paths   Paths   `toml:"paths"`
	Scan    Scan    `toml:"scan"`
	Whisper Whisper `toml:"whisper"`
	Notion  Notion  `toml:"notion"`
	Linking Linking `toml:"linking"`
	Ledger  Ledger  `toml:"ledger"`
	Logging Logging `toml:"logging"`
}

// PollInterval returns the inter-cycle sleep as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Scan.PollInterval) * time.Second
}

// MinFileAge returns the minimum settle age as a duration.
func (c *Config) MinFileAge() time.Duration {
	return time.Duration(c.Scan.MinFileAge) * time.Second
}

// MaxFileAge returns the candidate age ceiling as a duration.
func (c *Config) MaxFileAge() time.Duration {
	return time.Duration(c.Scan.MaxFileAgeDays) * 24 * time.Hour
}

// NotionTimeout returns the per-request publishing deadline as a duration.
func (c *Config) NotionTimeout() time.Duration {
	return time.Duration(c.Notion.RequestTimeout) * time.Second
}

// WhisperTimeout returns the per-request transcription deadline as a duration.
func (c *Config) WhisperTimeout() time.Duration {
	return time.Duration(c.Whisper.TimeoutSeconds) * time.Second
}

// FFprobeBinary returns the ffprobe executable name used for metadata extraction.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// EnsureDirectories creates the directories the daemon writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir, filepath.Dir(c.Paths.LedgerPath)}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/murmur/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("murmur.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// WriteSample writes the embedded sample configuration to the given path,
// refusing to clobber an existing file.
func WriteSample(path string) (string, error) {
	expanded, err := expandPath(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(expanded); err == nil {
		return "", fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return "", fmt.Errorf("write sample config: %w", err)
	}
	return expanded, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
