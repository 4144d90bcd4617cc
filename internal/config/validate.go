package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Validation failures are fatal
// at startup; the daemon never runs with a partially valid config.
func (c *Config) Validate() error {
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateWhisper(); err != nil {
		return err
	}
	if err := c.validateNotion(); err != nil {
		return err
	}
	if err := c.validateLedger(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateScan() error {
	if len(c.Scan.Roots) == 0 {
		return errors.New("scan.roots must list at least one directory or glob pattern")
	}
	if len(c.Scan.Extensions) == 0 {
		return errors.New("scan.extensions must list at least one audio extension")
	}
	if err := ensurePositiveMap(map[string]int{
		"scan.poll_interval":     c.Scan.PollInterval,
		"scan.min_file_age":      c.Scan.MinFileAge,
		"scan.max_file_age_days": c.Scan.MaxFileAgeDays,
	}); err != nil {
		return err
	}
	if c.Scan.RetryLimit < 0 {
		return errors.New("scan.retry_limit must be zero (retry forever) or positive")
	}
	return nil
}

func (c *Config) validateWhisper() error {
	if c.Whisper.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/murmur/config.toml"
		}
		return fmt.Errorf("whisper.api_key is required. Set OPENAI_API_KEY env var or edit %s (create with 'murmur config init')", defaultPath)
	}
	if c.Whisper.TimeoutSeconds <= 0 {
		return errors.New("whisper.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateNotion() error {
	if !c.Notion.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Notion.Token) == "" {
		return errors.New("notion.token must be set when notion.enabled is true")
	}
	if strings.TrimSpace(c.Notion.DatabaseID) == "" {
		return errors.New("notion.database_id must be set when notion.enabled is true")
	}
	if c.Notion.RequestTimeout <= 0 {
		return errors.New("notion.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLedger() error {
	if c.Ledger.RetentionDays < 0 {
		return errors.New("ledger.retention_days must be zero (keep forever) or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
