package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeScan(); err != nil {
		return err
	}
	c.normalizeWhisper()
	c.normalizeNotion()
	c.normalizeLinking()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LedgerPath) == "" {
		c.Paths.LedgerPath = defaultLedgerPath
	}
	if c.Paths.LedgerPath, err = expandPath(c.Paths.LedgerPath); err != nil {
		return fmt.Errorf("paths.ledger_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScan() error {
	roots := make([]string, 0, len(c.Scan.Roots))
	for _, root := range c.Scan.Roots {
		trimmed := strings.TrimSpace(root)
		if trimmed == "" {
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("scan.roots: %w", err)
		}
		roots = append(roots, expanded)
	}
	c.Scan.Roots = roots

	if len(c.Scan.Extensions) == 0 {
		c.Scan.Extensions = append([]string(nil), defaultExtensions...)
	}
	exts := make([]string, 0, len(c.Scan.Extensions))
	for _, ext := range c.Scan.Extensions {
		trimmed := strings.ToLower(strings.TrimSpace(ext))
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		exts = append(exts, trimmed)
	}
	c.Scan.Extensions = exts
	return nil
}

func (c *Config) normalizeWhisper() {
	if c.Whisper.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Whisper.APIKey = strings.TrimSpace(value)
		}
	}
	c.Whisper.BaseURL = strings.TrimSpace(c.Whisper.BaseURL)
	if c.Whisper.BaseURL == "" {
		c.Whisper.BaseURL = defaultWhisperBaseURL
	}
	c.Whisper.Model = strings.TrimSpace(c.Whisper.Model)
	if c.Whisper.Model == "" {
		c.Whisper.Model = defaultWhisperModel
	}
	c.Whisper.Language = strings.TrimSpace(c.Whisper.Language)
	if c.Whisper.TimeoutSeconds == 0 {
		c.Whisper.TimeoutSeconds = defaultWhisperTimeout
	}
}

func (c *Config) normalizeNotion() {
	if c.Notion.Token == "" {
		if value, ok := os.LookupEnv("NOTION_TOKEN"); ok {
			c.Notion.Token = strings.TrimSpace(value)
		}
	}
	c.Notion.Token = strings.TrimSpace(c.Notion.Token)
	c.Notion.DatabaseID = strings.TrimSpace(c.Notion.DatabaseID)
	c.Notion.BaseURL = strings.TrimRight(strings.TrimSpace(c.Notion.BaseURL), "/")
	if c.Notion.BaseURL == "" {
		c.Notion.BaseURL = defaultNotionBaseURL
	}
	c.Notion.Version = strings.TrimSpace(c.Notion.Version)
	if c.Notion.Version == "" {
		c.Notion.Version = defaultNotionVersion
	}
	if c.Notion.RequestTimeout == 0 {
		c.Notion.RequestTimeout = defaultNotionTimeout
	}
}

func (c *Config) normalizeLinking() {
	if c.Linking.MaxKeywords <= 0 {
		c.Linking.MaxKeywords = defaultLinkingMaxKeywords
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays <= 0 {
		c.Logging.RetentionDays = defaultLogRetentionDays
	}
}
