package config

const (
	defaultLedgerPath          = "~/.local/share/murmur/ledger.db"
	defaultLogDir              = "~/.local/share/murmur/logs"
	defaultPollInterval        = 60
	defaultMinFileAge          = 30
	defaultMaxFileAgeDays      = 7
	defaultWhisperBaseURL      = "https://api.openai.com/v1"
	defaultWhisperModel        = "whisper-1"
	defaultWhisperTimeout      = 600
	defaultNotionBaseURL       = "https://api.notion.com"
	defaultNotionVersion       = "2022-06-28"
	defaultNotionTimeout       = 30
	defaultLinkingMaxKeywords  = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 14
	defaultLedgerRetentionDays = 0
)

var defaultScanRoots = []string{
	"~/Library/Mobile Documents/com~apple~CloudDocs/Voice Memos",
	"~/Library/Mobile Documents/com~apple~CloudDocs/Recordings/*",
}

var defaultExtensions = []string{".m4a", ".wav", ".mp3", ".aiff", ".aac"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LedgerPath: defaultLedgerPath,
			LogDir:     defaultLogDir,
		},
		Scan: Scan{
			Roots:          append([]string(nil), defaultScanRoots...),
			Extensions:     append([]string(nil), defaultExtensions...),
			PollInterval:   defaultPollInterval,
			MinFileAge:     defaultMinFileAge,
			MaxFileAgeDays: defaultMaxFileAgeDays,
		},
		Whisper: Whisper{
			BaseURL:        defaultWhisperBaseURL,
			Model:          defaultWhisperModel,
			TimeoutSeconds: defaultWhisperTimeout,
		},
		Notion: Notion{
			BaseURL:        defaultNotionBaseURL,
			Version:        defaultNotionVersion,
			RequestTimeout: defaultNotionTimeout,
		},
		Linking: Linking{
			Enabled:     true,
			MaxKeywords: defaultLinkingMaxKeywords,
		},
		Ledger: Ledger{
			RetentionDays: defaultLedgerRetentionDays,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
