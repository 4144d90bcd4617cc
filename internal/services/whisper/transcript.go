package whisper

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Segment is one timed span of transcribed speech.
type Segment struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// Transcript is the full result of transcribing a single recording.
type Transcript struct {
	Text     string
	Language string
	Duration time.Duration
	Segments []Segment
	Model    string
}

// WordCount returns the number of whitespace-separated words in the transcript.
func (t *Transcript) WordCount() int {
	return len(strings.Fields(t.Text))
}

// LanguageName renders the detected language as an English display name.
// The API returns either an ISO code ("en") or a lowercase word ("english")
// depending on the model; both are normalized.
func (t *Transcript) LanguageName() string {
	code := strings.TrimSpace(t.Language)
	if code == "" {
		return ""
	}
	if tag, err := language.Parse(code); err == nil {
		if name := display.English.Languages().Name(tag); name != "" {
			return name
		}
	}
	return cases.Title(language.Und).String(code)
}

// FormatTimestamp renders a segment offset as MM:SS, rolling over to
// H:MM:SS for recordings longer than an hour.
func FormatTimestamp(offset time.Duration) string {
	if offset < 0 {
		offset = 0
	}
	total := int(offset.Round(time.Second).Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
