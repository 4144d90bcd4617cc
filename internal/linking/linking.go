package linking

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"murmur/internal/config"
)

// Kind classifies what a suggestion is anchored on.
type Kind string

const (
	KindDate     Kind = "date"
	KindKeyword  Kind = "keyword"
	KindDuration Kind = "duration"
	KindLocation Kind = "location"
	KindTag      Kind = "tag"
)

// Suggestion is one candidate link between a recording and an activity.
type Suggestion struct {
	Kind       Kind
	Value      string
	Confidence float64
	Rationale  string
}

// Input carries the recording facts the engine matches against.
type Input struct {
	Path       string
	RecordedAt time.Time
	Duration   time.Duration
	Transcript string
	Tags       []string
}

// Engine produces activity link suggestions for processed recordings.
type Engine struct {
	enabled     bool
	maxKeywords int
}

// NewEngine builds a suggestion engine from configuration.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		enabled:     cfg.Linking.Enabled,
		maxKeywords: cfg.Linking.MaxKeywords,
	}
}

// Suggest returns suggestions ordered by confidence, highest first. A
// disabled engine returns nothing.
func (e *Engine) Suggest(input Input) []Suggestion {
	if !e.enabled {
		return nil
	}

	var suggestions []Suggestion
	if !input.RecordedAt.IsZero() {
		suggestions = append(suggestions, Suggestion{
			Kind:       KindDate,
			Value:      input.RecordedAt.Format("2006-01-02"),
			Confidence: 0.9,
			Rationale:  fmt.Sprintf("recorded on %s", input.RecordedAt.Format("2006-01-02")),
		})
	}

	for _, keyword := range TopKeywords(input.Transcript, e.maxKeywords) {
		suggestions = append(suggestions, Suggestion{
			Kind:       KindKeyword,
			Value:      keyword.Word,
			Confidence: keywordConfidence(keyword.Count),
			Rationale:  fmt.Sprintf("mentioned %d times", keyword.Count),
		})
	}

	if kind, value, ok := durationHint(input.Duration); ok {
		suggestions = append(suggestions, Suggestion{
			Kind:       KindDuration,
			Value:      value,
			Confidence: 0.4,
			Rationale:  fmt.Sprintf("%s recording suggests a %s", input.Duration.Round(time.Second), kind),
		})
	}

	for _, location := range extractLocations(input.Transcript) {
		suggestions = append(suggestions, Suggestion{
			Kind:       KindLocation,
			Value:      location,
			Confidence: 0.6,
			Rationale:  fmt.Sprintf("transcript mentions %s", location),
		})
	}

	for _, tag := range input.Tags {
		suggestions = append(suggestions, Suggestion{
			Kind:       KindTag,
			Value:      tag,
			Confidence: 0.5,
			Rationale:  fmt.Sprintf("tagged %s", tag),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	return suggestions
}

func keywordConfidence(count int) float64 {
	confidence := 0.3 + 0.1*float64(count)
	if confidence > 0.8 {
		confidence = 0.8
	}
	return confidence
}

func durationHint(duration time.Duration) (string, string, bool) {
	switch {
	case duration <= 0:
		return "", "", false
	case duration < time.Minute:
		return "quick note", "quick-note", true
	case duration < 5*time.Minute:
		return "memo", "memo", true
	default:
		return "long-form session", "long-form", true
	}
}

// locationPattern matches "at the Office", "at Riverside Park", "in Berlin".
var locationPattern = regexp.MustCompile(`\b(?:at|in) (?:the )?([A-Z][a-zA-Z]+(?: [A-Z][a-zA-Z]+)*)`)

func extractLocations(transcript string) []string {
	matches := locationPattern.FindAllStringSubmatch(transcript, -1)
	var locations []string
	seen := make(map[string]struct{})
	for _, match := range matches {
		location := strings.TrimSpace(match[1])
		if _, ok := seen[location]; ok {
			continue
		}
		seen[location] = struct{}{}
		locations = append(locations, location)
	}
	return locations
}
