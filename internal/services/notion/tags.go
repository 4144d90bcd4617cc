package notion

import (
	"strings"
	"time"
)

// Duration buckets used for the page's length tag.
const (
	shortRecordingMax  = time.Minute
	mediumRecordingMax = 5 * time.Minute
)

var categoryKeywords = []struct {
	keyword string
	tag     string
}{
	{"work", "Work"},
	{"personal", "Personal"},
	{"content", "Content"},
	{"ideas", "Content"},
}

// ExtractTags derives page tags from where the recording lives and how long
// it runs. Directory names act as lightweight categories so recordings synced
// from a "Work" folder land tagged that way.
func ExtractTags(path string, duration time.Duration) []string {
	var tags []string
	lowered := strings.ToLower(path)
	seen := make(map[string]struct{})
	for _, category := range categoryKeywords {
		if !strings.Contains(lowered, category.keyword) {
			continue
		}
		if _, ok := seen[category.tag]; ok {
			continue
		}
		seen[category.tag] = struct{}{}
		tags = append(tags, category.tag)
	}

	switch {
	case duration <= 0:
		// No duration tag when metadata extraction failed.
	case duration < shortRecordingMax:
		tags = append(tags, "Short")
	case duration < mediumRecordingMax:
		tags = append(tags, "Medium")
	default:
		tags = append(tags, "Long")
	}
	return tags
}
