package linking

import (
	"sort"
	"strings"
	"unicode"
)

// Keyword is a transcript word ranked by how often it appears.
type Keyword struct {
	Word  string
	Count int
}

var stopwords = map[string]struct{}{}

func init() {
	for _, word := range []string{
		"a", "about", "after", "again", "all", "also", "and", "any", "are",
		"because", "been", "before", "being", "but", "can", "could", "did",
		"does", "doing", "don't", "down", "for", "from", "get", "going",
		"gonna", "got", "had", "has", "have", "here", "him", "his", "her",
		"how", "i'm", "into", "it's", "just", "know", "like", "more", "most",
		"need", "not", "now", "okay", "only", "other", "our", "out", "over",
		"really", "said", "say", "she", "should", "some", "so", "than",
		"that", "that's", "the", "their", "them", "then", "there", "these",
		"they", "thing", "things", "think", "this", "those", "through",
		"today", "very", "want", "was", "were", "what", "when", "where",
		"which", "while", "who", "will", "with", "would", "yeah", "yes",
		"you", "your", "you're",
	} {
		stopwords[word] = struct{}{}
	}
}

// TopKeywords extracts the most frequent meaningful words from a transcript.
// Words shorter than four characters and common filler are ignored. Results
// are sorted by count descending, then alphabetically for stable output.
func TopKeywords(transcript string, limit int) []Keyword {
	if limit <= 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, field := range strings.Fields(strings.ToLower(transcript)) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && r != '\''
		})
		if len(word) < 4 {
			continue
		}
		if _, ok := stopwords[word]; ok {
			continue
		}
		counts[word]++
	}

	keywords := make([]Keyword, 0, len(counts))
	for word, count := range counts {
		keywords = append(keywords, Keyword{Word: word, Count: count})
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Count != keywords[j].Count {
			return keywords[i].Count > keywords[j].Count
		}
		return keywords[i].Word < keywords[j].Word
	})
	if len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return keywords
}
