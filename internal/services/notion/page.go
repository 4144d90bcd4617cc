package notion

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

const (
	maxTitleLength = 60
	// Notion caps rich text content at 2000 characters per object; chunk
	// under that with margin.
	maxTextChunk = 1900

	maxSegmentBlocks = 10
)

// SegmentBlock is one timestamped excerpt rendered into the page body.
type SegmentBlock struct {
	Timestamp string
	Text      string
}

// Recording carries everything the page builder needs about one processed
// file.
type Recording struct {
	Path       string
	RecordedAt time.Time
	Duration   time.Duration
	SizeBytes  int64
	Language   string
	WordCount  int
	Transcript string
	Segments   []SegmentBlock
	Tags       []string
}

type createPageRequest struct {
	Parent     parent         `json:"parent"`
	Properties map[string]any `json:"properties"`
	Children   []block        `json:"children"`
}

type parent struct {
	DatabaseID string `json:"database_id"`
}

type block struct {
	Object    string         `json:"object"`
	Type      string         `json:"type"`
	Paragraph *richTextBlock `json:"paragraph,omitempty"`
	Heading   *richTextBlock `json:"heading_2,omitempty"`
	Bulleted  *richTextBlock `json:"bulleted_list_item,omitempty"`
	Divider   *struct{}      `json:"divider,omitempty"`
}

type richTextBlock struct {
	RichText []richText `json:"rich_text"`
}

type richText struct {
	Type string      `json:"type"`
	Text textContent `json:"text"`
}

type textContent struct {
	Content string `json:"content"`
}

func buildPage(databaseID string, rec Recording) createPageRequest {
	properties := map[string]any{
		"Name": map[string]any{
			"title": []richText{plainText(Title(rec.Transcript, rec.Path))},
		},
	}
	if len(rec.Tags) > 0 {
		var options []map[string]string
		for _, tag := range rec.Tags {
			options = append(options, map[string]string{"name": tag})
		}
		properties["Tags"] = map[string]any{"multi_select": options}
	}
	if !rec.RecordedAt.IsZero() {
		properties["Recorded"] = map[string]any{
			"date": map[string]string{"start": rec.RecordedAt.Format(time.RFC3339)},
		}
	}

	return createPageRequest{
		Parent:     parent{DatabaseID: databaseID},
		Properties: properties,
		Children:   buildChildren(rec),
	}
}

func buildChildren(rec Recording) []block {
	blocks := []block{paragraph(metadataLine(rec)), divider()}

	blocks = append(blocks, heading("Transcription"))
	for _, chunk := range chunkText(rec.Transcript, maxTextChunk) {
		blocks = append(blocks, paragraph(chunk))
	}

	if len(rec.Segments) > 0 {
		blocks = append(blocks, divider(), heading("Segments"))
		limit := len(rec.Segments)
		if limit > maxSegmentBlocks {
			limit = maxSegmentBlocks
		}
		for _, segment := range rec.Segments[:limit] {
			blocks = append(blocks, bulleted(fmt.Sprintf("[%s] %s", segment.Timestamp, segment.Text)))
		}
		if len(rec.Segments) > limit {
			blocks = append(blocks, paragraph(fmt.Sprintf("… %d more segments", len(rec.Segments)-limit)))
		}
	}
	return blocks
}

func metadataLine(rec Recording) string {
	parts := []string{fmt.Sprintf("Source: %s", filepath.Base(rec.Path))}
	if rec.Duration > 0 {
		parts = append(parts, fmt.Sprintf("Duration: %s", rec.Duration.Round(time.Second)))
	}
	if rec.SizeBytes > 0 {
		parts = append(parts, fmt.Sprintf("Size: %s", humanize.Bytes(uint64(rec.SizeBytes))))
	}
	if rec.Language != "" {
		parts = append(parts, fmt.Sprintf("Language: %s", rec.Language))
	}
	if rec.WordCount > 0 {
		parts = append(parts, fmt.Sprintf("Words: %d", rec.WordCount))
	}
	return strings.Join(parts, " · ")
}

// Title derives the page title from the transcript's first sentence,
// truncated to fit, falling back to the file name when the transcript is
// blank.
func Title(transcript, path string) string {
	sentence := firstSentence(transcript)
	if sentence == "" {
		sentence = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if sentence == "" {
		sentence = "Voice recording"
	}
	if utf8.RuneCountInString(sentence) > maxTitleLength {
		runes := []rune(sentence)
		sentence = strings.TrimSpace(string(runes[:maxTitleLength-3])) + "..."
	}
	return sentence
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if idx := strings.IndexAny(text, ".!?"); idx >= 0 {
		return strings.TrimSpace(text[:idx+1])
	}
	return text
}

// chunkText splits text into pieces no longer than limit, preferring word
// boundaries.
func chunkText(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= limit {
		return []string{text}
	}
	var chunks []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len() > 0 && current.Len()+1+len(word) > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func plainText(content string) richText {
	return richText{Type: "text", Text: textContent{Content: content}}
}

func paragraph(content string) block {
	return block{Object: "block", Type: "paragraph", Paragraph: &richTextBlock{RichText: []richText{plainText(content)}}}
}

func heading(content string) block {
	return block{Object: "block", Type: "heading_2", Heading: &richTextBlock{RichText: []richText{plainText(content)}}}
}

func bulleted(content string) block {
	return block{Object: "block", Type: "bulleted_list_item", Bulleted: &richTextBlock{RichText: []richText{plainText(content)}}}
}

func divider() block {
	return block{Object: "block", Type: "divider", Divider: &struct{}{}}
}
