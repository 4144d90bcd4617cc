package pipeline

import (
	"context"
	"log/slog"
	"os"
	"time"

	"murmur/internal/config"
	"murmur/internal/linking"
	"murmur/internal/logging"
	"murmur/internal/services/ffprobe"
	"murmur/internal/services/notion"
	"murmur/internal/services/whisper"
)

// Metadata summarizes the audio properties of a recording.
type Metadata struct {
	Path       string
	SizeBytes  int64
	Duration   time.Duration
	Codec      string
	SampleRate int
	Channels   int
	RecordedAt time.Time
}

// Result is everything produced by processing one recording.
type Result struct {
	Metadata    Metadata
	Transcript  *whisper.Transcript
	Page        *notion.PageRef
	Suggestions []linking.Suggestion
}

// Processor turns a discovered recording into a published transcript.
type Processor interface {
	Process(ctx context.Context, path string) (*Result, error)
}

// Transcriber is the transcription dependency of the pipeline.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (*whisper.Transcript, error)
}

// Publisher is the page publishing dependency of the pipeline.
type Publisher interface {
	Publish(ctx context.Context, rec notion.Recording) (*notion.PageRef, error)
}

// Prober extracts container metadata from an audio file.
type Prober func(ctx context.Context, binary, path string) (ffprobe.Result, error)

type processor struct {
	ffprobeBinary string
	probe         Prober
	transcriber   Transcriber
	publisher     Publisher
	linker        *linking.Engine
	logger        *slog.Logger
}

// Option customizes processor construction; used by tests to substitute
// external dependencies.
type Option func(*processor)

// WithTranscriber replaces the Whisper-backed transcriber.
func WithTranscriber(t Transcriber) Option {
	return func(p *processor) {
		p.transcriber = t
	}
}

// WithPublisher replaces the Notion-backed publisher.
func WithPublisher(pub Publisher) Option {
	return func(p *processor) {
		p.publisher = pub
	}
}

// WithProber replaces the ffprobe invocation.
func WithProber(probe Prober) Option {
	return func(p *processor) {
		p.probe = probe
	}
}

// New assembles the production pipeline from configuration. Publishing is
// skipped entirely when the Notion integration is disabled.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (Processor, error) {
	p := &processor{
		ffprobeBinary: cfg.FFprobeBinary(),
		probe:         ffprobe.Inspect,
		linker:        linking.NewEngine(cfg),
		logger:        logging.NewComponentLogger(logger, "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.transcriber == nil {
		p.transcriber = whisper.New(cfg)
	}
	if p.publisher == nil && cfg.Notion.Enabled {
		client, err := notion.NewClient(cfg, nil)
		if err != nil {
			return nil, err
		}
		p.publisher = client
	}
	return p, nil
}

// Process runs the full chain for one file: metadata, transcription,
// publishing, and link suggestions. Metadata extraction is best effort; a
// recording with a broken container header still gets transcribed.
func (p *processor) Process(ctx context.Context, path string) (*Result, error) {
	meta := p.extractMetadata(ctx, path)

	transcript, err := p.transcriber.Transcribe(ctx, path)
	if err != nil {
		return nil, err
	}
	if meta.Duration == 0 {
		meta.Duration = transcript.Duration
	}

	result := &Result{Metadata: meta, Transcript: transcript}

	tags := notion.ExtractTags(path, meta.Duration)
	if p.publisher != nil {
		page, err := p.publisher.Publish(ctx, notion.Recording{
			Path:       path,
			RecordedAt: meta.RecordedAt,
			Duration:   meta.Duration,
			SizeBytes:  meta.SizeBytes,
			Language:   transcript.LanguageName(),
			WordCount:  transcript.WordCount(),
			Transcript: transcript.Text,
			Segments:   segmentBlocks(transcript),
			Tags:       tags,
		})
		if err != nil {
			return nil, err
		}
		result.Page = page
	}

	result.Suggestions = p.linker.Suggest(linking.Input{
		Path:       path,
		RecordedAt: meta.RecordedAt,
		Duration:   meta.Duration,
		Transcript: transcript.Text,
		Tags:       tags,
	})
	return result, nil
}

// extractMetadata probes the container and falls back to filesystem facts
// when ffprobe is unavailable or the file is malformed.
func (p *processor) extractMetadata(ctx context.Context, path string) Metadata {
	meta := Metadata{Path: path}
	if info, err := os.Stat(path); err == nil {
		meta.SizeBytes = info.Size()
		meta.RecordedAt = info.ModTime()
	}

	probed, err := p.probe(ctx, p.ffprobeBinary, path)
	if err != nil {
		p.logger.Warn("metadata extraction failed, continuing without container info",
			logging.String("path", path), logging.Error(err))
		return meta
	}
	meta.Duration = probed.Duration()
	meta.Codec = probed.Codec()
	meta.SampleRate = probed.SampleRate()
	meta.Channels = probed.Channels()
	if size := probed.SizeBytes(); size > 0 {
		meta.SizeBytes = size
	}
	if created, ok := probed.CreationTime(); ok {
		meta.RecordedAt = created
	}
	return meta
}

func segmentBlocks(transcript *whisper.Transcript) []notion.SegmentBlock {
	blocks := make([]notion.SegmentBlock, 0, len(transcript.Segments))
	for _, segment := range transcript.Segments {
		blocks = append(blocks, notion.SegmentBlock{
			Timestamp: whisper.FormatTimestamp(segment.Start),
			Text:      segment.Text,
		})
	}
	return blocks
}
