package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"murmur/internal/logging"
	"murmur/internal/services"
	"murmur/internal/services/ffprobe"
	"murmur/internal/services/notion"
	"murmur/internal/services/whisper"
	"murmur/internal/testsupport"
)

type fakeTranscriber struct {
	transcript *whisper.Transcript
	err        error
}

func (f *fakeTranscriber) Transcribe(context.Context, string) (*whisper.Transcript, error) {
	return f.transcript, f.err
}

type fakePublisher struct {
	ref      *notion.PageRef
	err      error
	received notion.Recording
	calls    int
}

func (f *fakePublisher) Publish(_ context.Context, rec notion.Recording) (*notion.PageRef, error) {
	f.calls++
	f.received = rec
	return f.ref, f.err
}

func probeStub(output string) Prober {
	return func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Parse([]byte(output))
	}
}

func failingProbe(context.Context, string, string) (ffprobe.Result, error) {
	return ffprobe.Result{}, errors.New("ffprobe not installed")
}

const probeOutput = `{
  "streams": [{"codec_name": "aac", "codec_type": "audio", "sample_rate": "48000", "channels": 1}],
  "format": {
    "duration": "184.5",
    "size": "1478061",
    "tags": {"creation_time": "2024-03-15T09:12:44Z"}
  }
}`

func testTranscript() *whisper.Transcript {
	return &whisper.Transcript{
		Text:     "Remember to book the dentist. Also pick up milk.",
		Language: "en",
		Duration: 185 * time.Second,
		Segments: []whisper.Segment{
			{Index: 0, Start: 0, End: 3 * time.Second, Text: "Remember to book the dentist."},
			{Index: 1, Start: 3 * time.Second, End: 6 * time.Second, Text: "Also pick up milk."},
		},
		Model: "whisper-1",
	}
}

func TestProcessComposesAllSteps(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	publisher := &fakePublisher{ref: &notion.PageRef{ID: "page-1", URL: "https://notion.so/page-1"}}
	proc, err := New(cfg, logging.NewNop(),
		WithProber(probeStub(probeOutput)),
		WithTranscriber(&fakeTranscriber{transcript: testTranscript()}),
		WithPublisher(publisher),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := proc.Process(context.Background(), "/sync/Work/memo.m4a")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Metadata.Codec != "aac" || result.Metadata.Channels != 1 {
		t.Fatalf("unexpected metadata: %+v", result.Metadata)
	}
	if !result.Metadata.RecordedAt.Equal(time.Date(2024, 3, 15, 9, 12, 44, 0, time.UTC)) {
		t.Fatalf("unexpected recorded time: %v", result.Metadata.RecordedAt)
	}
	if result.Page == nil || result.Page.ID != "page-1" {
		t.Fatalf("unexpected page ref: %+v", result.Page)
	}
	if len(result.Suggestions) == 0 {
		t.Fatal("expected link suggestions")
	}

	if publisher.received.Language != "English" {
		t.Fatalf("unexpected language passed to publisher: %q", publisher.received.Language)
	}
	if len(publisher.received.Segments) != 2 {
		t.Fatalf("unexpected segments passed to publisher: %+v", publisher.received.Segments)
	}
	if publisher.received.Segments[1].Timestamp != "00:03" {
		t.Fatalf("unexpected segment timestamp: %q", publisher.received.Segments[1].Timestamp)
	}
	wantTags := []string{"Work", "Medium"}
	if len(publisher.received.Tags) != len(wantTags) {
		t.Fatalf("unexpected tags: %+v", publisher.received.Tags)
	}
	for i, tag := range wantTags {
		if publisher.received.Tags[i] != tag {
			t.Fatalf("unexpected tags: %+v", publisher.received.Tags)
		}
	}
}

func TestProcessContinuesWithoutMetadata(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	publisher := &fakePublisher{ref: &notion.PageRef{ID: "page-1"}}
	proc, err := New(cfg, logging.NewNop(),
		WithProber(failingProbe),
		WithTranscriber(&fakeTranscriber{transcript: testTranscript()}),
		WithPublisher(publisher),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := proc.Process(context.Background(), "/sync/memo.m4a")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	// The transcript supplies the duration when the container probe fails.
	if result.Metadata.Duration != 185*time.Second {
		t.Fatalf("expected duration fallback, got %v", result.Metadata.Duration)
	}
	if result.Metadata.Codec != "" {
		t.Fatalf("expected no codec, got %q", result.Metadata.Codec)
	}
}

func TestProcessPropagatesTranscriptionFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	wantErr := services.Wrap(services.ErrExternalTool, "whisper", "transcribe", "boom", nil)
	publisher := &fakePublisher{}
	proc, err := New(cfg, logging.NewNop(),
		WithProber(probeStub(probeOutput)),
		WithTranscriber(&fakeTranscriber{err: wantErr}),
		WithPublisher(publisher),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = proc.Process(context.Background(), "/sync/memo.m4a")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if publisher.calls != 0 {
		t.Fatal("publisher must not run after transcription failure")
	}
}

func TestProcessPropagatesPublishFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	publishErr := services.Wrap(services.ErrExternalTool, "notion", "create page", "api returned 500", nil)
	proc, err := New(cfg, logging.NewNop(),
		WithProber(probeStub(probeOutput)),
		WithTranscriber(&fakeTranscriber{transcript: testTranscript()}),
		WithPublisher(&fakePublisher{err: publishErr}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := proc.Process(context.Background(), "/sync/memo.m4a"); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestNewWithoutNotionSkipsPublishing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Notion.Enabled = false
	proc, err := New(cfg, logging.NewNop(),
		WithProber(probeStub(probeOutput)),
		WithTranscriber(&fakeTranscriber{transcript: testTranscript()}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := proc.Process(context.Background(), "/sync/memo.m4a")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Page != nil {
		t.Fatalf("expected no page when publishing disabled, got %+v", result.Page)
	}
	if result.Transcript == nil {
		t.Fatal("expected transcript")
	}
}
