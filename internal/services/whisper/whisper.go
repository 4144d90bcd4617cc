package whisper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"murmur/internal/config"
	"murmur/internal/services"
)

// transcriptionAPI is the slice of the OpenAI client the service uses.
// Narrowed so tests can substitute a fake without a live endpoint.
type transcriptionAPI interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// Client transcribes audio files through the Whisper API.
type Client struct {
	api      transcriptionAPI
	model    string
	language string
	timeout  time.Duration
}

// Option customizes client construction.
type Option func(*Client)

// WithAPI substitutes the transcription backend.
func WithAPI(api transcriptionAPI) Option {
	return func(c *Client) {
		c.api = api
	}
}

// New builds a Whisper client from configuration.
func New(cfg *config.Config, opts ...Option) *Client {
	client := &Client{
		model:    cfg.Whisper.Model,
		language: cfg.Whisper.Language,
		timeout:  cfg.WhisperTimeout(),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.api == nil {
		apiConfig := openai.DefaultConfig(cfg.Whisper.APIKey)
		if baseURL := strings.TrimSpace(cfg.Whisper.BaseURL); baseURL != "" {
			apiConfig.BaseURL = strings.TrimSuffix(baseURL, "/")
		}
		apiConfig.HTTPClient = &http.Client{Timeout: client.timeout}
		client.api = openai.NewClientWithConfig(apiConfig)
	}
	return client
}

// Transcribe sends the recording at path to the Whisper API and returns the
// parsed transcript. Requests use the verbose JSON format so segment timing
// survives into the published page.
func (c *Client) Transcribe(ctx context.Context, path string) (*Transcript, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrValidation, "whisper", "transcribe", "empty path", nil)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	response, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: path,
		Language: c.language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "whisper", "transcribe",
			fmt.Sprintf("transcription request for %s failed", path), err)
	}

	transcript := fromResponse(response, c.model)
	if strings.TrimSpace(transcript.Text) == "" {
		return nil, services.Wrap(services.ErrExternalTool, "whisper", "transcribe",
			fmt.Sprintf("transcription of %s returned no text", path), nil)
	}
	return transcript, nil
}

func fromResponse(response openai.AudioResponse, model string) *Transcript {
	transcript := &Transcript{
		Text:     strings.TrimSpace(response.Text),
		Language: strings.TrimSpace(response.Language),
		Duration: time.Duration(response.Duration * float64(time.Second)).Round(time.Second),
		Model:    model,
	}
	for _, segment := range response.Segments {
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		transcript.Segments = append(transcript.Segments, Segment{
			Index: segment.ID,
			Start: time.Duration(segment.Start * float64(time.Second)),
			End:   time.Duration(segment.End * float64(time.Second)),
			Text:  text,
		})
	}
	return transcript
}
