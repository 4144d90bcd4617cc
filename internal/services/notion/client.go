package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"murmur/internal/config"
	"murmur/internal/services"
)

// HTTPDoer describes the HTTP client used by the Notion service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// PageRef identifies a published Notion page.
type PageRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client publishes transcription pages into a Notion database.
type Client struct {
	baseURL    string
	token      string
	version    string
	databaseID string
	client     HTTPDoer
}

// NewClient constructs a Notion client from configuration.
func NewClient(cfg *config.Config, client HTTPDoer) (*Client, error) {
	token := strings.TrimSpace(cfg.Notion.Token)
	databaseID := strings.TrimSpace(cfg.Notion.DatabaseID)
	if token == "" || databaseID == "" {
		return nil, services.Wrap(services.ErrConfiguration, "notion", "new client",
			"notion.token and notion.database_id are required when publishing is enabled", nil)
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.NotionTimeout()}
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.Notion.BaseURL), "/"),
		token:      token,
		version:    cfg.Notion.Version,
		databaseID: databaseID,
		client:     client,
	}, nil
}

// Publish renders the recording into a page and creates it in the configured
// database.
func (c *Client) Publish(ctx context.Context, rec Recording) (*PageRef, error) {
	return c.createPage(ctx, buildPage(c.databaseID, rec))
}

func (c *Client) createPage(ctx context.Context, page createPageRequest) (*PageRef, error) {
	payload, err := json.Marshal(page)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "notion", "create page", "encode page payload", err)
	}

	endpoint := c.baseURL + "/v1/pages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "notion", "create page", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "notion", "create page", "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "notion", "create page", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrExternalTool, "notion", "create page",
			fmt.Sprintf("api returned %d: %s", resp.StatusCode, apiErrorMessage(body)), nil)
	}

	var ref PageRef
	if err := json.Unmarshal(body, &ref); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "notion", "create page", "decode response", err)
	}
	if ref.ID == "" {
		return nil, services.Wrap(services.ErrExternalTool, "notion", "create page", "response missing page id", nil)
	}
	return &ref, nil
}

func apiErrorMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) > 200 {
		trimmed = trimmed[:200]
	}
	return trimmed
}
