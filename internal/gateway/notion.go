package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"meetbot/internal/provider"
)

const (
	notionBaseURL        = "https://api.notion.com/v1"
	notionDefaultVersion = "2022-06-28"
)

// NotionClient is the shared request core for the Notion-backed gateways:
// meeting notes, follow-up tasks, and the customer/lead registries.
type NotionClient struct {
	apiKey  string
	baseURL string
	version string
	client  *http.Client
	logger  *slog.Logger
}

type NotionClientConfig struct {
	APIKey     string
	Version    string
	BaseURL    string // override for tests
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func NewNotionClient(cfg NotionClientConfig) *NotionClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = notionBaseURL
	}
	if cfg.Version == "" {
		cfg.Version = notionDefaultVersion
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = provider.SharedHTTPClient(0)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &NotionClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		version: cfg.Version,
		client:  cfg.HTTPClient,
		logger:  cfg.Logger,
	}
}

// CreatePage creates a page in a database and returns the page ID.
func (n *NotionClient) CreatePage(ctx context.Context, databaseID string, properties map[string]any, children []map[string]any) (string, error) {
	body := map[string]any{
		"parent":     map[string]any{"database_id": databaseID},
		"properties": properties,
	}
	if len(children) > 0 {
		body["children"] = children
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := n.do(ctx, "POST", "/pages", body, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("notion: page created without id")
	}
	return created.ID, nil
}

// QueryDatabase runs a filtered query and returns the matching page IDs.
func (n *NotionClient) QueryDatabase(ctx context.Context, databaseID string, filter map[string]any) ([]string, error) {
	body := map[string]any{}
	if filter != nil {
		body["filter"] = filter
	}

	var result struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	if err := n.do(ctx, "POST", "/databases/"+databaseID+"/query", body, &result); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(result.Results))
	for _, r := range result.Results {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (n *NotionClient) do(ctx context.Context, method, path string, body any, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, n.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Notion-Version", n.version)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("notion %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
	}
	return nil
}
