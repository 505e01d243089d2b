// Package karakeep imports the local document library into a Karakeep
// bookmark server.
package karakeep

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/user/skim/internal/store"
)

// HTTPClient defines the interface for HTTP operations
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client handles communication with the Karakeep REST API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPClient
}

// ClientOption allows configuring the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new Karakeep API client. baseURL points at the API
// root, e.g. https://bookmarks.example.com/api/v1.
func NewClient(baseURL, apiKey string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("karakeep base URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("karakeep API key is required")
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Bookmark is the subset of a Karakeep bookmark this importer cares about.
type Bookmark struct {
	ID            string
	AlreadyExists bool
}

type bookmarkPayload struct {
	Type      string `json:"type"`
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	Summary   string `json:"summary,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	Archived  bool   `json:"archived,omitempty"`
}

// CreateBookmark creates a link bookmark for doc. The server answers 200
// when the URL is already bookmarked and 201 on creation; both carry the
// bookmark id.
func (c *Client) CreateBookmark(doc *store.Document) (*Bookmark, error) {
	payload := bookmarkPayload{
		Type:    "link",
		URL:     doc.SourceURL,
		Title:   doc.Title,
		Summary: doc.Summary,
	}
	if !doc.SavedAt.IsZero() {
		payload.CreatedAt = doc.SavedAt.Format(time.RFC3339)
	}
	if doc.Location == "archive" {
		payload.Archived = true
	}

	resp, err := c.post("/bookmarks", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var parsed struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("unexpected bookmark response: %w", err)
		}
		return &Bookmark{ID: parsed.ID, AlreadyExists: resp.StatusCode == http.StatusOK}, nil
	default:
		return nil, fmt.Errorf("create bookmark failed: HTTP %d: %s", resp.StatusCode, body)
	}
}

// AttachTags attaches tagNames to an existing bookmark. The server treats
// repeats as no-ops, so this is safe to call on every import pass.
func (c *Client) AttachTags(bookmarkID string, tagNames []string) error {
	type tag struct {
		TagName string `json:"tagName"`
	}
	tags := make([]tag, 0, len(tagNames))
	for _, name := range tagNames {
		tags = append(tags, tag{TagName: name})
	}

	resp, err := c.post("/bookmarks/"+bookmarkID+"/tags", map[string]any{"tags": tags})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tag attach failed: HTTP %d: %s", resp.StatusCode, body)
	}
	return nil
}

func (c *Client) post(path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}
