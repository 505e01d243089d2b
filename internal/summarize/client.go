// Package summarize produces short article summaries through any
// OpenAI-compatible chat completions API, memoized per document.
package summarize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultLLMTimeout = 120 * time.Second
	defaultMaxRetries = 3
	defaultRetryDelay = time.Second

	// maxContentChars bounds how much article text is sent upstream.
	maxContentChars = 12_000
)

const systemPrompt = `You summarize articles concisely. Return valid JSON only, no markdown fences. Format: {"summary":"2-3 sentence summary","keyPoints":["point 1","point 2","point 3"]}. 3-5 key points max. Be direct and specific.`

// Provider presets for known LLM providers
var providerDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"openrouter": {BaseURL: "https://openrouter.ai/api/v1/chat/completions", Model: "google/gemini-3-flash-preview"},
	"openai":     {BaseURL: "https://api.openai.com/v1/chat/completions", Model: "gpt-4o-mini"},
	"ollama":     {BaseURL: "http://localhost:11434/v1/chat/completions", Model: "llama3"},
}

// Result is one summarization outcome.
type Result struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
}

// ChatMessage represents a message in the chat API
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the API request body
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// ChatResponse represents the API response
type ChatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Client handles communication with any OpenAI-compatible chat completions API
type Client struct {
	provider   string
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option allows configuring the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithModel sets a custom model
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL sets a custom base URL
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// NewClient creates a new summarizer client.
// provider can be "openrouter", "openai", "ollama", or empty (defaults to
// openrouter). apiKey can be empty for providers that don't require one.
func NewClient(provider, apiKey string, opts ...Option) (*Client, error) {
	if provider == "" {
		provider = "openrouter"
	}

	defaults, known := providerDefaults[provider]
	if !known {
		// Unknown provider: require explicit base_url and model via options
		defaults.BaseURL = ""
		defaults.Model = ""
	}

	client := &Client{
		provider:   provider,
		apiKey:     apiKey,
		model:      defaults.Model,
		baseURL:    defaults.BaseURL,
		httpClient: &http.Client{Timeout: defaultLLMTimeout},
	}

	for _, opt := range opts {
		opt(client)
	}

	// Auto-append the standard path if the base URL has no path component
	if client.baseURL != "" && !strings.Contains(strings.TrimPrefix(strings.TrimPrefix(client.baseURL, "https://"), "http://"), "/") {
		client.baseURL = strings.TrimRight(client.baseURL, "/") + "/v1/chat/completions"
	}

	if client.baseURL == "" {
		return nil, fmt.Errorf("summarizer base_url is required for provider %q", provider)
	}
	if client.model == "" {
		return nil, fmt.Errorf("summarizer model is required for provider %q", provider)
	}
	if client.apiKey == "" && provider != "ollama" {
		return nil, fmt.Errorf("summarizer api_key is required for provider %q", provider)
	}

	return client, nil
}

// Summarize sends the article to the LLM and parses the structured result.
func (c *Client) Summarize(title, content string) (*Result, error) {
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}

	reqBody := ChatRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Title: %s\n\n%s", title, content)},
		},
		Temperature: 0.3,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < defaultMaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(defaultRetryDelay * time.Duration(attempt))
		}

		result, err := c.doRequest(body)
		if err != nil {
			// Don't retry client errors (4xx)
			var noRetry *errNoRetry
			if errors.As(err, &noRetry) {
				return nil, noRetry.err
			}
			lastErr = err
			continue
		}
		return result, nil
	}

	return nil, fmt.Errorf("summarize failed after %d retries: %w", defaultMaxRetries, lastErr)
}

// errNoRetry wraps errors that should not be retried (e.g., 4xx client errors).
type errNoRetry struct {
	err error
}

func (e *errNoRetry) Error() string { return e.err.Error() }
func (e *errNoRetry) Unwrap() error { return e.err }

func (c *Client) doRequest(body []byte) (*Result, error) {
	req, err := http.NewRequest("POST", c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := parseAPIError(resp.StatusCode, respBody)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, &errNoRetry{err: apiErr}
		}
		return nil, apiErr
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		preview := string(respBody)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return nil, &errNoRetry{err: fmt.Errorf("unexpected response (not JSON): %s", preview)}
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return parseSummaryResponse(chatResp.Choices[0].Message.Content), nil
}

// parseAPIError extracts a human-readable message from an API error response.
// If the body is JSON with an error.message field, it uses that; otherwise falls back to raw body.
func parseAPIError(statusCode int, body []byte) error {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		return fmt.Errorf("API error (status %d): %s", statusCode, parsed.Error.Message)
	}
	return fmt.Errorf("API error (status %d): %s", statusCode, string(body))
}
