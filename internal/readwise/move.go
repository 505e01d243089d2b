package readwise

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Move relocates a document to another library collection.
func (c *Client) Move(documentID, location string) error {
	payload := map[string]string{"location": location}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal move: %w", err)
	}

	resp, err := c.doRequest("PATCH", fmt.Sprintf("%s/update/%s/", c.baseURL, documentID), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("move failed with status %d", resp.StatusCode)
	}

	return nil
}

// Content fetches a document's full text, used as summarizer input.
// Falls back to the remote-provided summary when no content is available.
func (c *Client) Content(documentID string) (string, error) {
	resp, err := c.doRequest("GET", fmt.Sprintf("%s/get/%s/?withContent=true", c.baseURL, documentID), nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("content request failed: %d", resp.StatusCode)
	}

	var detail DocumentDetail
	if err := decodeJSON(resp.Body, &detail); err != nil {
		return "", fmt.Errorf("decode document detail: %w", err)
	}

	if detail.Content != "" {
		return detail.Content, nil
	}
	return detail.Summary, nil
}
