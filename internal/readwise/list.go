package readwise

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ListParams are the options for a single list call.
type ListParams struct {
	Location     string
	PageSize     int
	Cursor       *string   // opaque pagination token from the previous page
	Fields       []string  // response field subset; empty means full documents
	UpdatedAfter time.Time // zero means no changed-since filter
}

// List fetches one page of documents for a location. The returned
// NextPageCursor is nil on the final page.
func (c *Client) List(p ListParams) (*ListResponse, error) {
	params := url.Values{}
	params.Set("location", p.Location)
	if p.PageSize > 0 {
		params.Set("limit", strconv.Itoa(p.PageSize))
	}
	if p.Cursor != nil {
		params.Set("pageCursor", *p.Cursor)
	}
	if len(p.Fields) > 0 {
		params.Set("fields", strings.Join(p.Fields, ","))
	}
	if !p.UpdatedAfter.IsZero() {
		params.Set("updatedAfter", p.UpdatedAfter.Format(time.RFC3339))
	}

	resp, err := c.doRequest("GET", fmt.Sprintf("%s/list/?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list request failed: %d", resp.StatusCode)
	}

	var result ListResponse
	if err := decodeJSON(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}

	return &result, nil
}

// ListAll drains every page for a location, following cursors until the
// remote stops returning one.
func (c *Client) ListAll(p ListParams) ([]Item, error) {
	var all []Item
	p.Cursor = nil

	for {
		page, err := c.List(p)
		if err != nil {
			return nil, err
		}

		all = append(all, page.Results...)
		p.Cursor = page.NextPageCursor

		if p.Cursor == nil {
			break
		}
	}

	return all, nil
}
