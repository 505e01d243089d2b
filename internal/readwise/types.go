package readwise

import (
	"encoding/json"
	"fmt"
	"time"
)

// Library locations a document can live in.
const (
	LocationNew       = "new"
	LocationLater     = "later"
	LocationShortlist = "shortlist"
	LocationArchive   = "archive"
)

// SyncLocations are the collections mirrored locally, in sync order.
var SyncLocations = []string{LocationNew, LocationLater, LocationShortlist}

// FlexibleTime is a time.Time that can parse multiple date formats
type FlexibleTime struct {
	time.Time
}

// UnmarshalJSON implements custom JSON unmarshaling for FlexibleTime
func (ft *FlexibleTime) UnmarshalJSON(data []byte) error {
	// Remove quotes from JSON string
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}
	if str == "" || str == "null" {
		ft.Time = time.Time{}
		return nil
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, str); err == nil {
			ft.Time = t
			return nil
		}
	}

	return fmt.Errorf("unable to parse time: %s", str)
}

// MarshalJSON implements custom JSON marshaling
func (ft FlexibleTime) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", ft.Format(time.RFC3339))), nil
}

// TagSet is a set of label strings. The API has returned tags both as a
// plain array and as an object keyed by tag name; anything unreadable
// decodes as no tags.
type TagSet []string

// UnmarshalJSON accepts either form of the tag payload.
func (ts *TagSet) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*ts = list
		return nil
	}

	var set map[string]json.RawMessage
	if err := json.Unmarshal(data, &set); err == nil {
		tags := make([]string, 0, len(set))
		for k := range set {
			if k != "" {
				tags = append(tags, k)
			}
		}
		*ts = tags
		return nil
	}

	*ts = nil
	return nil
}

// Item represents a Readwise Reader document
type Item struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Author      string       `json:"author"`
	Category    string       `json:"category"`
	Summary     string       `json:"summary"`
	SourceURL   string       `json:"source_url"`
	ImageURL    string       `json:"image_url"`
	WordCount   int          `json:"word_count"`
	ReadingTime string       `json:"reading_time"`
	SavedAt     FlexibleTime `json:"saved_at"`
	Location    string       `json:"location"`
	Tags        TagSet       `json:"tags"`
}

// ListResponse represents the list API response structure
type ListResponse struct {
	Count          int     `json:"count"`
	NextPageCursor *string `json:"nextPageCursor"`
	Results        []Item  `json:"results"`
}

// DocumentDetail is the single-document response used for summarization input.
type DocumentDetail struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Summary string `json:"summary"`
}
