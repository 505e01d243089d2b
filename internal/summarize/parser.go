package summarize

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceStartRe = regexp.MustCompile("^```(?:json)?\\s*")
	fenceEndRe   = regexp.MustCompile("\\s*```$")

	summaryRe = regexp.MustCompile(`"summary"\s*:\s*"((?:[^"\\]|\\.)*)"`)
)

// parseSummaryResponse extracts a Result from an LLM reply. Models do not
// always return the bare JSON object they were asked for, so this strips
// markdown fences, then falls back to regex extraction, then to treating
// the whole reply as the summary.
func parseSummaryResponse(raw string) *Result {
	cleaned := strings.TrimSpace(raw)
	cleaned = fenceStartRe.ReplaceAllString(cleaned, "")
	cleaned = fenceEndRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	var result Result
	if err := json.Unmarshal([]byte(cleaned), &result); err == nil && result.Summary != "" {
		return &result
	}

	// Some models wrap the object in prose. Pull out the first {...} block.
	if start := strings.Index(cleaned, "{"); start >= 0 {
		if end := strings.LastIndex(cleaned, "}"); end > start {
			var result Result
			if err := json.Unmarshal([]byte(cleaned[start:end+1]), &result); err == nil && result.Summary != "" {
				return &result
			}
		}
	}

	// Salvage just the summary string if the JSON is otherwise malformed.
	if m := summaryRe.FindStringSubmatch(cleaned); m != nil {
		var s string
		if err := json.Unmarshal([]byte(`"`+m[1]+`"`), &s); err == nil && s != "" {
			return &Result{Summary: s}
		}
	}

	return &Result{Summary: cleaned}
}
