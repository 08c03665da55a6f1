package source

import (
	"encoding/json"
	"log/slog"
)

// SearchResult is one title/url/snippet triple from a web-search report.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
	Raw     json.RawMessage
}

// ParseSearch decodes search records. Non-object records are skipped and
// fields of the wrong type read as empty.
func ParseSearch(records []Record, logger *slog.Logger) []SearchResult {
	if logger == nil {
		logger = slog.Default()
	}

	results := make([]SearchResult, 0, len(records))
	for i, rec := range records {
		obj := object(rec)
		if obj == nil {
			logger.Debug("skipping non-object search record", "index", i)
			continue
		}
		results = append(results, SearchResult{
			Title:   str(obj, "title"),
			URL:     str(obj, "url"),
			Snippet: str(obj, "snippet"),
			Raw:     rec,
		})
	}
	return results
}
