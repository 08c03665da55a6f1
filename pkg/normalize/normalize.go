// Package normalize maps source-specific report records onto candidates.
package normalize

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/codeGROOVE-dev/shadowrecon/pkg/candidate"
	"github.com/codeGROOVE-dev/shadowrecon/pkg/platform"
	"github.com/codeGROOVE-dev/shadowrecon/pkg/source"
)

// Enumeration turns enumeration hits into candidates. Non-hits and records
// whose URL cannot serve as an identity URL are dropped.
func Enumeration(results []source.SiteResult, cat *platform.Catalog, logger *slog.Logger) []candidate.Candidate {
	if logger == nil {
		logger = slog.Default()
	}

	var out []candidate.Candidate
	for _, r := range results {
		if !r.Hit() {
			continue
		}
		label, ok := cat.Lookup(r.URL)
		if !ok {
			label = r.Site
		}
		c, err := candidate.New(label, r.URL, r.Raw, candidate.ScoreEnumeration, candidate.OriginEnumeration)
		if err != nil {
			logger.Debug("dropping enumeration hit", "site", r.Site, "url", r.URL, "error", err)
			continue
		}
		out = append(out, c)
	}
	return out
}

// Lead is a normalized search result. Resolved leads carry a final candidate;
// unresolved leads need the classifier to confirm them.
type Lead struct {
	Candidate candidate.Candidate // Set when Resolved
	URL       string
	Text      string          // Classifier input built from title and snippet
	Evidence  json.RawMessage // Search record, kept for the boosted candidate
	Resolved  bool
}

// Search normalizes search results in input order. Results on catalogued
// domains resolve immediately; the rest become unresolved leads.
func Search(results []source.SearchResult, cat *platform.Catalog, logger *slog.Logger) []Lead {
	if logger == nil {
		logger = slog.Default()
	}

	var out []Lead
	for _, r := range results {
		u := strings.TrimSpace(r.URL)
		if u == "" {
			continue
		}
		if _, err := candidate.ParseURL(u); err != nil {
			logger.Debug("dropping search result", "url", u, "error", err)
			continue
		}

		lead := Lead{URL: u, Text: ClassifierText(r.Title, r.Snippet), Evidence: r.Raw}
		if label, ok := cat.Lookup(u); ok {
			c, err := candidate.New(label, u, r.Raw, candidate.ScoreKnownDomain, candidate.OriginSearch)
			if err != nil {
				logger.Debug("dropping search result", "url", u, "error", err)
				continue
			}
			lead.Candidate = c
			lead.Resolved = true
		}
		out = append(out, lead)
	}
	return out
}

// Boosted builds the candidate for a lead the classifier confirmed.
func Boosted(lead Lead) (candidate.Candidate, error) {
	if lead.Resolved {
		return lead.Candidate, nil
	}
	c, err := candidate.New(candidate.PlatformOther, lead.URL, lead.Evidence, candidate.ScoreBoosted, candidate.OriginSearch)
	if err != nil {
		return candidate.Candidate{}, fmt.Errorf("boost %s: %w", lead.URL, err)
	}
	return c, nil
}

// ClassifierText formats a search result for zero-shot classification.
func ClassifierText(title, snippet string) string {
	return fmt.Sprintf("Title: %s. Snippet: %s", title, snippet)
}
