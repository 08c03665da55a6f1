package source

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// Shape identifies which of the two enumeration report layouts a result came from.
type Shape int

// Enumeration report layouts.
const (
	// ShapeEntry is one {site, status: {status, url, site_name}} entry per record.
	ShapeEntry Shape = iota + 1
	// ShapeSites is a {sites: {<name>: {status, url}}} mapping.
	ShapeSites
)

// Hit sentinels per layout.
const (
	StatusClaimed = "Claimed"
	StatusFound   = "found"
)

func (s Shape) String() string {
	switch s {
	case ShapeEntry:
		return "entry"
	case ShapeSites:
		return "sites"
	default:
		return "unknown"
	}
}

// Sentinel returns the status value that marks a hit in this layout.
func (s Shape) Sentinel() string {
	if s == ShapeSites {
		return StatusFound
	}
	return StatusClaimed
}

// SiteResult is one per-site outcome from an enumeration report, whichever
// layout it arrived in.
type SiteResult struct {
	Site   string          // Site name reported by the tool
	Status string          // Raw status value
	URL    string          // Profile URL, may be empty
	Raw    json.RawMessage // Full source record for this site
	Shape  Shape
}

// Hit reports whether the tool claims the handle exists on this site.
func (r SiteResult) Hit() bool {
	return r.Status == r.Shape.Sentinel() && strings.TrimSpace(r.URL) != ""
}

// ParseEnumeration resolves each record's layout once and flattens the report
// into per-site results. Unrecognized records are skipped.
func ParseEnumeration(records []Record, logger *slog.Logger) []SiteResult {
	if logger == nil {
		logger = slog.Default()
	}

	var results []SiteResult
	for i, rec := range records {
		obj := object(rec)
		if obj == nil {
			logger.Debug("skipping non-object enumeration record", "index", i)
			continue
		}

		if sites, ok := obj["sites"]; ok {
			results = append(results, parseSites(sites, i, logger)...)
			continue
		}
		if _, ok := obj["status"]; ok {
			results = append(results, parseEntry(rec, obj))
			continue
		}
		logger.Debug("skipping enumeration record with unknown layout", "index", i)
	}
	return results
}

func parseEntry(rec json.RawMessage, obj map[string]json.RawMessage) SiteResult {
	status := object(obj["status"])
	site := str(status, "site_name")
	if site == "" {
		site = str(obj, "site")
	}
	if site == "" {
		site = str(object(obj["site"]), "name")
	}
	if site == "" {
		site = "Unknown"
	}
	return SiteResult{
		Site:   site,
		Status: str(status, "status"),
		URL:    str(status, "url"),
		Raw:    rec,
		Shape:  ShapeEntry,
	}
}

func parseSites(raw json.RawMessage, index int, logger *slog.Logger) []SiteResult {
	members, ok := orderedMembers(raw)
	if !ok {
		logger.Debug("skipping enumeration record with malformed sites mapping", "index", index)
		return nil
	}

	results := make([]SiteResult, 0, len(members))
	for _, m := range members {
		info := object(m.value)
		if info == nil {
			logger.Debug("skipping malformed site result", "index", index, "site", m.key)
			continue
		}
		results = append(results, SiteResult{
			Site:   m.key,
			Status: str(info, "status"),
			URL:    str(info, "url"),
			Raw:    m.value,
			Shape:  ShapeSites,
		})
	}
	return results
}
