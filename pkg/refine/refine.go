// Package refine runs the candidate pipeline: load the discovery reports,
// normalize them, drop blocklisted domains, confirm unknown domains with the
// classifier, merge, rank, and persist.
package refine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/shadowrecon/pkg/booster"
	"github.com/codeGROOVE-dev/shadowrecon/pkg/candidate"
	"github.com/codeGROOVE-dev/shadowrecon/pkg/metrics"
	"github.com/codeGROOVE-dev/shadowrecon/pkg/normalize"
	"github.com/codeGROOVE-dev/shadowrecon/pkg/platform"
	"github.com/codeGROOVE-dev/shadowrecon/pkg/rank"
	"github.com/codeGROOVE-dev/shadowrecon/pkg/source"
	"github.com/codeGROOVE-dev/shadowrecon/pkg/store"
)

// Inputs names the report files and the output file of a run.
type Inputs struct {
	Enumeration string
	Search      string
	Output      string
}

// Report summarizes a run.
type Report struct {
	Candidates []candidate.Candidate // Final ranked list, as persisted

	EnumerationRecords int
	SearchRecords      int
	Hits               int // Enumeration hits with a usable URL
	SearchResults      int // Search results with a usable URL
	Blocked            int
	Boosted            int // Unknown domains confirmed by the classifier
	Rejected           int // Unknown domains the classifier did not confirm
	Duplicates         int
	Duration           time.Duration
}

// Option configures a run.
type Option func(*config)

type config struct {
	logger  *slog.Logger
	catalog *platform.Catalog
	booster *booster.Booster
	metrics *metrics.Metrics
	policy  rank.Policy
}

// WithLogger sets the diagnostics sink.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithCatalog replaces the built-in platform table and blocklist.
func WithCatalog(cat *platform.Catalog) Option {
	return func(c *config) { c.catalog = cat }
}

// WithBooster enables classifier confirmation of unknown domains.
// Without it, search results on unknown domains are dropped.
func WithBooster(b *booster.Booster) Option {
	return func(c *config) { c.booster = b }
}

// WithPolicy sets the duplicate resolution policy.
func WithPolicy(p rank.Policy) Option {
	return func(c *config) { c.policy = p }
}

// WithMetrics records run counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

func newConfig(opts []Option) *config {
	cfg := &config{logger: slog.Default(), policy: rank.LastWriterWins}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.catalog == nil {
		cfg.catalog = platform.Default()
	}
	return cfg
}

// Run loads both reports, refines them, and writes the ranked list to
// in.Output. Missing or malformed reports are diagnostics, not errors; the
// only errors returned are cancellation and failure to persist.
func Run(ctx context.Context, in Inputs, opts ...Option) (*Report, error) {
	cfg := newConfig(opts)
	start := time.Now()

	enum, search := source.LoadPair(ctx, in.Enumeration, in.Search, cfg.logger)
	rep := refine(ctx, cfg, enum, search)

	if err := ctx.Err(); err != nil {
		return rep, fmt.Errorf("refine interrupted: %w", err)
	}
	if err := store.Save(ctx, rep.Candidates, in.Output); err != nil {
		cfg.logger.ErrorContext(ctx, "failed to save candidates", "path", in.Output, "error", err)
		return rep, err
	}

	rep.Duration = time.Since(start)
	if cfg.metrics != nil {
		cfg.metrics.RunDurationSeconds.Set(rep.Duration.Seconds())
		cfg.metrics.LastRunTimestamp.SetToCurrentTime()
	}
	cfg.logger.InfoContext(ctx, "saved candidates",
		"path", in.Output,
		"candidates", len(rep.Candidates),
		"blocked", rep.Blocked,
		"boosted", rep.Boosted,
		"duration", rep.Duration)
	return rep, nil
}

// Refine runs every stage except file I/O over already loaded records.
func Refine(ctx context.Context, enum, search []source.Record, opts ...Option) *Report {
	return refine(ctx, newConfig(opts), enum, search)
}

func refine(ctx context.Context, cfg *config, enumRecs, searchRecs []source.Record) *Report {
	logger := cfg.logger
	rep := &Report{
		EnumerationRecords: len(enumRecs),
		SearchRecords:      len(searchRecs),
	}
	if cfg.metrics != nil {
		cfg.metrics.AddRecords(string(candidate.OriginEnumeration), len(enumRecs))
		cfg.metrics.AddRecords(string(candidate.OriginSearch), len(searchRecs))
	}

	hits := normalize.Enumeration(source.ParseEnumeration(enumRecs, logger), cfg.catalog, logger)
	leads := normalize.Search(source.ParseSearch(searchRecs, logger), cfg.catalog, logger)
	rep.Hits = len(hits)
	rep.SearchResults = len(leads)

	enumKept, dropped := cfg.catalog.Filter(hits)
	for _, c := range dropped {
		logger.DebugContext(ctx, "blocked enumeration candidate", "url", c.URL)
		rep.drop(cfg.metrics, metrics.ReasonBlocked)
	}

	// Leads are processed in report order so classifier calls, and therefore
	// the output, do not depend on scheduling.
	var searchKept []candidate.Candidate
	for _, lead := range leads {
		if cfg.catalog.Blocked(lead.URL) {
			logger.DebugContext(ctx, "blocked search candidate", "url", lead.URL)
			rep.drop(cfg.metrics, metrics.ReasonBlocked)
			continue
		}
		if lead.Resolved {
			searchKept = append(searchKept, lead.Candidate)
			continue
		}
		if ctx.Err() != nil || !cfg.booster.Confirm(ctx, lead.Text) {
			logger.DebugContext(ctx, "unconfirmed search candidate", "url", lead.URL)
			rep.Rejected++
			rep.drop(cfg.metrics, metrics.ReasonUnconfirmed)
			continue
		}
		c, err := normalize.Boosted(lead)
		if err != nil {
			logger.WarnContext(ctx, "dropping confirmed candidate", "url", lead.URL, "error", err)
			continue
		}
		rep.Boosted++
		searchKept = append(searchKept, c)
	}

	// Enumeration first: with last-writer-wins, search metadata replaces
	// enumeration metadata for the same URL.
	rep.Duplicates = rank.Duplicates(enumKept, searchKept)
	rep.Candidates = rank.Merge(cfg.policy, enumKept, searchKept)
	if cfg.metrics != nil {
		cfg.metrics.CandidatesDropped.WithLabelValues(metrics.ReasonDuplicate).Add(float64(rep.Duplicates))
		cfg.metrics.CandidatesEmitted.Set(float64(len(rep.Candidates)))
	}

	logger.DebugContext(ctx, "refined candidates",
		"enumeration_hits", rep.Hits,
		"search_results", rep.SearchResults,
		"blocked", rep.Blocked,
		"boosted", rep.Boosted,
		"rejected", rep.Rejected,
		"duplicates", rep.Duplicates,
		"candidates", len(rep.Candidates))
	return rep
}

func (r *Report) drop(m *metrics.Metrics, reason string) {
	if reason == metrics.ReasonBlocked {
		r.Blocked++
	}
	if m != nil {
		m.Dropped(reason)
	}
}
