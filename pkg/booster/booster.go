// Package booster confirms candidates on uncatalogued domains with a zero-shot
// text classifier. The classifier is an external service; this package owns
// the label set, the acceptance threshold, and the failure policy.
package booster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/codeGROOVE-dev/shadowrecon/pkg/metrics"
)

// ProfileLabel is the label that confirms a social profile.
const ProfileLabel = "social media profile"

// Threshold is the score a ProfileLabel verdict must exceed.
const Threshold = 0.8

// DefaultTimeout bounds a single classifier call.
const DefaultTimeout = 30 * time.Second

// Labels is the candidate label set sent with every classification.
var Labels = []string{ProfileLabel, "news article", "company website", "blog post"}

// Verdict is the top label and its score.
type Verdict struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Confirms reports whether the verdict accepts the text as a social profile.
func (v Verdict) Confirms() bool {
	return v.Label == ProfileLabel && v.Score > Threshold
}

// Classifier performs zero-shot classification of text against labels.
type Classifier interface {
	Classify(ctx context.Context, text string, labels []string) (Verdict, error)
}

// Booster applies the confirmation policy around a Classifier.
// A Booster is safe for concurrent use. The throttle spaces out the start of
// successive classifier calls; it does not wait for one call to finish before
// releasing the next, so calls from concurrent callers may overlap.
type Booster struct {
	classifier Classifier
	logger     *slog.Logger
	metrics    *metrics.Metrics
	throttle   *throttle
	timeout    time.Duration
}

// Option configures a Booster.
type Option func(*config)

type config struct {
	logger      *slog.Logger
	metrics     *metrics.Metrics
	timeout     time.Duration
	minInterval time.Duration
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMetrics records classifier outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithTimeout bounds each classifier call. Expiry counts as "not confirmed".
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithMinInterval enforces a minimum delay between consecutive classifier calls.
func WithMinInterval(d time.Duration) Option {
	return func(c *config) { c.minInterval = d }
}

// New creates a Booster. A nil classifier yields a Booster that confirms nothing.
func New(c Classifier, opts ...Option) *Booster {
	cfg := &config{logger: slog.Default(), timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.timeout <= 0 {
		cfg.timeout = DefaultTimeout
	}
	return &Booster{
		classifier: c,
		logger:     cfg.logger,
		metrics:    cfg.metrics,
		throttle:   newThrottle(cfg.minInterval),
		timeout:    cfg.timeout,
	}
}

// Enabled reports whether a classifier is configured.
func (b *Booster) Enabled() bool {
	return b != nil && b.classifier != nil
}

// Confirm asks the classifier once whether text describes a social profile.
// Any failure, including timeout, is treated as not confirmed.
func (b *Booster) Confirm(ctx context.Context, text string) bool {
	if !b.Enabled() {
		return false
	}

	if err := b.throttle.Wait(ctx, b.logger); err != nil {
		b.record(metrics.OutcomeFailed)
		b.logger.WarnContext(ctx, "classifier skipped", "error", err)
		return false
	}

	text = NormalizeText(text)
	v, err := b.classify(ctx, text)
	if err != nil {
		outcome := metrics.OutcomeFailed
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = metrics.OutcomeTimeout
		}
		b.record(outcome)
		b.logger.WarnContext(ctx, "classifier call failed, treating as unconfirmed", "outcome", outcome, "error", err)
		return false
	}

	ok := v.Confirms()
	if ok {
		b.record(metrics.OutcomeConfirmed)
	} else {
		b.record(metrics.OutcomeRejected)
	}
	b.logger.DebugContext(ctx, "classifier verdict", "label", v.Label, "score", v.Score, "confirmed", ok)
	return ok
}

type result struct {
	err     error
	verdict Verdict
}

// classify runs the call in its own goroutine so a classifier that ignores
// its context cannot stall the pipeline past the timeout.
func (b *Booster) classify(ctx context.Context, text string) (Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("classifier panic: %v", r)}
			}
		}()
		v, err := b.classifier.Classify(ctx, text, Labels)
		ch <- result{verdict: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.verdict, r.err
	case <-ctx.Done():
		return Verdict{}, ctx.Err()
	}
}

func (b *Booster) record(outcome string) {
	if b.metrics != nil {
		b.metrics.ClassifierCall(outcome)
	}
}

// NormalizeText applies NFKC normalization, trims whitespace, and drops
// control characters other than newline and tab.
func NormalizeText(text string) string {
	text = strings.TrimSpace(norm.NFKC.String(text))
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}
