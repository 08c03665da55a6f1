package booster

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultEndpoint is the hosted zero-shot inference endpoint for bart-large-mnli.
const DefaultEndpoint = "https://api-inference.huggingface.co/models/facebook/bart-large-mnli"

// UserAgent identifies classifier requests.
const UserAgent = "shadowrecon/1 (+https://github.com/codeGROOVE-dev/shadowrecon)"

const maxResponseBytes = 1 << 20

// HTTPError represents a non-200 classifier response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// HTTPClassifier calls a Hugging Face style zero-shot classification endpoint.
type HTTPClassifier struct {
	client   *http.Client
	logger   *slog.Logger
	endpoint string
	token    string
}

// ClientOption configures an HTTPClassifier.
type ClientOption func(*clientConfig)

type clientConfig struct {
	client *http.Client
	logger *slog.Logger
	token  string
}

// WithToken sets the bearer token sent with each request.
func WithToken(token string) ClientOption {
	return func(c *clientConfig) { c.token = token }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) { c.client = client }
}

// WithClientLogger sets a custom logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) { c.logger = logger }
}

// NewHTTPClassifier creates a classifier for endpoint, or DefaultEndpoint if empty.
func NewHTTPClassifier(endpoint string, opts ...ClientOption) *HTTPClassifier {
	cfg := &clientConfig{
		client: &http.Client{Timeout: 60 * time.Second},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &HTTPClassifier{
		client:   cfg.client,
		logger:   cfg.logger,
		endpoint: endpoint,
		token:    cfg.token,
	}
}

type zeroShotRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters zeroShotParams `json:"parameters"`
}

type zeroShotParams struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

// Classify sends one classification request. It never retries.
func (c *HTTPClassifier) Classify(ctx context.Context, text string, labels []string) (Verdict, error) {
	payload, err := json.Marshal(zeroShotRequest{
		Inputs:     text,
		Parameters: zeroShotParams{CandidateLabels: labels},
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Verdict{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.DebugContext(ctx, "classifying", "endpoint", c.endpoint, "bytes", len(payload))

	resp, err := c.client.Do(req)
	if err != nil {
		return Verdict{}, err
	}
	defer resp.Body.Close() //nolint:errcheck // intentional

	if resp.StatusCode != http.StatusOK {
		return Verdict{}, &HTTPError{StatusCode: resp.StatusCode, URL: c.endpoint}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Verdict{}, fmt.Errorf("read response: %w", err)
	}
	return parseVerdict(body)
}

// parseVerdict accepts {"labels": [...], "scores": [...]} as well as
// [{"label": ..., "score": ...}] (optionally nested one level) and returns
// the highest-scoring label. The first label wins ties.
func parseVerdict(body []byte) (Verdict, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Verdict{}, errors.New("empty classifier response")
	}

	var pairs []Verdict
	switch body[0] {
	case '{':
		var resp struct {
			Labels []string  `json:"labels"`
			Scores []float64 `json:"scores"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return Verdict{}, fmt.Errorf("parse response: %w", err)
		}
		if len(resp.Labels) != len(resp.Scores) {
			return Verdict{}, fmt.Errorf("parse response: %d labels but %d scores", len(resp.Labels), len(resp.Scores))
		}
		for i, l := range resp.Labels {
			pairs = append(pairs, Verdict{Label: l, Score: resp.Scores[i]})
		}
	case '[':
		if err := json.Unmarshal(body, &pairs); err != nil {
			var nested [][]Verdict
			if nerr := json.Unmarshal(body, &nested); nerr != nil || len(nested) == 0 {
				return Verdict{}, fmt.Errorf("parse response: %w", err)
			}
			pairs = nested[0]
		}
	default:
		return Verdict{}, fmt.Errorf("parse response: unexpected %q", body[0])
	}

	if len(pairs) == 0 {
		return Verdict{}, errors.New("classifier returned no labels")
	}
	best := pairs[0]
	for _, p := range pairs[1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	return best, nil
}
