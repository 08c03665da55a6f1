// Package candidate defines the canonical identity candidate shared by every pipeline stage.
package candidate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
)

// ErrInvalid is returned when a candidate violates the data model.
var ErrInvalid = errors.New("invalid candidate")

// Origin identifies which discovery source produced a candidate.
type Origin string

// Origin constants. An empty Origin marks a legacy record.
const (
	OriginEnumeration Origin = "enumeration"
	OriginSearch      Origin = "search"
)

// Platform labels that are not taken from the domain table.
const (
	PlatformOther   = "Other"
	PlatformUnknown = "Unknown"
)

// Fixed confidence policy per evidence class.
const (
	ScoreEnumeration = 0.8 // username enumeration tools produce false positives
	ScoreKnownDomain = 1.0 // search hit on a catalogued identity domain
	ScoreBoosted     = 0.9 // unknown domain confirmed by the classifier
)

// Candidate is one piece of identity evidence about the subject.
// Values are treated as immutable once built; merging produces new values.
//
//nolint:govet // fieldalignment: field order is the output contract
type Candidate struct {
	Platform   string          `json:"platform"`         // "Instagram", "GitHub", "Other", ...
	URL        string          `json:"url"`              // Identity URL, unique in the final output
	Evidence   json.RawMessage `json:"info,omitempty"`   // Source record, preserved verbatim
	Confidence float64         `json:"score"`            // 0.0-1.0
	Origin     Origin          `json:"source,omitempty"` // Producing source, empty for legacy records
}

// New builds a validated Candidate. The evidence buffer is copied.
func New(platform, rawURL string, evidence json.RawMessage, confidence float64, origin Origin) (Candidate, error) {
	c := Candidate{
		Platform:   platform,
		URL:        strings.TrimSpace(rawURL),
		Evidence:   bytes.Clone(evidence),
		Confidence: confidence,
		Origin:     origin,
	}
	if err := c.Validate(); err != nil {
		return Candidate{}, err
	}
	return c, nil
}

// Validate checks the candidate invariants.
func (c Candidate) Validate() error {
	if c.Platform == "" {
		return fmt.Errorf("%w: empty platform for %q", ErrInvalid, c.URL)
	}
	if math.IsNaN(c.Confidence) || c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v out of range for %q", ErrInvalid, c.Confidence, c.URL)
	}
	if _, err := ParseURL(c.URL); err != nil {
		return err
	}
	return nil
}

// ParseURL parses an identity URL, requiring a scheme and a host.
func ParseURL(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("%w: empty url", ErrInvalid)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: url %q lacks scheme or host", ErrInvalid, rawURL)
	}
	return u, nil
}

// Field returns a top-level string field from the evidence blob, or "" when
// the evidence is not an object or the field is not a string.
func (c Candidate) Field(key string) string {
	if len(c.Evidence) == 0 {
		return ""
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(c.Evidence, &obj); err != nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(obj[key], &s); err != nil {
		return ""
	}
	return s
}
