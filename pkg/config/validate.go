package config

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/codeGROOVE-dev/shadowrecon/pkg/rank"
)

func (c *Config) normalize() error {
	var err error
	for _, p := range []*string{
		&c.Paths.OutputRoot, &c.Paths.Enumeration, &c.Paths.Search,
		&c.Paths.Output, &c.Paths.MetricsFile, &c.Classifier.CacheDir,
	} {
		if *p, err = ExpandPath(strings.TrimSpace(*p)); err != nil {
			return err
		}
	}
	if c.Paths.OutputRoot == "" {
		c.Paths.OutputRoot = defaultOutputRoot
	}

	c.Classifier.Endpoint = strings.TrimSpace(c.Classifier.Endpoint)
	for i := range c.Classifier.Verdicts {
		v := &c.Classifier.Verdicts[i]
		v.Text = strings.TrimSpace(v.Text)
		v.Label = strings.TrimSpace(v.Label)
	}
	c.Classifier.TokenEnv = strings.TrimSpace(c.Classifier.TokenEnv)
	c.Merge.Policy = strings.ToLower(strings.TrimSpace(c.Merge.Policy))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlatforms(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if _, err := rank.ParsePolicy(c.Merge.Policy); err != nil {
		return fmt.Errorf("%w: merge.policy: %w", ErrInvalid, err)
	}
	return c.validateLogging()
}

func (c *Config) validatePlatforms() error {
	for domain, label := range c.Platforms {
		if strings.TrimSpace(domain) == "" || strings.TrimSpace(label) == "" {
			return fmt.Errorf("%w: platforms entries need a domain and a label (got %q = %q)", ErrInvalid, domain, label)
		}
	}
	for _, d := range c.Blocklist.Domains {
		if strings.TrimSpace(d) == "" {
			return fmt.Errorf("%w: blocklist.domains contains an empty entry", ErrInvalid)
		}
	}
	return nil
}

func (c *Config) validateClassifier() error {
	cl := c.Classifier
	if cl.TimeoutSeconds < 0 || cl.MinIntervalMS < 0 || cl.CacheTTLHours < 0 {
		return fmt.Errorf("%w: classifier durations must not be negative", ErrInvalid)
	}
	for i, v := range cl.Verdicts {
		if v.Text == "" || v.Label == "" {
			return fmt.Errorf("%w: classifier.verdicts[%d] needs text and label", ErrInvalid, i)
		}
		if math.IsNaN(v.Score) || v.Score < 0 || v.Score > 1 {
			return fmt.Errorf("%w: classifier.verdicts[%d] score %v outside 0-1", ErrInvalid, i, v.Score)
		}
	}
	if !cl.Enabled {
		return nil
	}
	u, err := url.Parse(cl.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: classifier.endpoint must be an http(s) URL, got %q", ErrInvalid, cl.Endpoint)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level must be debug, info, warn, or error", ErrInvalid)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: logging.format must be text or json", ErrInvalid)
	}
	return nil
}
