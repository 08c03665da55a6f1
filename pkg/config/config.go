// Package config loads shadowrecon settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/codeGROOVE-dev/shadowrecon/pkg/booster"
	"github.com/codeGROOVE-dev/shadowrecon/pkg/platform"
	"github.com/codeGROOVE-dev/shadowrecon/pkg/rank"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all user-configurable settings.
type Config struct {
	Paths      Paths             `toml:"paths"`
	Platforms  map[string]string `toml:"platforms"`
	Blocklist  Blocklist         `toml:"blocklist"`
	Classifier Classifier        `toml:"classifier"`
	Merge      Merge             `toml:"merge"`
	Logging    Logging           `toml:"logging"`
}

// Paths locates the per-target report files.
type Paths struct {
	OutputRoot  string `toml:"output_root"`
	Enumeration string `toml:"enumeration"`
	Search      string `toml:"search"`
	Output      string `toml:"output"`
	MetricsFile string `toml:"metrics_file"`
}

// Blocklist extends or replaces the built-in domain blocklist.
type Blocklist struct {
	Domains []string `toml:"domains"`
	Replace bool     `toml:"replace"`
}

// Classifier configures the semantic booster.
type Classifier struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Token          string `toml:"token"`
	TokenEnv       string `toml:"token_env"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MinIntervalMS  int    `toml:"min_interval_ms"`
	CacheDir       string `toml:"cache_dir"`
	CacheTTLHours  int    `toml:"cache_ttl_hours"`

	// Verdicts answer for known classifier texts without a remote call.
	// They still apply when the remote classifier is disabled.
	Verdicts []FixedVerdict `toml:"verdicts,omitempty"`
}

// FixedVerdict pins the classifier answer for one text, written the way the
// booster phrases it: "Title: <title>. Snippet: <snippet>".
type FixedVerdict struct {
	Text  string  `toml:"text"`
	Label string  `toml:"label"`
	Score float64 `toml:"score"`
}

// Merge selects the duplicate resolution policy.
type Merge struct {
	Policy string `toml:"policy"`
}

// Logging configures the diagnostics sink.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Load reads the configuration at path. An empty path checks
// ./shadowrecon.toml and then the user config directory. A missing file
// yields defaults. It returns the resolved path and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolvePath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close() //nolint:errcheck // read-only

		dec := toml.NewDecoder(file)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

// DefaultPath returns the per-user config location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, "shadowrecon", "config.toml"), nil
}

func resolvePath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	if info, err := os.Stat("shadowrecon.toml"); err == nil && !info.IsDir() {
		return "shadowrecon.toml", true, nil
	}
	userPath, err := DefaultPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(userPath); err == nil && !info.IsDir() {
		return userPath, true, nil
	}
	return userPath, false, nil
}

// WriteSample writes the default configuration to path.
func WriteSample(path string) error {
	data, err := toml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// TargetPaths returns the report locations for a target under OutputRoot,
// following the layout the enumeration and search tools write.
func (c *Config) TargetPaths(target string) (enumeration, search, output string) {
	dir := filepath.Join(c.Paths.OutputRoot, target)
	return filepath.Join(dir, "report_"+target+"_ndjson.json"),
		filepath.Join(dir, "bing_result.json"),
		filepath.Join(dir, "refined_targets.json")
}

// Catalog returns the built-in platform table with configured overrides applied.
func (c *Config) Catalog() *platform.Catalog {
	return platform.Default().Merge(c.Platforms, c.Blocklist.Domains, c.Blocklist.Replace)
}

// Policy returns the configured merge policy. Validate rejects unknown names.
func (c *Config) Policy() rank.Policy {
	p, _ := rank.ParsePolicy(c.Merge.Policy) //nolint:errcheck // checked by Validate
	return p
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ClassifierToken returns the inline token, or the value of TokenEnv.
func (c *Config) ClassifierToken() string {
	if c.Classifier.Token != "" {
		return c.Classifier.Token
	}
	if c.Classifier.TokenEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(c.Classifier.TokenEnv))
}

// ClassifierTimeout bounds a single classifier call.
func (c *Config) ClassifierTimeout() time.Duration {
	return time.Duration(c.Classifier.TimeoutSeconds) * time.Second
}

// ClassifierMinInterval is the minimum delay between classifier calls.
func (c *Config) ClassifierMinInterval() time.Duration {
	return time.Duration(c.Classifier.MinIntervalMS) * time.Millisecond
}

// FixedVerdicts returns the configured verdict table keyed by text, or nil
// when none is configured. Later entries win for repeated texts.
func (c *Config) FixedVerdicts() map[string]booster.Verdict {
	if len(c.Classifier.Verdicts) == 0 {
		return nil
	}
	out := make(map[string]booster.Verdict, len(c.Classifier.Verdicts))
	for _, v := range c.Classifier.Verdicts {
		out[v.Text] = booster.Verdict{Label: v.Label, Score: v.Score}
	}
	return out
}

// CacheTTL is how long classifier verdicts are reused. Zero disables the cache.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Classifier.CacheTTLHours) * time.Hour
}

// ExpandPath resolves a leading "~" to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" || !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	if path[1] == '/' || path[1] == '\\' {
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
