package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/codeGROOVE-dev/shadowrecon/pkg/config"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, _, _, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

// newLogger builds the diagnostics sink for a command. -v overrides the
// configured level.
func (c *commandContext) newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := cfg.LogLevel()
	if c.verbose != nil && *c.verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
