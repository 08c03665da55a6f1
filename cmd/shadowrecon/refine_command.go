package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/shadowrecon/pkg/booster"
	"github.com/codeGROOVE-dev/shadowrecon/pkg/config"
	"github.com/codeGROOVE-dev/shadowrecon/pkg/metrics"
	"github.com/codeGROOVE-dev/shadowrecon/pkg/refine"
)

type refineFlags struct {
	target       string
	enumeration  string
	search       string
	output       string
	metricsFile  string
	noClassifier bool
	table        bool
}

func newRefineCommand(ctx *commandContext) *cobra.Command {
	var flags refineFlags

	cmd := &cobra.Command{
		Use:   "refine",
		Short: "Merge, filter, and rank candidates from discovery reports",
		Long: `Reads the username-enumeration report and the web-search report for a
target, drops blocklisted domains, confirms unknown domains with the
zero-shot classifier, and writes the ranked candidate list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			in, err := resolveInputs(cfg, flags)
			if err != nil {
				return err
			}

			logger := ctx.newLogger(cfg, cmd.ErrOrStderr()).With("run", uuid.NewString())

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			m := metrics.New()
			opts := []refine.Option{
				refine.WithLogger(logger),
				refine.WithCatalog(cfg.Catalog()),
				refine.WithPolicy(cfg.Policy()),
				refine.WithMetrics(m),
			}

			b, closeCache := newBooster(cfg, logger, m, cfg.Classifier.Enabled && !flags.noClassifier)
			defer closeCache()
			if b.Enabled() {
				opts = append(opts, refine.WithBooster(b))
			} else {
				logger.InfoContext(signalCtx, "classifier disabled, unknown domains will be dropped")
			}

			rep, err := refine.Run(signalCtx, in, opts...)
			if err != nil {
				return err
			}

			metricsFile := flags.metricsFile
			if metricsFile == "" {
				metricsFile = cfg.Paths.MetricsFile
			}
			if metricsFile != "" {
				if err := m.WriteTextfile(metricsFile); err != nil {
					logger.WarnContext(signalCtx, "failed to write metrics", "path", metricsFile, "error", err)
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %d candidates to %s\n", len(rep.Candidates), in.Output)
			if flags.table || isTerminal(out) {
				if len(rep.Candidates) > 0 {
					fmt.Fprintln(out, renderCandidates(rep.Candidates, isTerminal(out)))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.target, "target", "t", "", "Target name; derives report paths under paths.output_root")
	cmd.Flags().StringVar(&flags.enumeration, "enumeration", "", "Username-enumeration report (JSON or NDJSON)")
	cmd.Flags().StringVar(&flags.search, "search", "", "Web-search report (JSON or NDJSON)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Destination for the ranked candidate list")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	cmd.Flags().BoolVar(&flags.noClassifier, "no-classifier", false, "Skip the remote classifier; only classifier.verdicts can confirm unknown domains")
	cmd.Flags().BoolVar(&flags.table, "table", false, "Print the ranked candidates as a table")
	return cmd
}

// resolveInputs applies explicit flags over target-derived paths over config paths.
func resolveInputs(cfg *config.Config, flags refineFlags) (refine.Inputs, error) {
	in := refine.Inputs{
		Enumeration: cfg.Paths.Enumeration,
		Search:      cfg.Paths.Search,
		Output:      cfg.Paths.Output,
	}
	if target := strings.TrimSpace(flags.target); target != "" {
		if strings.ContainsAny(target, `/\`) || target == "." || target == ".." {
			return refine.Inputs{}, fmt.Errorf("invalid target %q", target)
		}
		in.Enumeration, in.Search, in.Output = cfg.TargetPaths(target)
	}
	if flags.enumeration != "" {
		in.Enumeration = flags.enumeration
	}
	if flags.search != "" {
		in.Search = flags.search
	}
	if flags.output != "" {
		in.Output = flags.output
	}

	var missing []string
	if in.Enumeration == "" && in.Search == "" {
		missing = append(missing, "--enumeration or --search")
	}
	if in.Output == "" {
		missing = append(missing, "--output")
	}
	if len(missing) > 0 {
		return refine.Inputs{}, errors.New("missing " + strings.Join(missing, " and ") + " (or --target)")
	}
	return in, nil
}

// newBooster wires the HTTP classifier behind the on-disk verdict cache, with
// configured fixed verdicts answering first. With remote off, only the fixed
// verdicts remain; with neither, it returns a nil Booster, which is disabled.
// The returned func closes the cache.
func newBooster(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics, remote bool) (*booster.Booster, func()) {
	var classifier booster.Classifier
	closeCache := func() {}

	if remote {
		classifier = booster.NewHTTPClassifier(cfg.Classifier.Endpoint,
			booster.WithToken(cfg.ClassifierToken()),
			booster.WithClientLogger(logger))

		if ttl := cfg.CacheTTL(); ttl > 0 {
			cache, err := booster.OpenCache(cfg.Classifier.CacheDir, ttl)
			if err != nil {
				logger.Warn("failed to open verdict cache, continuing without cache", "error", err)
			} else {
				classifier = booster.NewCachedClassifier(classifier, cache, logger)
				closeCache = func() {
					if err := cache.Close(); err != nil {
						logger.Warn("failed to close verdict cache", "error", err)
					}
				}
			}
		}
	}

	if fixed := cfg.FixedVerdicts(); len(fixed) > 0 {
		if !remote {
			logger.Info("remote classifier off, answering from configured verdicts", "verdicts", len(fixed))
		}
		classifier = booster.Override(booster.NewStaticClassifier(fixed), classifier)
	}
	if classifier == nil {
		return nil, closeCache
	}

	return booster.New(classifier,
		booster.WithLogger(logger),
		booster.WithMetrics(m),
		booster.WithTimeout(cfg.ClassifierTimeout()),
		booster.WithMinInterval(cfg.ClassifierMinInterval())), closeCache
}
