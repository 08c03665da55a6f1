// Package source loads and decodes the reports produced by external discovery
// tools: a username-enumeration report and a web-search report.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"
)

// Record is one loosely-typed JSON value read from a report.
type Record = json.RawMessage

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads a report that is either a single JSON document or newline-delimited JSON.
// It never fails: unreadable or empty files yield no records, and malformed NDJSON
// lines are skipped. Problems are reported to logger.
func Load(path string, logger *slog.Logger) []Record {
	return LoadContext(context.Background(), path, logger)
}

// LoadContext is Load with cancellation checked between NDJSON lines.
func LoadContext(ctx context.Context, path string, logger *slog.Logger) []Record {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.WarnContext(ctx, "failed to load report", "path", path, "error", err)
		return nil
	}

	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(data) == 0 {
		logger.WarnContext(ctx, "report is empty", "path", path)
		return nil
	}

	if json.Valid(data) {
		return splitDocument(data)
	}

	var records []Record
	for n, line := range bytes.Split(data, []byte("\n")) {
		if ctx.Err() != nil {
			logger.WarnContext(ctx, "report load interrupted", "path", path, "line", n+1, "error", ctx.Err())
			break
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			logger.WarnContext(ctx, "skipping invalid NDJSON line", "path", path, "line", n+1, "bytes", len(line))
			continue
		}
		records = append(records, Record(line))
	}

	if len(records) == 0 {
		logger.WarnContext(ctx, "report has no parseable content", "path", path)
	} else {
		logger.DebugContext(ctx, "loaded NDJSON report", "path", path, "records", len(records))
	}
	return records
}

// splitDocument turns a top-level array into one record per element.
// Any other JSON value is a single record.
func splitDocument(data []byte) []Record {
	if data[0] != '[' {
		return []Record{Record(data)}
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return []Record{Record(data)}
	}
	return elems
}

// LoadPair loads the enumeration and search reports concurrently.
func LoadPair(ctx context.Context, enumPath, searchPath string, logger *slog.Logger) (enum, search []Record) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		enum = LoadContext(ctx, enumPath, logger)
		return nil
	})
	g.Go(func() error {
		search = LoadContext(ctx, searchPath, logger)
		return nil
	})
	_ = g.Wait() //nolint:errcheck // loaders report problems as diagnostics, never as errors
	return enum, search
}
