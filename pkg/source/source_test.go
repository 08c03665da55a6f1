package source

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func recordStrings(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = string(r)
	}
	return out
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantLog string
	}{
		{
			name:    "json array",
			content: `[{"a":1}, {"b":2}]`,
			want:    []string{`{"a":1}`, `{"b":2}`},
		},
		{
			name:    "json object",
			content: `{"sites": {}}`,
			want:    []string{`{"sites": {}}`},
		},
		{
			name:    "ndjson",
			content: "{\"a\":1}\n\n{\"b\":2}\n",
			want:    []string{`{"a":1}`, `{"b":2}`},
		},
		{
			name:    "ndjson with crlf and bom",
			content: "\xEF\xBB\xBF{\"a\":1}\r\n{\"b\":2}\r\n",
			want:    []string{`{"a":1}`, `{"b":2}`},
		},
		{
			name:    "ndjson with bad line",
			content: "{\"a\":1}\n{\"broken\":\n{\"b\":2}\n",
			want:    []string{`{"a":1}`, `{"b":2}`},
			wantLog: "skipping invalid NDJSON line",
		},
		{
			name:    "empty file",
			content: "  \n",
			want:    nil,
			wantLog: "report is empty",
		},
		{
			name:    "garbage",
			content: "not json at all",
			want:    nil,
			wantLog: "report has no parseable content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			path := writeFile(t, "report.json", tt.content)
			got := Load(path, testLogger(&buf))
			var gotStrs []string
			if got != nil {
				gotStrs = recordStrings(got)
			}
			if diff := cmp.Diff(tt.want, gotStrs); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
			if tt.wantLog != "" && !strings.Contains(buf.String(), tt.wantLog) {
				t.Errorf("log missing %q, got:\n%s", tt.wantLog, buf.String())
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	var buf bytes.Buffer
	got := Load(filepath.Join(t.TempDir(), "missing.json"), testLogger(&buf))
	if len(got) != 0 {
		t.Errorf("Load(missing) = %v, want empty", got)
	}
	if !strings.Contains(buf.String(), "failed to load report") {
		t.Errorf("expected diagnostic, got:\n%s", buf.String())
	}
}

func TestLoadContextCanceled(t *testing.T) {
	path := writeFile(t, "r.ndjson", "{\"a\":1}\n{\"b\":2}\n{\"c\"\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if got := LoadContext(ctx, path, testLogger(&buf)); len(got) != 0 {
		t.Errorf("LoadContext(canceled) = %d records, want 0", len(got))
	}
}

func TestLoadPair(t *testing.T) {
	enumPath := writeFile(t, "enum.json", `{"sites":{"GitHub":{"status":"found","url":"https://github.com/alice"}}}`)
	searchPath := writeFile(t, "search.json", `[{"title":"a","url":"https://x.com/a","snippet":""}]`)

	enum, search := LoadPair(context.Background(), enumPath, searchPath, slog.New(slog.DiscardHandler))
	if len(enum) != 1 || len(search) != 1 {
		t.Fatalf("LoadPair() = %d enum, %d search records, want 1 and 1", len(enum), len(search))
	}
}

func TestParseEnumerationEntries(t *testing.T) {
	records := []Record{
		Record(`{"site":{"name":"GH"},"status":{"status":"Claimed","url":"https://github.com/alice","site_name":"GitHub"}}`),
		Record(`{"site":{"name":"Reddit"},"status":{"status":"Available","url":"https://reddit.com/u/alice"}}`),
		Record(`{"site":"Gitee","status":{"status":"Claimed","url":""}}`),
		Record(`{"status":"Claimed"}`),
		Record(`[1,2,3]`),
		Record(`{"unrelated":true}`),
	}

	got := ParseEnumeration(records, slog.New(slog.DiscardHandler))
	want := []SiteResult{
		{Site: "GitHub", Status: "Claimed", URL: "https://github.com/alice", Shape: ShapeEntry},
		{Site: "Reddit", Status: "Available", URL: "https://reddit.com/u/alice", Shape: ShapeEntry},
		{Site: "Gitee", Status: "Claimed", URL: "", Shape: ShapeEntry},
		{Site: "Unknown", Status: "", URL: "", Shape: ShapeEntry},
	}
	if diff := cmp.Diff(want, got, cmp.FilterPath(func(p cmp.Path) bool {
		return p.Last().String() == ".Raw"
	}, cmp.Ignore())); diff != "" {
		t.Errorf("ParseEnumeration() mismatch (-want +got):\n%s", diff)
	}

	hits := 0
	for _, r := range got {
		if r.Hit() {
			hits++
		}
	}
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
	if string(got[0].Raw) != string(records[0]) {
		t.Errorf("entry Raw = %s, want whole record", got[0].Raw)
	}
}

func TestParseEnumerationSitesKeepsOrder(t *testing.T) {
	records := []Record{Record(`{"username":"alice","sites":{
		"Zhihu":{"status":"found","url":"https://zhihu.com/people/alice"},
		"Ask":{"status":"not found","url":"https://ask.fm/alice"},
		"Broken":"oops",
		"GitHub":{"status":"found","url":"https://github.com/alice","extra":{"ids":[1]}}
	}}`)}

	got := ParseEnumeration(records, slog.New(slog.DiscardHandler))
	var sites []string
	for _, r := range got {
		sites = append(sites, r.Site)
		if r.Shape != ShapeSites {
			t.Errorf("%s shape = %v, want sites", r.Site, r.Shape)
		}
	}
	if diff := cmp.Diff([]string{"Zhihu", "Ask", "GitHub"}, sites); diff != "" {
		t.Errorf("site order mismatch (-want +got):\n%s", diff)
	}
	if !got[0].Hit() || got[1].Hit() || !got[2].Hit() {
		t.Errorf("unexpected hit flags: %v %v %v", got[0].Hit(), got[1].Hit(), got[2].Hit())
	}
	if !strings.Contains(string(got[2].Raw), `"extra"`) {
		t.Errorf("sites Raw should be the per-site object, got %s", got[2].Raw)
	}
}

func TestSentinelIsPerShape(t *testing.T) {
	entry := SiteResult{Status: "found", URL: "https://a.example", Shape: ShapeEntry}
	sites := SiteResult{Status: "Claimed", URL: "https://a.example", Shape: ShapeSites}
	if entry.Hit() || sites.Hit() {
		t.Error("sentinels must not be interchangeable between layouts")
	}
}

func TestParseSearch(t *testing.T) {
	records := []Record{
		Record(`{"title":"Alice","url":"https://twitter.com/alice","snippet":"hi"}`),
		Record(`{"title":5,"url":"https://alice.dev"}`),
		Record(`"just a string"`),
	}
	got := ParseSearch(records, slog.New(slog.DiscardHandler))
	if len(got) != 2 {
		t.Fatalf("ParseSearch() = %d results, want 2", len(got))
	}
	if got[0].Title != "Alice" || got[0].URL != "https://twitter.com/alice" || got[0].Snippet != "hi" {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Title != "" || got[1].URL != "https://alice.dev" {
		t.Errorf("got[1] = %+v", got[1])
	}
}
