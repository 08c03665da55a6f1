package normalize

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/shadowrecon/pkg/candidate"
	"github.com/codeGROOVE-dev/shadowrecon/pkg/platform"
	"github.com/codeGROOVE-dev/shadowrecon/pkg/source"
)

var discard = slog.New(slog.DiscardHandler)

func TestEnumeration(t *testing.T) {
	results := []source.SiteResult{
		{Site: "GitHub", Status: "Claimed", URL: "https://github.com/alice", Raw: json.RawMessage(`{"e":1}`), Shape: source.ShapeEntry},
		{Site: "Keybase", Status: "Claimed", URL: "https://keybase.io/alice", Raw: json.RawMessage(`{"e":2}`), Shape: source.ShapeEntry},
		{Site: "Instagram", Status: "found", URL: "https://www.instagram.com/alice", Raw: json.RawMessage(`{"e":3}`), Shape: source.ShapeSites},
		{Site: "Reddit", Status: "Available", URL: "https://reddit.com/u/alice", Shape: source.ShapeEntry},
		{Site: "Nowhere", Status: "Claimed", URL: "", Shape: source.ShapeEntry},
		{Site: "Relative", Status: "Claimed", URL: "/users/alice", Shape: source.ShapeEntry},
	}

	got := Enumeration(results, platform.Default(), discard)
	want := []candidate.Candidate{
		{Platform: "GitHub", URL: "https://github.com/alice", Evidence: json.RawMessage(`{"e":1}`), Confidence: 0.8, Origin: candidate.OriginEnumeration},
		{Platform: "Keybase", URL: "https://keybase.io/alice", Evidence: json.RawMessage(`{"e":2}`), Confidence: 0.8, Origin: candidate.OriginEnumeration},
		{Platform: "Instagram", URL: "https://www.instagram.com/alice", Evidence: json.RawMessage(`{"e":3}`), Confidence: 0.8, Origin: candidate.OriginEnumeration},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Enumeration() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearch(t *testing.T) {
	results := []source.SearchResult{
		{Title: "Alice", URL: "https://twitter.com/alice", Snippet: "tweets", Raw: json.RawMessage(`{"i":0}`)},
		{Title: "No url", URL: ""},
		{Title: "Blog", URL: "https://alice.dev/about", Snippet: "my page", Raw: json.RawMessage(`{"i":2}`)},
		{Title: "Broken", URL: "alice.dev"},
		{Title: "GitHub", URL: "https://www.github.com/alice", Raw: json.RawMessage(`{"i":4}`)},
	}

	leads := Search(results, platform.Default(), discard)
	if len(leads) != 3 {
		t.Fatalf("Search() = %d leads, want 3", len(leads))
	}

	if !leads[0].Resolved || leads[0].Candidate.Platform != "Twitter" || leads[0].Candidate.Confidence != 1.0 {
		t.Errorf("leads[0] = %+v, want resolved Twitter at 1.0", leads[0])
	}
	if leads[0].Candidate.Origin != candidate.OriginSearch {
		t.Errorf("leads[0] origin = %q", leads[0].Candidate.Origin)
	}
	if leads[1].Resolved {
		t.Errorf("leads[1] should be unresolved: %+v", leads[1])
	}
	if want := "Title: Blog. Snippet: my page"; leads[1].Text != want {
		t.Errorf("leads[1].Text = %q, want %q", leads[1].Text, want)
	}
	if !leads[2].Resolved || leads[2].Candidate.Platform != "GitHub" {
		t.Errorf("leads[2] = %+v, want resolved GitHub", leads[2])
	}
}

func TestBoosted(t *testing.T) {
	lead := Lead{URL: "https://alice.dev/about", Evidence: []byte(`{"title":"Blog"}`)}
	got, err := Boosted(lead)
	if err != nil {
		t.Fatalf("Boosted() failed: %v", err)
	}
	want := candidate.Candidate{
		Platform:   "Other",
		URL:        "https://alice.dev/about",
		Evidence:   json.RawMessage(`{"title":"Blog"}`),
		Confidence: 0.9,
		Origin:     candidate.OriginSearch,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Boosted() mismatch (-want +got):\n%s", diff)
	}

	if _, err := Boosted(Lead{URL: "nope"}); err == nil {
		t.Error("Boosted() with invalid URL should fail")
	}
}
