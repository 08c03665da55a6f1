package platform

import (
	"testing"

	"github.com/codeGROOVE-dev/shadowrecon/pkg/candidate"
)

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.instagram.com/alice", "instagram.com"},
		{"https://GitHub.com/alice", "github.com"},
		{"http://twitter.com:8080/alice", "twitter.com"},
		{"https://m.facebook.com/alice", "m.facebook.com"},
		{"https://bücher.example/alice", "xn--bcher-kva.example"},
		{"not a url", ""},
		{"", ""},
		{"github.com/alice", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := ExtractDomain(tt.url); got != tt.want {
				t.Errorf("ExtractDomain(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	cat := Default()
	tests := []struct {
		url       string
		wantLabel string
		wantOK    bool
	}{
		{"https://instagram.com/alice", "Instagram", true},
		{"https://www.instagram.com/alice", "Instagram", true},
		{"https://x.com/alice", "Twitter", true},
		{"https://github.com/alice", "GitHub", true},
		{"https://www.youtube.com/@alice", "Youtube", true},
		{"https://gist.github.com/alice", "", false},
		{"https://alice.dev", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			label, ok := cat.Lookup(tt.url)
			if label != tt.wantLabel || ok != tt.wantOK {
				t.Errorf("Lookup(%q) = (%q, %v), want (%q, %v)", tt.url, label, ok, tt.wantLabel, tt.wantOK)
			}
		})
	}
}

func TestBlocked(t *testing.T) {
	cat := Default()
	tests := []struct {
		url  string
		want bool
	}{
		{"https://fandom.com/wiki/alice", true},
		{"https://www.op.gg/summoners/alice", true},
		{"https://harrypotter.fandom.com/wiki/alice", true},
		{"https://scratch.mit.edu/users/alice", true},
		{"https://opensea.io/alice", true},
		{"https://diary.ru/~alice", true},
		{"https://github.com/alice", false},
		{"https://mit.edu/alice", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := cat.Blocked(tt.url); got != tt.want {
				t.Errorf("Blocked(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := Default()
	merged := base.Merge(
		map[string]string{"www.Mastodon.social": "Mastodon"},
		[]string{"https://www.example-market.com/"},
		false,
	)

	if label, ok := merged.Lookup("https://mastodon.social/@alice"); !ok || label != "Mastodon" {
		t.Errorf("merged Lookup = (%q, %v), want Mastodon", label, ok)
	}
	if !merged.Blocked("https://example-market.com/u/alice") {
		t.Error("merged catalog should block example-market.com")
	}
	if !merged.Blocked("https://fandom.com/wiki/alice") {
		t.Error("merged catalog should keep default blocklist")
	}
	if _, ok := base.Lookup("https://mastodon.social/@alice"); ok {
		t.Error("Merge must not modify the receiver")
	}

	replaced := base.Merge(nil, []string{"example.org"}, true)
	if replaced.Blocked("https://fandom.com/wiki/alice") {
		t.Error("replaced blocklist should not contain defaults")
	}
	if got := replaced.Blocklist(); len(got) != 1 || got[0] != "example.org" {
		t.Errorf("Blocklist() = %v, want [example.org]", got)
	}
}

func TestFilter(t *testing.T) {
	cands := []candidate.Candidate{
		{Platform: "GitHub", URL: "https://github.com/alice", Confidence: 0.8},
		{Platform: "fandom", URL: "https://fandom.com/wiki/alice", Confidence: 0.8},
		{Platform: "Other", URL: "https://alice.dev", Confidence: 0.9},
	}
	kept, dropped := Default().Filter(cands)
	if len(kept) != 2 || len(dropped) != 1 {
		t.Fatalf("Filter() kept %d dropped %d, want 2 and 1", len(kept), len(dropped))
	}
	if dropped[0].URL != "https://fandom.com/wiki/alice" {
		t.Errorf("dropped = %v", dropped[0].URL)
	}
}
