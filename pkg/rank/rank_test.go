package rank

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/shadowrecon/pkg/candidate"
)

func cand(platform, url string, score float64, origin candidate.Origin) candidate.Candidate {
	return candidate.Candidate{Platform: platform, URL: url, Confidence: score, Origin: origin}
}

func urls(cands []candidate.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.URL
	}
	return out
}

func TestMergeLastWriterWins(t *testing.T) {
	enum := []candidate.Candidate{
		{Platform: "GitHub", URL: "https://github.com/alice", Evidence: json.RawMessage(`{"from":"enum"}`), Confidence: 0.8, Origin: candidate.OriginEnumeration},
		cand("Keybase", "https://keybase.io/alice", 0.8, candidate.OriginEnumeration),
	}
	search := []candidate.Candidate{
		{Platform: "GitHub", URL: "https://github.com/alice", Evidence: json.RawMessage(`{"from":"search"}`), Confidence: 1.0, Origin: candidate.OriginSearch},
		cand("Other", "https://alice.dev", 0.9, candidate.OriginSearch),
	}

	got := Merge(LastWriterWins, enum, search)
	want := []candidate.Candidate{
		search[0],
		search[1],
		enum[1],
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeLastWriterWinsEvenWhenLowerScore(t *testing.T) {
	first := cand("GitHub", "https://github.com/alice", 1.0, candidate.OriginSearch)
	second := cand("GitHub", "https://github.com/alice", 0.8, candidate.OriginEnumeration)

	got := Merge(LastWriterWins, []candidate.Candidate{first}, []candidate.Candidate{second})
	if len(got) != 1 || got[0].Confidence != 0.8 {
		t.Errorf("Merge(LastWriterWins) = %+v, want the later 0.8 candidate", got)
	}

	got = Merge(HighestConfidence, []candidate.Candidate{first}, []candidate.Candidate{second})
	if len(got) != 1 || got[0].Confidence != 1.0 {
		t.Errorf("Merge(HighestConfidence) = %+v, want the 1.0 candidate", got)
	}
}

func TestMergeHighestConfidenceTieTakesLater(t *testing.T) {
	a := candidate.Candidate{Platform: "A", URL: "https://a.example", Confidence: 0.9}
	b := candidate.Candidate{Platform: "B", URL: "https://a.example", Confidence: 0.9}
	got := Merge(HighestConfidence, []candidate.Candidate{a, b})
	if len(got) != 1 || got[0].Platform != "B" {
		t.Errorf("Merge() = %+v, want B", got)
	}
}

func TestMergeStableOrder(t *testing.T) {
	in := []candidate.Candidate{
		cand("A", "https://a.example", 0.8, ""),
		cand("B", "https://b.example", 1.0, ""),
		cand("C", "https://c.example", 0.8, ""),
		cand("D", "https://d.example", 0.9, ""),
		cand("E", "https://e.example", 0.8, ""),
	}
	got := urls(Merge(LastWriterWins, in))
	want := []string{"https://b.example", "https://d.example", "https://a.example", "https://c.example", "https://e.example"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeDoesNotModifyInput(t *testing.T) {
	in := []candidate.Candidate{
		cand("A", "https://a.example", 0.8, ""),
		cand("B", "https://b.example", 1.0, ""),
	}
	snapshot := append([]candidate.Candidate(nil), in...)
	_ = Merge(LastWriterWins, in, in)
	if diff := cmp.Diff(snapshot, in); diff != "" {
		t.Errorf("input modified (-before +after):\n%s", diff)
	}
}

func TestMergeProperties(t *testing.T) {
	var set []candidate.Candidate
	for i := range 40 {
		set = append(set, cand("P", fmt.Sprintf("https://site%d.example/u", i%13), float64(i%5)/4, ""))
	}

	for _, policy := range []Policy{LastWriterWins, HighestConfidence} {
		t.Run(policy.String(), func(t *testing.T) {
			got := Merge(policy, set)

			seen := map[string]bool{}
			for i, c := range got {
				if seen[c.URL] {
					t.Errorf("duplicate URL %s", c.URL)
				}
				seen[c.URL] = true
				if c.Confidence < 0 || c.Confidence > 1 {
					t.Errorf("confidence %v out of range", c.Confidence)
				}
				if i > 0 && got[i-1].Confidence < c.Confidence {
					t.Errorf("not sorted at %d", i)
				}
			}
			if len(got) != 13 {
				t.Errorf("len = %d, want 13", len(got))
			}

			// Merging the result with itself is a no-op.
			again := Merge(policy, got, got)
			if diff := cmp.Diff(got, again); diff != "" {
				t.Errorf("not idempotent (-first +again):\n%s", diff)
			}

			// Identical input yields identical output.
			if diff := cmp.Diff(got, Merge(policy, set)); diff != "" {
				t.Errorf("not deterministic:\n%s", diff)
			}
		})
	}
}

func TestDuplicates(t *testing.T) {
	a := []candidate.Candidate{cand("A", "https://a.example", 1, ""), cand("A", "https://a.example", 1, "")}
	b := []candidate.Candidate{cand("A", "https://a.example", 1, ""), cand("B", "https://b.example", 1, "")}
	if got := Duplicates(a, b); got != 2 {
		t.Errorf("Duplicates() = %d, want 2", got)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", LastWriterWins, false},
		{"last-writer-wins", LastWriterWins, false},
		{"Highest-Confidence", HighestConfidence, false},
		{"max", HighestConfidence, false},
		{"average", LastWriterWins, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, %v; want %v, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}
