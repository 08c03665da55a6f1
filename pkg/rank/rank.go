// Package rank merges candidates from all sources, removes duplicate identity
// URLs, and orders the result by confidence.
package rank

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/codeGROOVE-dev/shadowrecon/pkg/candidate"
)

// Policy decides which candidate survives when two share an identity URL.
type Policy int

const (
	// LastWriterWins keeps the candidate seen last. Enumeration candidates are
	// merged before search candidates, so search metadata wins.
	LastWriterWins Policy = iota
	// HighestConfidence keeps the higher-scoring candidate; the later one wins ties.
	HighestConfidence
)

func (p Policy) String() string {
	switch p {
	case LastWriterWins:
		return "last-writer-wins"
	case HighestConfidence:
		return "highest-confidence"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy parses a policy name as written in configuration.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last-writer-wins", "last":
		return LastWriterWins, nil
	case "highest-confidence", "max":
		return HighestConfidence, nil
	default:
		return LastWriterWins, fmt.Errorf("unknown merge policy %q", s)
	}
}

// Merge combines candidate groups in order, keeps one candidate per URL, and
// sorts by descending confidence. The sort is stable: equal scores keep the
// position at which their URL was first seen. Inputs are not modified.
func Merge(policy Policy, groups ...[]candidate.Candidate) []candidate.Candidate {
	var total int
	for _, g := range groups {
		total += len(g)
	}

	index := make(map[string]int, total)
	out := make([]candidate.Candidate, 0, total)
	for _, g := range groups {
		for _, c := range g {
			i, seen := index[c.URL]
			if !seen {
				index[c.URL] = len(out)
				out = append(out, c)
				continue
			}
			if policy.replaces(out[i], c) {
				out[i] = c
			}
		}
	}

	slices.SortStableFunc(out, func(a, b candidate.Candidate) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})
	return out
}

// Duplicates returns how many candidates Merge would discard.
func Duplicates(groups ...[]candidate.Candidate) int {
	seen := make(map[string]struct{})
	var dups int
	for _, g := range groups {
		for _, c := range g {
			if _, ok := seen[c.URL]; ok {
				dups++
				continue
			}
			seen[c.URL] = struct{}{}
		}
	}
	return dups
}

func (p Policy) replaces(existing, next candidate.Candidate) bool {
	if p == HighestConfidence {
		return next.Confidence >= existing.Confidence
	}
	return true
}
