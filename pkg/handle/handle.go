// Package handle finds the subject's username on a given platform in a ranked
// candidate list, the way downstream per-platform extractors pick their target.
package handle

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/codeGROOVE-dev/shadowrecon/pkg/candidate"
	"github.com/codeGROOVE-dev/shadowrecon/pkg/platform"
)

type rules struct {
	domains  []string
	pattern  *regexp.Regexp // validates a username
	nonUsers map[string]bool
}

var platforms = map[string]rules{
	"instagram": {
		domains: []string{"instagram.com"},
		pattern: regexp.MustCompile(`^[A-Za-z0-9_.]+$`),
		nonUsers: map[string]bool{
			"p": true, "reel": true, "reels": true, "stories": true,
			"explore": true, "direct": true, "accounts": true,
			"about": true, "legal": true, "privacy": true,
			"terms": true, "api": true, "developer": true,
		},
	},
	"twitter": {
		domains: []string{"twitter.com", "x.com"},
		pattern: regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`),
		nonUsers: map[string]bool{
			"home": true, "explore": true, "search": true, "i": true,
			"intent": true, "hashtag": true, "settings": true, "share": true,
			"login": true, "signup": true, "notifications": true, "messages": true,
			"tos": true, "privacy": true,
		},
	},
	"github": {
		domains: []string{"github.com"},
		pattern: regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})$`),
		nonUsers: map[string]bool{
			"features": true, "security": true, "enterprise": true, "team": true,
			"marketplace": true, "sponsors": true, "topics": true, "trending": true,
			"collections": true, "orgs": true, "solutions": true, "resources": true,
			"login": true, "join": true, "pricing": true, "about": true,
			"explore": true, "new": true, "settings": true, "notifications": true,
			"issues": true, "pulls": true, "codespaces": true, "search": true,
			"site": true, "apps": true,
		},
	},
}

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_.]+)`)

// Platforms lists the platform names Locate understands.
func Platforms() []string {
	names := make([]string, 0, len(platforms))
	for name := range platforms {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Locate walks cands in rank order and returns the first username found for
// platformName: either the first path segment of a profile URL on the
// platform's domain, or an @mention in the evidence title or snippet.
func Locate(cands []candidate.Candidate, platformName string) (string, error) {
	r, ok := platforms[strings.ToLower(platformName)]
	if !ok {
		return "", fmt.Errorf("unsupported platform %q (want one of %s)", platformName, strings.Join(Platforms(), ", "))
	}

	for _, c := range cands {
		if name := r.fromURL(c.URL); name != "" {
			return name, nil
		}
		for _, key := range []string{"title", "snippet"} {
			if m := mentionPattern.FindStringSubmatch(c.Field(key)); m != nil {
				if name := strings.TrimRight(m[1], "."); r.pattern.MatchString(name) {
					return name, nil
				}
			}
		}
	}
	return "", nil
}

func (r rules) fromURL(rawURL string) string {
	if !slices.Contains(r.domains, platform.ExtractDomain(rawURL)) {
		return ""
	}
	u, err := candidate.ParseURL(rawURL)
	if err != nil {
		return ""
	}
	first, _, _ := strings.Cut(strings.Trim(u.Path, "/"), "/")
	first = strings.TrimPrefix(first, "@")
	if first == "" || r.nonUsers[strings.ToLower(first)] || !r.pattern.MatchString(first) {
		return ""
	}
	return first
}
