// Package platform holds the known identity-domain table and the blocklist of
// domains that are known to produce false-positive identity matches.
package platform

import (
	"maps"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/idna"

	"github.com/codeGROOVE-dev/shadowrecon/pkg/candidate"
)

// DefaultDomains maps canonical identity hostnames to platform labels.
var DefaultDomains = map[string]string{
	"instagram.com": "Instagram",
	"twitter.com":   "Twitter",
	"x.com":         "Twitter",
	"linkedin.com":  "LinkedIn",
	"facebook.com":  "Facebook",
	"github.com":    "GitHub",
	"youtube.com":   "Youtube",
}

// DefaultBlocklist contains gaming, fan-community, and marketplace domains
// that enumeration tools report as hits far more often than they identify anyone.
var DefaultBlocklist = []string{
	"op.gg", "fanlore.org", "fandom.com", "speedrun.com",
	"roblox.com", "3ddd.ru", "diary.ru", "scratch.mit.edu",
	"twitchtracker.com", "socialblade.com", "opensea.io",
}

// ExtractDomain returns the lowercase ASCII host of a URL with any "www." prefix
// and port removed, or "" if the URL has no host.
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	return strings.TrimPrefix(host, "www.")
}

// Catalog resolves platform labels and blocklist membership for URLs.
// A Catalog is immutable and safe for concurrent use.
type Catalog struct {
	domains   map[string]string
	blocklist []string
}

// NewCatalog builds a Catalog from a domain table and blocklist. Inputs are copied.
func NewCatalog(domains map[string]string, blocklist []string) *Catalog {
	c := &Catalog{domains: make(map[string]string, len(domains))}
	for d, label := range domains {
		d = normalizeEntry(d)
		if d == "" || label == "" {
			continue
		}
		c.domains[d] = label
	}
	for _, b := range blocklist {
		if b = normalizeEntry(b); b != "" && !slices.Contains(c.blocklist, b) {
			c.blocklist = append(c.blocklist, b)
		}
	}
	return c
}

// Default returns a Catalog over DefaultDomains and DefaultBlocklist.
func Default() *Catalog {
	return NewCatalog(DefaultDomains, DefaultBlocklist)
}

// Merge returns a new Catalog with extra domains and blocklist entries applied.
// If replaceBlocklist is true the extra entries replace the existing blocklist.
func (c *Catalog) Merge(extraDomains map[string]string, extraBlocked []string, replaceBlocklist bool) *Catalog {
	domains := maps.Clone(c.domains)
	if domains == nil {
		domains = make(map[string]string, len(extraDomains))
	}
	maps.Copy(domains, extraDomains)

	blocked := slices.Clone(c.blocklist)
	if replaceBlocklist {
		blocked = nil
	}
	blocked = append(blocked, extraBlocked...)
	return NewCatalog(domains, blocked)
}

// Lookup returns the platform label for a URL whose domain is catalogued.
func (c *Catalog) Lookup(rawURL string) (string, bool) {
	label, ok := c.domains[ExtractDomain(rawURL)]
	return label, ok
}

// Blocked reports whether the URL's domain contains any blocklist entry.
func (c *Catalog) Blocked(rawURL string) bool {
	domain := ExtractDomain(rawURL)
	if domain == "" {
		return false
	}
	for _, b := range c.blocklist {
		if strings.Contains(domain, b) {
			return true
		}
	}
	return false
}

// Domains returns a copy of the domain table.
func (c *Catalog) Domains() map[string]string {
	return maps.Clone(c.domains)
}

// Blocklist returns a copy of the blocklist.
func (c *Catalog) Blocklist() []string {
	return slices.Clone(c.blocklist)
}

// Filter splits candidates into those kept and those whose URL is blocked.
func (c *Catalog) Filter(cands []candidate.Candidate) (kept, dropped []candidate.Candidate) {
	for _, cand := range cands {
		if c.Blocked(cand.URL) {
			dropped = append(dropped, cand)
			continue
		}
		kept = append(kept, cand)
	}
	return kept, dropped
}

// normalizeEntry accepts bare domains as well as URLs written into config files.
func normalizeEntry(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.Contains(s, "://") {
		return ExtractDomain(s)
	}
	s = strings.TrimSuffix(s, "/")
	return strings.TrimPrefix(s, "www.")
}
