package blocklist

import (
	"iter"
	"net/netip"
	"slices"
	"strings"

	"github.com/ut1cat/ut1cat/internal/urlnorm"
)

// Engine is an immutable pair of indexes: domains to categories and canonical
// URLs to categories.  It is safe for concurrent use.  A nil *Engine matches
// nothing.
type Engine struct {
	domains map[string][]Category
	urls    map[string][]Category
	stats   *Stats
}

// NewEngine returns an engine built from the given mappings of raw domains and
// URLs to their categories.  The keys are normalized, and the ones that can't
// be are skipped.
func NewEngine(domains, urls map[string][]Category) (e *Engine) {
	b := NewBuilder()
	for raw, cats := range domains {
		for _, c := range cats {
			b.AddDomain(c, raw)
		}
	}

	for raw, cats := range urls {
		for _, c := range cats {
			b.AddURL(c, raw)
		}
	}

	return b.Engine()
}

// Detect returns the sorted set of categories that match candidate, or nil if
// there are none.  candidate is normalized both as a domain, which is then
// looked up along with its ancestors, and as a URL.  A normalization failure
// of one form does not prevent the lookup of the other.  The returned slice
// must not be modified.
func (e *Engine) Detect(candidate string) (cats []Category) {
	if e == nil {
		return nil
	}

	host, key, domainErr, urlErr := urlnorm.Both(candidate)
	if domainErr == nil {
		cats = e.appendDomain(cats, host)
	}

	if urlErr == nil {
		cats = append(cats, e.urls[key]...)
	}

	if len(cats) == 0 {
		return nil
	}

	slices.Sort(cats)

	return slices.Compact(cats)
}

// Match returns true if candidate matches at least one category.  Unlike
// [Engine.Detect], it returns on the first match.
func (e *Engine) Match(candidate string) (ok bool) {
	if e == nil {
		return false
	}

	host, key, domainErr, urlErr := urlnorm.Both(candidate)
	if domainErr == nil {
		for d := range lookupDomains(host) {
			if len(e.domains[d]) > 0 {
				return true
			}
		}
	}

	return urlErr == nil && len(e.urls[key]) > 0
}

// Len returns the number of keys in the domain and URL indexes.
func (e *Engine) Len() (domains, urls int) {
	if e == nil {
		return 0, 0
	}

	return len(e.domains), len(e.urls)
}

// Stats returns the statistics of the build that produced e.  The returned
// value must not be modified.
func (e *Engine) Stats() (s *Stats) {
	if e == nil {
		return &Stats{}
	}

	return e.stats
}

// appendDomain appends the categories of host and of all its ancestors to orig
// and returns the result.
func (e *Engine) appendDomain(orig []Category, host string) (cats []Category) {
	cats = orig
	for d := range lookupDomains(host) {
		cats = append(cats, e.domains[d]...)
	}

	return cats
}

// lookupDomains returns a sequence of host itself followed by its ancestors,
// from the longest to the shortest.  The top-level label alone is never
// yielded.  IP addresses have no ancestors.
func lookupDomains(host string) (seq iter.Seq[string]) {
	return func(yield func(d string) (cont bool)) {
		if !yield(host) {
			return
		}

		if _, err := netip.ParseAddr(host); err == nil {
			return
		}

		last := strings.LastIndexByte(host, '.')
		for i := range last {
			if host[i] == '.' && !yield(host[i+1:]) {
				return
			}
		}
	}
}
