package blocklist

import (
	"github.com/ut1cat/ut1cat/internal/urlnorm"
)

// Builder accumulates the domain and URL indexes of an [Engine].  It is not
// safe for concurrent use.
type Builder struct {
	domains map[string][]Category
	urls    map[string][]Category
	cats    map[Category]*CategoryStats
}

// NewBuilder returns a new properly initialized *Builder.
func NewBuilder() (b *Builder) {
	return &Builder{
		domains: map[string][]Category{},
		urls:    map[string][]Category{},
		cats:    map[Category]*CategoryStats{},
	}
}

// AddCategory makes sure that cat is present in the statistics even if it has
// no entries.
func (b *Builder) AddCategory(cat Category) {
	b.categoryStats(cat)
}

// AddDomain normalizes raw as a domain and appends cat to its categories.  ok
// is false if raw cannot be normalized, in which case the line is counted as
// skipped.
func (b *Builder) AddDomain(cat Category, raw string) (ok bool) {
	s := b.categoryStats(cat)

	host, err := urlnorm.Domain(raw)
	if err != nil {
		s.Skipped++

		return false
	}

	b.domains[host] = append(b.domains[host], cat)
	s.Domains++

	return true
}

// AddURL normalizes raw as a URL and appends cat to its categories.  ok is
// false if raw cannot be normalized, in which case the line is counted as
// skipped.
func (b *Builder) AddURL(cat Category, raw string) (ok bool) {
	s := b.categoryStats(cat)

	key, err := urlnorm.URL(raw)
	if err != nil {
		s.Skipped++

		return false
	}

	b.urls[key] = append(b.urls[key], cat)
	s.URLs++

	return true
}

// AddSkipped counts a line of cat that could not be read as skipped.
func (b *Builder) AddSkipped(cat Category) {
	b.categoryStats(cat).Skipped++
}

// Engine returns the engine with the accumulated indexes.  b must not be used
// after calling Engine.
func (b *Builder) Engine() (e *Engine) {
	stats := &Stats{
		Categories: make(map[Category]CategoryStats, len(b.cats)),
		DomainKeys: len(b.domains),
		URLKeys:    len(b.urls),
	}

	for c, s := range b.cats {
		stats.Categories[c] = *s
		stats.Skipped += s.Skipped
	}

	e = &Engine{
		domains: b.domains,
		urls:    b.urls,
		stats:   stats,
	}

	*b = Builder{}

	return e
}

// categoryStats returns the statistics for cat, creating them if necessary.
func (b *Builder) categoryStats(cat Category) (s *CategoryStats) {
	s, ok := b.cats[cat]
	if !ok {
		s = &CategoryStats{}
		b.cats[cat] = s
	}

	return s
}

// Stats are the statistics of an engine build.
type Stats struct {
	// Categories are the per-category statistics.
	Categories map[Category]CategoryStats `json:"categories"`

	// DomainKeys is the number of unique keys in the domain index.
	DomainKeys int `json:"domain_keys"`

	// URLKeys is the number of unique keys in the URL index.
	URLKeys int `json:"url_keys"`

	// Skipped is the total number of lines that could not be normalized or
	// were too long.
	Skipped int `json:"skipped"`
}

// CategoryStats are the statistics of a single category.
type CategoryStats struct {
	// Domains is the number of accepted domain lines.
	Domains int `json:"domains"`

	// URLs is the number of accepted URL lines.
	URLs int `json:"urls"`

	// Skipped is the number of lines that could not be normalized or were
	// too long.
	Skipped int `json:"skipped"`
}
