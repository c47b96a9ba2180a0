package blocklist

import (
	"context"
	"fmt"
)

// Source fills a [Builder] with blocklist entries.
type Source interface {
	// Fill adds all entries of the source to b.  Entries that cannot be
	// normalized must be skipped.  Only I/O and similar errors are returned.
	Fill(ctx context.Context, b *Builder) (err error)
}

// Build returns a new engine filled from src.  Normalization failures are not
// errors; any error returned by src is, and no engine is returned then.
func Build(ctx context.Context, src Source) (e *Engine, err error) {
	b := NewBuilder()
	err = src.Fill(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("building engine: %w", err)
	}

	return b.Engine(), nil
}

// MapSource is a [Source] backed by in-memory mappings of categories to raw
// domain and URL lines.
type MapSource struct {
	// Domains are the raw domain lines for each category.
	Domains map[Category][]string

	// URLs are the raw URL lines for each category.
	URLs map[Category][]string
}

// type check
var _ Source = (*MapSource)(nil)

// Fill implements the [Source] interface for *MapSource.  err is only returned
// if ctx is canceled.
func (s *MapSource) Fill(ctx context.Context, b *Builder) (err error) {
	for c, lines := range s.Domains {
		b.AddCategory(c)
		for _, l := range lines {
			b.AddDomain(c, l)
		}
	}

	for c, lines := range s.URLs {
		b.AddCategory(c)
		for _, l := range lines {
			b.AddURL(c, l)
		}
	}

	return ctx.Err()
}
