// Package blocklist contains the multi-category matching engine for domains
// and URLs, the builder of its indexes, and the sources of blocklists.
package blocklist

import "github.com/AdguardTeam/golibs/errors"

const (
	// ErrNotADirectory is returned when the blocklist root or a category path
	// exists but is not a directory.
	ErrNotADirectory errors.Error = "not a directory"

	// ErrCategoryNotFound is returned when a category explicitly requested
	// from a [DirSource] does not exist.
	ErrCategoryNotFound errors.Error = "category not found"
)
