package rescache

import (
	"fmt"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/bluele/gcache"
)

// LRUConfig is the configuration structure for an [LRU] cache.
type LRUConfig struct {
	// Count is the maximum number of items in the cache.  It must be positive.
	Count int
}

// LRU is an [Interface] implementation backed by a gcache LRU cache.
type LRU[K comparable, T any] struct {
	cache gcache.Cache
}

// NewLRU returns a new initialized LRU cache.  c must not be nil.
func NewLRU[K comparable, T any](c *LRUConfig) (cache *LRU[K, T]) {
	return &LRU[K, T]{
		cache: gcache.New(c.Count).LRU().Build(),
	}
}

// type check
var _ Interface[string, any] = (*LRU[string, any])(nil)

// Set implements the [Interface] interface for *LRU.
func (c *LRU[K, T]) Set(key K, val T) {
	err := c.cache.Set(key, val)
	if err != nil {
		// Shouldn't happen, since there is no serialization function.
		panic(fmt.Errorf("rescache: setting cache item: %w", err))
	}
}

// Get implements the [Interface] interface for *LRU.
func (c *LRU[K, T]) Get(key K) (val T, ok bool) {
	v, err := c.cache.Get(key)
	if err != nil {
		if !errors.Is(err, gcache.KeyNotFoundError) {
			// Shouldn't happen, since there is no loader function.
			panic(fmt.Errorf("rescache: getting cache item: %w", err))
		}

		return val, false
	}

	// T may be an interface or a slice type, so check v against nil to prevent
	// the type assertion below from panicking.
	if v == nil {
		return val, true
	}

	return v.(T), true
}

// Clear implements the [Interface] interface for *LRU.
func (c *LRU[K, T]) Clear() {
	c.cache.Purge()
}

// Len implements the [Interface] interface for *LRU.
func (c *LRU[K, T]) Len() (n int) {
	const checkExpired = false

	return c.cache.Len(checkExpired)
}
