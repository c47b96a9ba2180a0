// Package rescache contains the interfaces and implementations of caches for
// categorization results.
package rescache

// Interface is a cache of values of type T by keys of type K.  All methods
// must be safe for concurrent use.
type Interface[K, T any] interface {
	// Set sets val as the cached value for key.
	Set(key K, val T)

	// Get returns the cached value for key, if any.
	Get(key K) (val T, ok bool)

	// Clearer completely clears the cache.
	Clearer

	// Len returns the number of items in the cache.
	Len() (n int)
}

// Clearer is a partial cache interface.
type Clearer interface {
	// Clear completely clears the cache.
	Clear()
}

// Empty is an [Interface] implementation that caches nothing.
type Empty[K, T any] struct{}

// type check
var _ Interface[any, any] = Empty[any, any]{}

// Set implements the [Interface] interface for Empty.
func (Empty[K, T]) Set(_ K, _ T) {}

// Get implements the [Interface] interface for Empty.  ok is always false.
func (Empty[K, T]) Get(_ K) (val T, ok bool) {
	return val, false
}

// Clear implements the [Interface] interface for Empty.
func (Empty[K, T]) Clear() {}

// Len implements the [Interface] interface for Empty.  n is always zero.
func (Empty[K, T]) Len() (n int) {
	return 0
}

// New returns an LRU cache with room for count items or an [Empty] cache if
// count is zero.
func New[K comparable, T any](count int) (c Interface[K, T]) {
	if count <= 0 {
		return Empty[K, T]{}
	}

	return NewLRU[K, T](&LRUConfig{
		Count: count,
	})
}
