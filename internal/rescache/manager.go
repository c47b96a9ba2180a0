package rescache

import (
	"maps"
	"slices"
	"sync"
)

// Manager keeps caches by their IDs so that they can be cleared through the
// debug API.  All methods must be safe for concurrent use.
type Manager interface {
	// Add adds cache by id.  cache must not be nil.  An existing cache with
	// the same id is replaced.
	Add(id string, cache Clearer)

	// ClearByID clears the cache with the given id, if there is one.  ok is
	// true if the cache has been found.
	ClearByID(id string) (ok bool)

	// IDs returns the sorted IDs of all added caches.
	IDs() (ids []string)
}

// DefaultManager is the default [Manager] implementation.
type DefaultManager struct {
	mu     *sync.Mutex
	caches map[string]Clearer
}

// NewDefaultManager returns a new initialized *DefaultManager.
func NewDefaultManager() (m *DefaultManager) {
	return &DefaultManager{
		mu:     &sync.Mutex{},
		caches: map[string]Clearer{},
	}
}

// type check
var _ Manager = (*DefaultManager)(nil)

// Add implements the [Manager] interface for *DefaultManager.
func (m *DefaultManager) Add(id string, cache Clearer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.caches[id] = cache
}

// ClearByID implements the [Manager] interface for *DefaultManager.
func (m *DefaultManager) ClearByID(id string) (ok bool) {
	m.mu.Lock()
	cache, ok := m.caches[id]
	m.mu.Unlock()

	if ok {
		cache.Clear()
	}

	return ok
}

// IDs implements the [Manager] interface for *DefaultManager.
func (m *DefaultManager) IDs() (ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Sorted(maps.Keys(m.caches))
}
