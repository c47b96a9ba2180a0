package blocklist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AdguardTeam/golibs/service"
	"github.com/ut1cat/ut1cat/internal/errcoll"
	"github.com/ut1cat/ut1cat/internal/rescache"
)

// IDStorage is the ID of the storage used for logging, cache clearing, and
// debug refreshes.
const IDStorage = "blocklist"

// StorageConfig is the configuration structure for a [Storage].
type StorageConfig struct {
	// Logger is used for logging the operation of the storage.  It must not
	// be nil.
	Logger *slog.Logger

	// Source is the source of the blocklists.  It must not be nil.
	Source Source

	// CacheManager is the global cache manager.  It must not be nil.
	CacheManager rescache.Manager

	// ErrColl is used to collect refresh errors.  It must not be nil.
	ErrColl errcoll.Interface

	// Metrics are the metrics of the storage.  It must not be nil.
	Metrics Metrics

	// CacheCount is the number of detection results to keep in the cache.  If
	// it is zero, the results are not cached.
	CacheCount int
}

// generation is an engine together with the cache of its detection results.
// Both are replaced at once, so a cached result always belongs to the engine
// stored next to it.
type generation struct {
	engine *Engine
	cache  rescache.Interface[string, []Category]
}

// Storage keeps the current [Engine] and replaces it atomically on every
// successful refresh, so that queries never wait for a rebuild.
type Storage struct {
	logger *slog.Logger
	gen    *atomic.Pointer[generation]

	// refrMu makes sure that only one refresh runs at a time.
	refrMu *sync.Mutex

	src        Source
	errColl    errcoll.Interface
	metrics    Metrics
	cacheCount int
}

// NewStorage returns a new storage without an engine.  Until the first
// successful refresh, it matches nothing.  c must not be nil.
func NewStorage(c *StorageConfig) (s *Storage) {
	s = &Storage{
		logger:     c.Logger,
		gen:        &atomic.Pointer[generation]{},
		refrMu:     &sync.Mutex{},
		src:        c.Source,
		errColl:    c.ErrColl,
		metrics:    c.Metrics,
		cacheCount: c.CacheCount,
	}

	s.gen.Store(s.newGeneration(nil))
	c.CacheManager.Add(IDStorage, s)

	return s
}

// newGeneration returns a generation with e and a new empty cache.
func (s *Storage) newGeneration(e *Engine) (g *generation) {
	return &generation{
		engine: e,
		cache:  rescache.New[string, []Category](s.cacheCount),
	}
}

// Detect returns the categories matching candidate using the current engine.
// See [Engine.Detect].  The returned slice must not be modified.
func (s *Storage) Detect(ctx context.Context, candidate string) (cats []Category) {
	g := s.gen.Load()
	if s.cacheCount <= 0 {
		cats = g.engine.Detect(candidate)
	} else {
		cats = s.detectCached(ctx, g, candidate)
	}

	s.metrics.IncrementDetections(ctx, cats != nil)

	return cats
}

// detectCached returns the categories matching candidate from the cache of g,
// and fills the cache on a miss.
func (s *Storage) detectCached(
	ctx context.Context,
	g *generation,
	candidate string,
) (cats []Category) {
	cats, ok := g.cache.Get(candidate)
	s.metrics.IncrementCacheLookups(ctx, ok)
	if ok {
		return cats
	}

	cats = g.engine.Detect(candidate)
	g.cache.Set(candidate, cats)

	return cats
}

// Match returns true if candidate matches at least one category using the
// current engine.  See [Engine.Match].
func (s *Storage) Match(_ context.Context, candidate string) (ok bool) {
	return s.gen.Load().engine.Match(candidate)
}

// Stats returns the statistics of the current engine.
func (s *Storage) Stats() (stats *Stats) {
	return s.gen.Load().engine.Stats()
}

// type check
var _ rescache.Clearer = (*Storage)(nil)

// Clear implements the [rescache.Clearer] interface for *Storage.  It clears
// the detection cache of the current engine.
func (s *Storage) Clear() {
	s.gen.Load().cache.Clear()
}

// type check
var _ service.Refresher = (*Storage)(nil)

// Refresh implements the [service.Refresher] interface for *Storage.  If the
// new engine cannot be built, the current one is kept.
func (s *Storage) Refresh(ctx context.Context) (err error) {
	s.logger.InfoContext(ctx, "refresh started")
	defer s.logger.InfoContext(ctx, "refresh finished")

	err = s.refresh(ctx)
	if err != nil {
		errcoll.Collect(ctx, s.errColl, s.logger, "refreshing blocklists", err)
	}

	return err
}

// RefreshInitial builds the first engine.  Unlike [Storage.Refresh], it does
// not report errors to the error collector, since they are fatal.
func (s *Storage) RefreshInitial(ctx context.Context) (err error) {
	s.logger.InfoContext(ctx, "initial refresh started")
	defer s.logger.InfoContext(ctx, "initial refresh finished")

	err = s.refresh(ctx)
	if err != nil {
		return fmt.Errorf("refreshing blocklists initially: %w", err)
	}

	return nil
}

// refresh builds a new engine and swaps it in.
func (s *Storage) refresh(ctx context.Context) (err error) {
	s.refrMu.Lock()
	defer s.refrMu.Unlock()

	start := time.Now()

	var e *Engine
	defer func() {
		s.metrics.ObserveRefresh(ctx, time.Since(start))
		s.metrics.SetStatus(ctx, e.Stats(), err)
	}()

	e, err = Build(ctx, s.src)
	if err != nil {
		// Don't wrap the error, because it's informative enough as is.
		return err
	}

	s.gen.Store(s.newGeneration(e))

	domains, urls := e.Len()
	s.logger.InfoContext(
		ctx,
		"reset indexes",
		"domains", domains,
		"urls", urls,
		"skipped", e.Stats().Skipped,
		"dur", time.Since(start),
	)

	return nil
}
