package ut1test

import (
	"context"
	"time"

	"github.com/AdguardTeam/golibs/service"
	"github.com/ut1cat/ut1cat/internal/blocklist"
	"github.com/ut1cat/ut1cat/internal/errcoll"
	"github.com/ut1cat/ut1cat/internal/rescache"
	"github.com/ut1cat/ut1cat/internal/websvc"
)

// Interface Mocks
//
// Keep entities in this file in alphabetic order.

// Package blocklist

// type check
var _ blocklist.Metrics = (*BlocklistMetrics)(nil)

// BlocklistMetrics is a [blocklist.Metrics] for tests.
type BlocklistMetrics struct {
	OnSetStatus             func(ctx context.Context, stats *blocklist.Stats, err error)
	OnObserveRefresh        func(ctx context.Context, dur time.Duration)
	OnIncrementCacheLookups func(ctx context.Context, hit bool)
	OnIncrementDetections   func(ctx context.Context, matched bool)
}

// SetStatus implements the [blocklist.Metrics] interface for
// *BlocklistMetrics.
func (m *BlocklistMetrics) SetStatus(ctx context.Context, stats *blocklist.Stats, err error) {
	m.OnSetStatus(ctx, stats, err)
}

// ObserveRefresh implements the [blocklist.Metrics] interface for
// *BlocklistMetrics.
func (m *BlocklistMetrics) ObserveRefresh(ctx context.Context, dur time.Duration) {
	m.OnObserveRefresh(ctx, dur)
}

// IncrementCacheLookups implements the [blocklist.Metrics] interface for
// *BlocklistMetrics.
func (m *BlocklistMetrics) IncrementCacheLookups(ctx context.Context, hit bool) {
	m.OnIncrementCacheLookups(ctx, hit)
}

// IncrementDetections implements the [blocklist.Metrics] interface for
// *BlocklistMetrics.
func (m *BlocklistMetrics) IncrementDetections(ctx context.Context, matched bool) {
	m.OnIncrementDetections(ctx, matched)
}

// type check
var _ blocklist.Source = (*Source)(nil)

// Source is a [blocklist.Source] for tests.
type Source struct {
	OnFill func(ctx context.Context, b *blocklist.Builder) (err error)
}

// Fill implements the [blocklist.Source] interface for *Source.
func (s *Source) Fill(ctx context.Context, b *blocklist.Builder) (err error) {
	return s.OnFill(ctx, b)
}

// Package errcoll

// type check
var _ errcoll.Interface = (*ErrorCollector)(nil)

// ErrorCollector is an [errcoll.Interface] for tests.
type ErrorCollector struct {
	OnCollect func(ctx context.Context, err error)
}

// Collect implements the [errcoll.Interface] interface for *ErrorCollector.
func (c *ErrorCollector) Collect(ctx context.Context, err error) {
	c.OnCollect(ctx, err)
}

// NewErrorCollector returns a new *ErrorCollector that does nothing.
func NewErrorCollector() (c *ErrorCollector) {
	return &ErrorCollector{
		OnCollect: func(_ context.Context, _ error) {},
	}
}

// Package rescache

// type check
var _ rescache.Clearer = (*CacheClearer)(nil)

// CacheClearer is a [rescache.Clearer] for tests.
type CacheClearer struct {
	OnClear func()
}

// Clear implements the [rescache.Clearer] interface for *CacheClearer.
func (c *CacheClearer) Clear() {
	c.OnClear()
}

// Package service

// type check
var _ service.Refresher = (*Refresher)(nil)

// Refresher is a [service.Refresher] for tests.
type Refresher struct {
	OnRefresh func(ctx context.Context) (err error)
}

// Refresh implements the [service.Refresher] interface for *Refresher.
func (r *Refresher) Refresh(ctx context.Context) (err error) {
	return r.OnRefresh(ctx)
}

// Package websvc

// type check
var _ websvc.Detector = (*Detector)(nil)

// Detector is a [websvc.Detector] for tests.
type Detector struct {
	OnDetect func(ctx context.Context, candidate string) (cats []blocklist.Category)
	OnStats  func() (s *blocklist.Stats)
}

// Detect implements the [websvc.Detector] interface for *Detector.
func (d *Detector) Detect(ctx context.Context, candidate string) (cats []blocklist.Category) {
	return d.OnDetect(ctx, candidate)
}

// Stats implements the [websvc.Detector] interface for *Detector.
func (d *Detector) Stats() (s *blocklist.Stats) {
	return d.OnStats()
}

// type check
var _ websvc.Metrics = (*WebSvcMetrics)(nil)

// WebSvcMetrics is a [websvc.Metrics] for tests.
type WebSvcMetrics struct {
	OnIncrementRequests    func(ctx context.Context, code int)
	OnIncrementRateLimited func(ctx context.Context)
}

// IncrementRequests implements the [websvc.Metrics] interface for
// *WebSvcMetrics.
func (m *WebSvcMetrics) IncrementRequests(ctx context.Context, code int) {
	m.OnIncrementRequests(ctx, code)
}

// IncrementRateLimited implements the [websvc.Metrics] interface for
// *WebSvcMetrics.
func (m *WebSvcMetrics) IncrementRateLimited(ctx context.Context) {
	m.OnIncrementRateLimited(ctx)
}
