package blocklist

import (
	"context"
	"time"
)

// Metrics is an interface used for collection of the blocklist storage
// statistics.
type Metrics interface {
	// SetStatus sets the status of the last refresh.  stats must only be used
	// if err is nil.
	SetStatus(ctx context.Context, stats *Stats, err error)

	// ObserveRefresh records the duration of a refresh attempt.
	ObserveRefresh(ctx context.Context, dur time.Duration)

	// IncrementCacheLookups increments the number of result cache lookups.
	// hit is true if the lookup returned a value.
	IncrementCacheLookups(ctx context.Context, hit bool)

	// IncrementDetections increments the number of detections.  matched is
	// true if at least one category matched.
	IncrementDetections(ctx context.Context, matched bool)
}

// EmptyMetrics is the implementation of the [Metrics] interface that does
// nothing.
type EmptyMetrics struct{}

// type check
var _ Metrics = EmptyMetrics{}

// SetStatus implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) SetStatus(_ context.Context, _ *Stats, _ error) {}

// ObserveRefresh implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) ObserveRefresh(_ context.Context, _ time.Duration) {}

// IncrementCacheLookups implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) IncrementCacheLookups(_ context.Context, _ bool) {}

// IncrementDetections implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) IncrementDetections(_ context.Context, _ bool) {}
