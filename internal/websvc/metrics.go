package websvc

import "context"

// Metrics is an interface that is used for the collection of the web service
// statistics.
type Metrics interface {
	// IncrementRequests increments the number of requests answered with code.
	IncrementRequests(ctx context.Context, code int)

	// IncrementRateLimited increments the number of requests rejected by the
	// rate limiter.
	IncrementRateLimited(ctx context.Context)
}

// EmptyMetrics is the implementation of the [Metrics] interface that does
// nothing.
type EmptyMetrics struct{}

// type check
var _ Metrics = EmptyMetrics{}

// IncrementRequests implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) IncrementRequests(_ context.Context, _ int) {}

// IncrementRateLimited implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) IncrementRateLimited(_ context.Context) {}
