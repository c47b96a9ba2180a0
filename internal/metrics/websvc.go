package metrics

import (
	"context"
	"fmt"
	"strconv"

	"github.com/AdguardTeam/golibs/container"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ut1cat/ut1cat/internal/websvc"
)

// WebSvc is the Prometheus-based implementation of the [websvc.Metrics]
// interface.
type WebSvc struct {
	// requests is a counter vector with the number of HTTP requests to the
	// public API by response code.
	requests *prometheus.CounterVec

	// rateLimited is a counter with the number of requests rejected by the
	// rate limiter.
	rateLimited prometheus.Counter
}

// NewWebSvc registers the web service metrics in reg and returns a properly
// initialized *WebSvc.
func NewWebSvc(namespace string, reg prometheus.Registerer) (m *WebSvc, err error) {
	const (
		requestsTotal    = "requests_total"
		rateLimitedTotal = "ratelimited_total"
	)

	m = &WebSvc{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      requestsTotal,
			Namespace: namespace,
			Subsystem: subsystemWebSvc,
			Help:      "The number of HTTP requests to the public API by response code.",
		}, []string{"code"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      rateLimitedTotal,
			Namespace: namespace,
			Subsystem: subsystemWebSvc,
			Help:      "The number of HTTP requests rejected by the rate limiter.",
		}),
	}

	collectors := container.KeyValues[string, prometheus.Collector]{{
		Key:   requestsTotal,
		Value: m.requests,
	}, {
		Key:   rateLimitedTotal,
		Value: m.rateLimited,
	}}

	var errs []error
	for _, c := range collectors {
		err = reg.Register(c.Value)
		if err != nil {
			errs = append(errs, fmt.Errorf("registering metrics %q: %w", c.Key, err))
		}
	}

	if err = errors.Join(errs...); err != nil {
		return nil, err
	}

	return m, nil
}

// type check
var _ websvc.Metrics = (*WebSvc)(nil)

// IncrementRequests implements the [websvc.Metrics] interface for *WebSvc.
func (m *WebSvc) IncrementRequests(_ context.Context, code int) {
	m.requests.WithLabelValues(strconv.Itoa(code)).Inc()
}

// IncrementRateLimited implements the [websvc.Metrics] interface for *WebSvc.
func (m *WebSvc) IncrementRateLimited(_ context.Context) {
	m.rateLimited.Inc()
}
