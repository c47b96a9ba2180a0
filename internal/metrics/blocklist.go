package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/AdguardTeam/golibs/container"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ut1cat/ut1cat/internal/blocklist"
)

// Kinds of blocklist rules.
const (
	ruleKindDomain = "domain"
	ruleKindURL    = "url"
)

// Blocklist is the Prometheus-based implementation of the [blocklist.Metrics]
// interface.
type Blocklist struct {
	// domainRules is a gauge with the number of unique keys in the domain
	// index.
	domainRules prometheus.Gauge

	// urlRules is a gauge with the number of unique keys in the URL index.
	urlRules prometheus.Gauge

	// skipped is a gauge with the number of list lines that could not be
	// normalized during the last successful refresh.
	skipped prometheus.Gauge

	// updateTime is a gauge with the timestamp of the last successful
	// refresh.
	updateTime prometheus.Gauge

	// updateStatus is a gauge with the status of the last refresh.  1 means
	// success, 0 means an error occurred.
	updateStatus prometheus.Gauge

	// refreshDuration is a histogram with the duration of refreshes.
	refreshDuration prometheus.Histogram

	// cacheHits is a counter with the number of result cache hits.
	cacheHits prometheus.Counter

	// cacheMisses is a counter with the number of result cache misses.
	cacheMisses prometheus.Counter

	// detectionsMatched is a counter with the number of detections that
	// returned at least one category.
	detectionsMatched prometheus.Counter

	// detectionsUnmatched is a counter with the number of detections that
	// returned no categories.
	detectionsUnmatched prometheus.Counter
}

// NewBlocklist registers the blocklist metrics in reg and returns a properly
// initialized *Blocklist.
func NewBlocklist(namespace string, reg prometheus.Registerer) (m *Blocklist, err error) {
	const (
		rulesTotal      = "rules_total"
		skippedTotal    = "skipped_total"
		updateTime      = "update_time"
		updateStatus    = "update_status"
		refreshDuration = "refresh_duration_seconds"
		cacheLookups    = "cache_lookups_total"
		detections      = "detections_total"
	)

	rulesGaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:      rulesTotal,
		Namespace: namespace,
		Subsystem: subsystemBlocklist,
		Help:      "The number of unique keys in the blocklist indexes.",
	}, []string{"kind"})

	cacheLookupsCounterVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      cacheLookups,
		Namespace: namespace,
		Subsystem: subsystemBlocklist,
		Help: "The number of detection result cache lookups. " +
			"hit=1 means that a cached item was found.",
	}, []string{"hit"})

	detectionsCounterVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      detections,
		Namespace: namespace,
		Subsystem: subsystemBlocklist,
		Help: "The number of detections. " +
			"matched=1 means that at least one category was found.",
	}, []string{"matched"})

	m = &Blocklist{
		domainRules: rulesGaugeVec.WithLabelValues(ruleKindDomain),
		urlRules:    rulesGaugeVec.WithLabelValues(ruleKindURL),
		skipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:      skippedTotal,
			Namespace: namespace,
			Subsystem: subsystemBlocklist,
			Help:      "The number of list lines skipped during the last refresh.",
		}),
		updateTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:      updateTime,
			Namespace: namespace,
			Subsystem: subsystemBlocklist,
			Help:      "The time when the blocklists were loaded last time.",
		}),
		updateStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:      updateStatus,
			Namespace: namespace,
			Subsystem: subsystemBlocklist,
			Help:      "Status of the last blocklist refresh. 1 is okay, 0 means that something went wrong.",
		}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:      refreshDuration,
			Namespace: namespace,
			Subsystem: subsystemBlocklist,
			Help:      "Time elapsed on refreshing the blocklists, in seconds.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}),
		cacheHits:           cacheLookupsCounterVec.WithLabelValues(BoolString(true)),
		cacheMisses:         cacheLookupsCounterVec.WithLabelValues(BoolString(false)),
		detectionsMatched:   detectionsCounterVec.WithLabelValues(BoolString(true)),
		detectionsUnmatched: detectionsCounterVec.WithLabelValues(BoolString(false)),
	}

	collectors := container.KeyValues[string, prometheus.Collector]{{
		Key:   rulesTotal,
		Value: rulesGaugeVec,
	}, {
		Key:   skippedTotal,
		Value: m.skipped,
	}, {
		Key:   updateTime,
		Value: m.updateTime,
	}, {
		Key:   updateStatus,
		Value: m.updateStatus,
	}, {
		Key:   refreshDuration,
		Value: m.refreshDuration,
	}, {
		Key:   cacheLookups,
		Value: cacheLookupsCounterVec,
	}, {
		Key:   detections,
		Value: detectionsCounterVec,
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
var _ blocklist.Metrics = (*Blocklist)(nil)

// SetStatus implements the [blocklist.Metrics] interface for *Blocklist.
func (m *Blocklist) SetStatus(_ context.Context, stats *blocklist.Stats, err error) {
	SetStatusGauge(m.updateStatus, err)
	if err != nil {
		return
	}

	m.updateTime.SetToCurrentTime()
	m.domainRules.Set(float64(stats.DomainKeys))
	m.urlRules.Set(float64(stats.URLKeys))
	m.skipped.Set(float64(stats.Skipped))
}

// ObserveRefresh implements the [blocklist.Metrics] interface for *Blocklist.
func (m *Blocklist) ObserveRefresh(_ context.Context, dur time.Duration) {
	m.refreshDuration.Observe(dur.Seconds())
}

// IncrementCacheLookups implements the [blocklist.Metrics] interface for
// *Blocklist.
func (m *Blocklist) IncrementCacheLookups(_ context.Context, hit bool) {
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// IncrementDetections implements the [blocklist.Metrics] interface for
// *Blocklist.
func (m *Blocklist) IncrementDetections(_ context.Context, matched bool) {
	if matched {
		m.detectionsMatched.Inc()
	} else {
		m.detectionsUnmatched.Inc()
	}
}
