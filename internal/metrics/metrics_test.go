package metrics_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ut1cat/ut1cat/internal/blocklist"
	"github.com/ut1cat/ut1cat/internal/metrics"
)

// testNamespace is the namespace for tests.
const testNamespace = "test"

// findMetric returns the metric with the given name and labels gathered from
// reg.  It fails the test if there is no such metric.
func findMetric(
	t *testing.T,
	reg prometheus.Gatherer,
	name string,
	labels map[string]string,
) (m *io_prometheus_client.Metric) {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}

		for _, m = range family.GetMetric() {
			if hasLabels(m, labels) {
				return m
			}
		}
	}

	t.Fatalf("metric %q with labels %v not found", name, labels)

	return nil
}

// hasLabels returns true if m has all labels.
func hasLabels(m *io_prometheus_client.Metric, labels map[string]string) (ok bool) {
	found := 0
	for _, p := range m.GetLabel() {
		if v, has := labels[p.GetName()]; has && v == p.GetValue() {
			found++
		}
	}

	return found == len(labels)
}

func TestBlocklist(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.NewBlocklist(testNamespace, reg)
	require.NoError(t, err)

	ctx := context.Background()
	m.SetStatus(ctx, &blocklist.Stats{
		DomainKeys: 3,
		URLKeys:    2,
		Skipped:    1,
	}, nil)
	m.ObserveRefresh(ctx, time.Second)
	m.IncrementCacheLookups(ctx, true)
	m.IncrementCacheLookups(ctx, false)
	m.IncrementCacheLookups(ctx, false)
	m.IncrementDetections(ctx, true)

	gauge := func(name string, labels map[string]string) (v float64) {
		return findMetric(t, reg, name, labels).GetGauge().GetValue()
	}

	counter := func(name string, labels map[string]string) (v float64) {
		return findMetric(t, reg, name, labels).GetCounter().GetValue()
	}

	assert.Equal(t, 3.0, gauge("test_blocklist_rules_total", map[string]string{"kind": "domain"}))
	assert.Equal(t, 2.0, gauge("test_blocklist_rules_total", map[string]string{"kind": "url"}))
	assert.Equal(t, 1.0, gauge("test_blocklist_skipped_total", nil))
	assert.Equal(t, 1.0, gauge("test_blocklist_update_status", nil))
	assert.Positive(t, gauge("test_blocklist_update_time", nil))

	assert.Equal(t, 1.0, counter("test_blocklist_cache_lookups_total", map[string]string{"hit": "1"}))
	assert.Equal(t, 2.0, counter("test_blocklist_cache_lookups_total", map[string]string{"hit": "0"}))
	assert.Equal(t, 1.0, counter("test_blocklist_detections_total", map[string]string{"matched": "1"}))

	hist := findMetric(t, reg, "test_blocklist_refresh_duration_seconds", nil).GetHistogram()
	assert.Equal(t, uint64(1), hist.GetSampleCount())

	t.Run("error", func(t *testing.T) {
		m.SetStatus(ctx, nil, errors.Error("test error"))

		assert.Equal(t, 0.0, gauge("test_blocklist_update_status", nil))
		assert.Equal(t, 3.0, gauge("test_blocklist_rules_total", map[string]string{"kind": "domain"}))
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err = metrics.NewBlocklist(testNamespace, reg)
		assert.Error(t, err)
	})
}

func TestWebSvc(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.NewWebSvc(testNamespace, reg)
	require.NoError(t, err)

	ctx := context.Background()
	m.IncrementRequests(ctx, http.StatusOK)
	m.IncrementRequests(ctx, http.StatusOK)
	m.IncrementRequests(ctx, http.StatusTooManyRequests)
	m.IncrementRateLimited(ctx)

	counter := func(name string, labels map[string]string) (v float64) {
		return findMetric(t, reg, name, labels).GetCounter().GetValue()
	}

	assert.Equal(t, 2.0, counter("test_websvc_requests_total", map[string]string{"code": "200"}))
	assert.Equal(t, 1.0, counter("test_websvc_requests_total", map[string]string{"code": "429"}))
	assert.Equal(t, 1.0, counter("test_websvc_ratelimited_total", nil))

	n, err := promtestutil.GatherAndCount(reg, "test_websvc_requests_total")
	require.NoError(t, err)

	assert.Equal(t, 2, n)
}

func TestSetUpGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	err := metrics.SetUpGauge(reg, "v1.0.0", "0", "master", "abcdef", "go1.25")
	require.NoError(t, err)

	m := findMetric(t, reg, "ut1cat_app_up", map[string]string{
		"version": "v1.0.0",
		"branch":  "master",
	})
	assert.Equal(t, 1.0, m.GetGauge().GetValue())

	err = metrics.SetAdditionalInfo(reg, nil)
	require.NoError(t, err)

	err = metrics.SetAdditionalInfo(reg, map[string]string{"dc": "test"})
	require.NoError(t, err)

	m = findMetric(t, reg, "ut1cat_app_additional_info", map[string]string{"dc": "test"})
	assert.Equal(t, 1.0, m.GetGauge().GetValue())
}

func TestBoolString(t *testing.T) {
	assert.Equal(t, "1", metrics.BoolString(true))
	assert.Equal(t, "0", metrics.BoolString(false))
}
