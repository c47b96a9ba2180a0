// Package metrics contains the Prometheus-based implementations of the metrics
// interfaces used across ut1cat.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is the default namespace of all ut1cat metrics.
const Namespace = "ut1cat"

// Subsystem names that are used in the metrics.
const (
	subsystemApplication = "app"
	subsystemBlocklist   = "blocklist"
	subsystemWebSvc      = "websvc"
)

// SetUpGauge signals that the server has been started.  Use a function here to
// avoid circular dependencies.
func SetUpGauge(
	reg prometheus.Registerer,
	version string,
	buildTime string,
	branch string,
	revision string,
	goVersion string,
) (err error) {
	const upGaugeName = "up"

	upGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:      upGaugeName,
		Namespace: Namespace,
		Subsystem: subsystemApplication,
		Help: `A metric with a constant '1' value labeled by ` +
			`version and goversion from which the program was built.`,
		ConstLabels: prometheus.Labels{
			"version":   version,
			"buildtime": buildTime,
			"branch":    branch,
			"revision":  revision,
			"goversion": goVersion,
		},
	})

	err = reg.Register(upGauge)
	if err != nil {
		return fmt.Errorf("registering metrics %q: %w", upGaugeName, err)
	}

	upGauge.Set(1)

	return nil
}

// SetStatusGauge is a helper function that automatically checks if there's an
// error and sets the gauge to either 1 (success) or 0 (error).
func SetStatusGauge(gauge prometheus.Gauge, err error) {
	if err == nil {
		gauge.Set(1)
	} else {
		gauge.Set(0)
	}
}

// BoolString returns "1" if cond is true and "0" otherwise.
func BoolString(cond bool) (s string) {
	if cond {
		return "1"
	}

	return "0"
}

// SetAdditionalInfo adds a gauge with extra info labels.  If info is nil,
// SetAdditionalInfo does nothing.
func SetAdditionalInfo(reg prometheus.Registerer, info map[string]string) (err error) {
	if info == nil {
		return nil
	}

	const gaugeName = "additional_info"

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:      gaugeName,
		Namespace: Namespace,
		Subsystem: subsystemApplication,
		Help: `A metric with a constant '1' value labeled by additional ` +
			`info provided in configuration`,
		ConstLabels: info,
	})

	err = reg.Register(gauge)
	if err != nil {
		return fmt.Errorf("registering metrics %q: %w", gaugeName, err)
	}

	gauge.Set(1)

	return nil
}
