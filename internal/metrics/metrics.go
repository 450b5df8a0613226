// Package metrics provides Prometheus metrics for source attempts and health.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FetchAttempts counts adapter invocations by outcome
	// ("success" or a failure kind).
	FetchAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_attempts_total",
			Help: "Total number of source fetch attempts by outcome",
		},
		[]string{"domain", "source", "outcome"},
	)

	// FetchDuration is a histogram of single-attempt durations.
	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fetch_duration_seconds",
			Help:    "Duration of single source fetch attempts",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"domain", "source"},
	)

	// FallbackDepth records how many sources failed before one succeeded.
	FallbackDepth = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fallback_depth",
			Help:    "Number of failed sources before the first success",
			Buckets: prometheus.LinearBuckets(0, 1, 7),
		},
		[]string{"domain"},
	)

	// SourceHealthy reflects the last probe outcome per source (1=healthy).
	SourceHealthy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "source_healthy",
			Help: "Health status of upstream sources (1=healthy, 0=unhealthy)",
		},
		[]string{"domain", "source"},
	)
)

func init() {
	prometheus.MustRegister(
		FetchAttempts,
		FetchDuration,
		FallbackDepth,
		SourceHealthy,
	)
}

// ObserveAttempt records one adapter invocation.
func ObserveAttempt(domain, src, outcome string, elapsed time.Duration) {
	FetchAttempts.WithLabelValues(domain, src, outcome).Inc()
	FetchDuration.WithLabelValues(domain, src).Observe(elapsed.Seconds())
}

// SetSourceHealth updates the health gauge for a source.
func SetSourceHealth(domain, src string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1.0
	}
	SourceHealthy.WithLabelValues(domain, src).Set(v)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
