// Package observability provides Prometheus metrics for monitoring the
// client's request pipeline and caches.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the wallet client.
type Metrics struct {
	// Request pipeline metrics
	RequestsTotal    *prometheus.CounterVec // by method, outcome (ok|http_error|timeout|network_error)
	RequestRetries   prometheus.Counter
	RequestDuration  *prometheus.HistogramVec // by method
	RequestsInFlight prometheus.Gauge

	// Wallet store metrics
	ActivationPolls    prometheus.Counter
	ActivationTimeouts prometheus.Counter

	// Cache metrics
	CacheHits   *prometheus.CounterVec // by cache (balance|price)
	CacheMisses *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "panoplia_wallet"
	}

	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total number of co-signer requests by method and outcome",
		}, []string{"method", "outcome"}),
		RequestRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "request_retries_total",
			Help:      "Total number of retried request attempts",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Request latency in seconds (all attempts included)",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RequestsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_in_flight",
			Help:      "Current number of in-flight co-signer requests",
		}),
		ActivationPolls: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "activation_polls_total",
			Help:      "Total number of vault activation status checks",
		}),
		ActivationTimeouts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "activation_timeouts_total",
			Help:      "Total number of vault creations that never reached active",
		}),
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total cache hits by cache name",
		}, []string{"cache"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total cache misses by cache name",
		}, []string{"cache"}),
	}
}
