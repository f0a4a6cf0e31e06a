// Package metrics provides Prometheus metrics for offline-hub.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts intercepted requests by route class and outcome.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "offlinehub",
			Name:      "requests_total",
			Help:      "Total number of intercepted requests",
		},
		[]string{"route", "outcome"},
	)

	// SyncTotal counts reconciliation passes by result.
	SyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "offlinehub",
			Name:      "sync_total",
			Help:      "Total number of reconciliation passes",
		},
		[]string{"result"},
	)

	// SyncDuration measures reconciliation pass duration.
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "offlinehub",
			Name:      "sync_duration_seconds",
			Help:      "Duration of reconciliation passes in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// SyncApplied counts applied changes by kind.
	SyncApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "offlinehub",
			Name:      "sync_applied_total",
			Help:      "Total number of applied article changes",
		},
		[]string{"kind"},
	)

	// CacheOperations counts response cache operations by namespace.
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "offlinehub",
			Name:      "cache_operations_total",
			Help:      "Total number of response cache operations",
		},
		[]string{"namespace", "operation"},
	)

	// OriginOnline tracks origin connectivity (1 = online, 0 = offline).
	OriginOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "offlinehub",
			Name:      "origin_online",
			Help:      "Origin connectivity status (1 = online, 0 = offline)",
		},
	)
)

// RecordRequest records one intercepted request.
func RecordRequest(route, outcome string) {
	RequestsTotal.WithLabelValues(route, outcome).Inc()
}

// RecordSync records one reconciliation pass.
func RecordSync(result string, duration float64) {
	SyncTotal.WithLabelValues(result).Inc()
	SyncDuration.Observe(duration)
}

// RecordApplied records applied changes of one kind.
func RecordApplied(kind string, count int) {
	if count > 0 {
		SyncApplied.WithLabelValues(kind).Add(float64(count))
	}
}

// RecordCacheOperation records one response cache operation.
func RecordCacheOperation(namespace, operation string) {
	CacheOperations.WithLabelValues(namespace, operation).Inc()
}

// SetOriginOnline sets the origin connectivity gauge.
func SetOriginOnline(online bool) {
	if online {
		OriginOnline.Set(1)
	} else {
		OriginOnline.Set(0)
	}
}
