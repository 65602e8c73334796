// Package observability holds the Prometheus metrics served on /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "varbrowser"

// Metrics groups the service's collectors. All operations are safe for
// concurrent use.
type Metrics struct {
	// RequestsTotal counts handled requests.
	// Labels: endpoint, outcome (ok, missing_input, not_found, error)
	RequestsTotal *prometheus.CounterVec

	// CacheLookupsTotal counts result cache lookups.
	// Labels: dataset, result (hit, miss)
	CacheLookupsTotal *prometheus.CounterVec

	// ScanDurationSeconds measures genotype scan + aggregation time on a cache miss.
	// Labels: dataset
	ScanDurationSeconds *prometheus.HistogramVec

	// ScannedCalls tracks how many genotype calls one scan returned.
	// Labels: dataset
	ScannedCalls *prometheus.HistogramVec

	// DuplicateCallsFound is the duplicate (variant, patient) pair count of the last sanitation run.
	// Labels: dataset
	DuplicateCallsFound *prometheus.GaugeVec
}

// NewMetrics registers every collector on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Handled requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),

		CacheLookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Aggregation result cache lookups by dataset and result",
		}, []string{"dataset", "result"}),

		ScanDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "aggregation",
			Name:      "scan_duration_seconds",
			Help:      "Genotype scan and aggregation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}, []string{"dataset"}),

		ScannedCalls: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "aggregation",
			Name:      "scanned_calls",
			Help:      "Genotype calls returned by one scan",
			Buckets:   []float64{0, 10, 100, 1000, 10000, 100000},
		}, []string{"dataset"}),

		DuplicateCallsFound: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "sanitation",
			Name:      "duplicate_calls",
			Help:      "Duplicate (variant, patient) genotype pairs found by the last sanitation run",
		}, []string{"dataset"}),
	}
}

// Nop returns metrics registered on a throwaway registry.
func Nop() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
