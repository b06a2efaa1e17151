// Package metrics defines the Prometheus collectors for the index build and
// query pipeline and exposes an HTTP handler for scraping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the process.
type Metrics struct {
	DocsIndexedTotal      prometheus.Counter
	RecordsSkippedTotal   prometheus.Counter
	DictionaryTerms       prometheus.Gauge
	RotationKeys          prometheus.Gauge
	BuildDurationSeconds  prometheus.Gauge
	QueriesTotal          *prometheus.CounterVec
	QueryLatency          prometheus.Histogram
	QueryResultsCount     prometheus.Histogram
	WildcardExpansionSize prometheus.Histogram
	CacheHitsTotal        prometheus.Counter
	CacheMissesTotal      prometheus.Counter
}

// New creates and registers all collectors on the default registry.
func New() *Metrics {
	m := &Metrics{
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "index_docs_total",
				Help: "Total number of documents added to the index.",
			},
		),
		RecordsSkippedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "corpus_records_skipped_total",
				Help: "Total number of malformed corpus records skipped.",
			},
		),
		DictionaryTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "index_dictionary_terms",
				Help: "Number of distinct terms in the dictionary.",
			},
		),
		RotationKeys: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "index_rotation_keys",
				Help: "Number of distinct permuterm rotation keys.",
			},
		),
		BuildDurationSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "index_build_duration_seconds",
				Help: "Wall-clock duration of the last index build.",
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "query_total",
				Help: "Total queries by outcome (hit, empty, miss, invalid).",
			},
			[]string{"outcome"},
		),
		QueryLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "query_latency_seconds",
				Help:    "Query execution latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		QueryResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "query_results_count",
				Help:    "Number of document IDs returned per query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
		),
		WildcardExpansionSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wildcard_expansion_terms",
				Help:    "Number of candidate terms produced per wildcard expansion.",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "query_cache_hits_total",
				Help: "Total number of query cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "query_cache_misses_total",
				Help: "Total number of query cache misses.",
			},
		),
	}
	prometheus.MustRegister(
		m.DocsIndexedTotal,
		m.RecordsSkippedTotal,
		m.DictionaryTerms,
		m.RotationKeys,
		m.BuildDurationSeconds,
		m.QueriesTotal,
		m.QueryLatency,
		m.QueryResultsCount,
		m.WildcardExpansionSize,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)
	return m
}
