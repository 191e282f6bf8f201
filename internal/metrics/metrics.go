// Package metrics implements the C8 metrics sink: named counters and
// histograms backed by prometheus/client_golang, grounded on
// 99souls-ariadne's engine/telemetry/metrics.PrometheusProvider — a typed
// wrapper around a prometheus.Registry rather than bare global metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sink owns every metric named in spec.md §4.8. A process-wide Sink is
// permitted and shared across concurrent orchestrator runs (§5); it is
// reached only through this injected handle, never a package-level global.
type Sink struct {
	registry *prometheus.Registry

	ArticlesTotal         *prometheus.CounterVec
	PublishDuration       *prometheus.HistogramVec
	OperationDuration     *prometheus.HistogramVec
	OperationErrors       *prometheus.CounterVec
	FallbackTotal         *prometheus.CounterVec
	SelectorCacheHits     prometheus.Counter
	SelectorCacheMisses   prometheus.Counter
	SelectorCacheSize     prometheus.Gauge
	CostEstimateDollars   *prometheus.CounterVec
}

// NewSink registers every metric against a fresh registry.
func NewSink() *Sink {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Sink{
		registry: reg,
		ArticlesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "articles_total",
			Help: "Articles processed by outcome and provider.",
		}, []string{"outcome", "provider"}),
		PublishDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "publish_duration_seconds",
			Help:    "End-to-end publish run duration.",
			Buckets: []float64{30, 60, 90, 120, 180, 240, 300},
		}, []string{"provider"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "operation_duration_seconds",
			Help:    "Per-operation latency.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"operation", "provider"}),
		OperationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "operation_errors_total",
			Help: "Per-operation errors by kind.",
		}, []string{"operation", "provider", "error_kind"}),
		FallbackTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fallback_total",
			Help: "Provider failovers by source, destination, and reason.",
		}, []string{"from", "to", "reason"}),
		SelectorCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "selector_cache_hits_total",
			Help: "Selector cache hits.",
		}),
		SelectorCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "selector_cache_misses_total",
			Help: "Selector cache misses.",
		}),
		SelectorCacheSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "selector_cache_size",
			Help: "Current selector cache entry count.",
		}),
		CostEstimateDollars: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cost_estimate_dollars",
			Help: "Estimated provider cost in dollars.",
		}, []string{"provider", "op_kind"}),
	}
}

// Handler exposes the registry over the pull protocol (§6 "Metrics exposed
// via a pull endpoint at a configurable path").
func (s *Sink) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
