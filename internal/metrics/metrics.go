// Package metrics exposes the Prometheus instruments of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Selection outcomes.
const (
	StatusComputed = "computed"
	StatusCached   = "cached"
	StatusFailed   = "failed"
	StatusRejected = "rejected"
)

// Registry holds all metrics for the application. A nil *Registry records
// nothing.
type Registry struct {
	SelectionsTotal     *prometheus.CounterVec
	PropagationDuration prometheus.Histogram
	ActivationsTotal    *prometheus.CounterVec
	MergedIndexesTotal  *prometheus.CounterVec
	CacheHitsTotal      prometheus.Counter
	UnmappedNodesTotal  prometheus.Counter
	MissingRootsTotal   prometheus.Counter

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every instrument registered, plus the
// Go runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	r.initSelectionMetrics()
	r.initHTTPMetrics()
	return r
}

func (r *Registry) initSelectionMetrics() {
	f := promauto.With(r.registry)

	r.SelectionsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gkg_selections_total",
			Help: "Selection requests by outcome",
		},
		[]string{"status"},
	)

	r.PropagationDuration = f.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gkg_propagation_duration_seconds",
			Help:    "Time to build the causal net and propagate a journey",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	r.ActivationsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gkg_activations_total",
			Help: "Variables activated during propagation, by conceptual scale",
		},
		[]string{"scale"},
	)

	r.MergedIndexesTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gkg_merged_indexes_total",
			Help: "Indexes newly merged into selections, by conceptual scale",
		},
		[]string{"scale"},
	)

	r.CacheHitsTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "gkg_cache_hits_total",
		Help: "Selections served from the cache",
	})

	r.UnmappedNodesTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "gkg_unmapped_nodes_total",
		Help: "Routing nodes without a propagation template",
	})

	r.MissingRootsTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "gkg_missing_roots_total",
		Help: "Routing nodes absent from the subgraph",
	})
}

func (r *Registry) initHTTPMetrics() {
	f := promauto.With(r.registry)

	r.HTTPRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gkg_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	r.HTTPRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gkg_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
}

// Gatherer returns the underlying registry for scraping and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// RecordSelection counts one selection request with the given outcome.
func (r *Registry) RecordSelection(status string) {
	if r == nil {
		return
	}
	r.SelectionsTotal.WithLabelValues(status).Inc()
	if status == StatusCached {
		r.CacheHitsTotal.Inc()
	}
}

// RecordPropagation records one propagation run. activations and merged are
// indexed by conceptual scale.
func (r *Registry) RecordPropagation(duration time.Duration, activations, merged []int, unmapped, missingRoots int) {
	if r == nil {
		return
	}
	r.PropagationDuration.Observe(duration.Seconds())
	for scale, n := range activations {
		r.ActivationsTotal.WithLabelValues(strconv.Itoa(scale)).Add(float64(n))
	}
	for scale, n := range merged {
		r.MergedIndexesTotal.WithLabelValues(strconv.Itoa(scale)).Add(float64(n))
	}
	r.UnmappedNodesTotal.Add(float64(unmapped))
	r.MissingRootsTotal.Add(float64(missingRoots))
}

// RecordHTTPRequest records an HTTP request with its duration.
func (r *Registry) RecordHTTPRequest(method string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}
