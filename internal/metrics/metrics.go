// Package metrics implements the observability hooks with Prometheus.
//
// A [Registry] owns its own prometheus.Registry so several can coexist in
// tests. main installs one with [Registry.Install] and serves it with
// [Registry.Handler].
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/objview/pkg/errors"
	"github.com/matzehuels/objview/pkg/observability"
)

// Registry holds every objview metric.
type Registry struct {
	registry *prometheus.Registry

	// Walk metrics
	WalksTotal       *prometheus.CounterVec
	WalkDuration     prometheus.Histogram
	ObjectsVisited   *prometheus.CounterVec
	AliasesTotal     prometheus.Counter
	GraphNodes       prometheus.Gauge
	GraphConnections prometheus.Gauge

	// Export metrics
	ExportsTotal   *prometheus.CounterVec
	ExportDuration *prometheus.HistogramVec
	ExportBytes    *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Graph events
	GraphEventsTotal *prometheus.CounterVec
}

// NewRegistry creates a registry with every metric registered, plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.initWalkMetrics()
	r.initExportMetrics()
	r.initHTTPMetrics()
	r.initEventMetrics()
	return r
}

func (r *Registry) initWalkMetrics() {
	f := promauto.With(r.registry)
	r.WalksTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objview_walks_total",
			Help: "Object walks by result (ok or error code)",
		},
		[]string{"result"},
	)
	r.WalkDuration = f.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "objview_walk_duration_seconds",
			Help:    "Object walk latency in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
	)
	r.ObjectsVisited = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objview_objects_visited_total",
			Help: "Objects discovered by walks, by struct type",
		},
		[]string{"type"},
	)
	r.AliasesTotal = f.NewCounter(
		prometheus.CounterOpts{
			Name: "objview_aliases_total",
			Help: "Pointers into objects that were already visited",
		},
	)
	r.GraphNodes = f.NewGauge(
		prometheus.GaugeOpts{
			Name: "objview_graph_nodes",
			Help: "Objects in the graph after the last walk",
		},
	)
	r.GraphConnections = f.NewGauge(
		prometheus.GaugeOpts{
			Name: "objview_graph_connections",
			Help: "Connections in the graph after the last walk",
		},
	)
}

func (r *Registry) initExportMetrics() {
	f := promauto.With(r.registry)
	r.ExportsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objview_exports_total",
			Help: "Graph exports by format and result",
		},
		[]string{"format", "result"},
	)
	r.ExportDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "objview_export_duration_seconds",
			Help:    "Graph export latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)
	r.ExportBytes = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "objview_export_size_bytes",
			Help:    "Size of exported documents in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"format"},
	)
}

func (r *Registry) initHTTPMetrics() {
	f := promauto.With(r.registry)
	r.HTTPRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objview_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	r.HTTPRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "objview_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	r.HTTPRequestsInFlight = f.NewGauge(
		prometheus.GaugeOpts{
			Name: "objview_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)
}

func (r *Registry) initEventMetrics() {
	r.GraphEventsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "objview_graph_events_total",
			Help: "Graph model events by kind",
		},
		[]string{"event"},
	)
}

// Install registers r as the process-wide walk, export and HTTP hooks.
func (r *Registry) Install() {
	observability.SetWalkHooks(r)
	observability.SetExportHooks(r)
	observability.SetHTTPHooks(r)
}

// Gatherer returns the underlying prometheus registry.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.registry }

// Handler serves the metrics in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	if code := errors.GetCode(err); code != "" {
		return string(code)
	}
	return "error"
}

// =============================================================================
// observability.WalkHooks
// =============================================================================

func (r *Registry) OnWalkStart(context.Context, uint64, string) {}

func (r *Registry) OnObjectVisited(_ context.Context, typeName string, _ int) {
	r.ObjectsVisited.WithLabelValues(typeName).Inc()
}

func (r *Registry) OnAlias(context.Context) { r.AliasesTotal.Inc() }

func (r *Registry) OnWalkComplete(_ context.Context, objects, connections int, d time.Duration, err error) {
	r.WalksTotal.WithLabelValues(result(err)).Inc()
	r.WalkDuration.Observe(d.Seconds())
	r.GraphNodes.Set(float64(objects))
	r.GraphConnections.Set(float64(connections))
}

// =============================================================================
// observability.ExportHooks
// =============================================================================

func (r *Registry) OnExportStart(context.Context, string, int) {}

func (r *Registry) OnExportComplete(_ context.Context, format string, n int, d time.Duration, err error) {
	r.ExportsTotal.WithLabelValues(format, result(err)).Inc()
	r.ExportDuration.WithLabelValues(format).Observe(d.Seconds())
	if err == nil {
		r.ExportBytes.WithLabelValues(format).Observe(float64(n))
	}
}

// =============================================================================
// observability.HTTPHooks
// =============================================================================

func (r *Registry) OnRequest(context.Context, string, string) { r.HTTPRequestsInFlight.Inc() }

func (r *Registry) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	r.HTTPRequestsInFlight.Dec()
	r.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

var (
	_ observability.WalkHooks   = (*Registry)(nil)
	_ observability.ExportHooks = (*Registry)(nil)
	_ observability.HTTPHooks   = (*Registry)(nil)
)
