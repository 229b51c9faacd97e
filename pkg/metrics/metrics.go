// Package metrics implements the observability hooks with Prometheus
// collectors.
//
// The command surface runs as a batch job, so metrics are not scraped over
// HTTP: a Registry is installed with Install before a run and flushed to a
// node-exporter textfile with WriteToTextfile afterwards.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/medianshift/pkg/observability"
)

// Registry holds all collectors of one process.
type Registry struct {
	// Pipeline
	LoadDuration     *prometheus.HistogramVec
	GraphVertices    prometheus.Gauge
	GraphEdges       prometheus.Gauge
	DistanceDuration *prometheus.HistogramVec

	// Solver
	SolvesTotal   *prometheus.CounterVec
	SolveDuration *prometheus.HistogramVec

	// Search
	SearchStepsTotal   *prometheus.CounterVec
	SearchChangesTotal *prometheus.CounterVec
	SearchLastK        *prometheus.GaugeVec
	SearchDuration     *prometheus.GaugeVec

	// Cache
	CacheRequestsTotal *prometheus.CounterVec
	CacheWrittenBytes  *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with all collectors initialized.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initPipelineMetrics()
	r.initSolverMetrics()
	r.initSearchMetrics()
	r.initCacheMetrics()
	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Install registers r as the process-wide pipeline, solver, search and
// cache hooks.
func (r *Registry) Install() {
	observability.SetPipelineHooks(r)
	observability.SetSolverHooks(r)
	observability.SetSearchHooks(r)
	observability.SetCacheHooks(r)
}

// WriteToTextfile writes all collected metrics in the text exposition
// format, atomically replacing path.
func (r *Registry) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

func (r *Registry) initPipelineMetrics() {
	r.LoadDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medianshift_load_duration_seconds",
			Help:    "Time spent reading region files",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"status"},
	)
	r.GraphVertices = promauto.With(r.registry).NewGauge(prometheus.GaugeOpts{
		Name: "medianshift_graph_vertices",
		Help: "Vertices of the last loaded graph",
	})
	r.GraphEdges = promauto.With(r.registry).NewGauge(prometheus.GaugeOpts{
		Name: "medianshift_graph_edges",
		Help: "Edges of the last loaded graph",
	})
	r.DistanceDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medianshift_distance_matrix_duration_seconds",
			Help:    "Time to obtain the base distance matrix",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 60},
		},
		[]string{"source"},
	)
}

func (r *Registry) initSolverMetrics() {
	r.SolvesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "medianshift_solves_total",
			Help: "p-median solves by strategy and outcome",
		},
		[]string{"strategy", "status"},
	)
	r.SolveDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medianshift_solve_duration_seconds",
			Help:    "Duration of a single p-median solve",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		},
		[]string{"strategy"},
	)
}

func (r *Registry) initSearchMetrics() {
	r.SearchStepsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "medianshift_search_steps_total",
			Help: "Elongation scales probed by the threshold search",
		},
		[]string{"mode"},
	)
	r.SearchChangesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "medianshift_search_changes_total",
			Help: "Probes whose facility set differed from the reference",
		},
		[]string{"mode"},
	)
	r.SearchLastK = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "medianshift_search_last_k",
			Help: "Last probed elongation scale",
		},
		[]string{"mode"},
	)
	r.SearchDuration = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "medianshift_search_duration_seconds",
			Help: "Wall time of the last completed search",
		},
		[]string{"mode"},
	)
}

func (r *Registry) initCacheMetrics() {
	r.CacheRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "medianshift_cache_requests_total",
			Help: "Cache lookups by key type and result",
		},
		[]string{"key_type", "result"},
	)
	r.CacheWrittenBytes = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "medianshift_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		},
		[]string{"key_type"},
	)
}

// OnLoadStart implements observability.PipelineHooks.
func (r *Registry) OnLoadStart(context.Context, string) {}

// OnLoadComplete implements observability.PipelineHooks.
func (r *Registry) OnLoadComplete(_ context.Context, _ string, vertices, edges int, d time.Duration, err error) {
	r.LoadDuration.WithLabelValues(status(err)).Observe(d.Seconds())
	if err == nil {
		r.GraphVertices.Set(float64(vertices))
		r.GraphEdges.Set(float64(edges))
	}
}

// OnDistances implements observability.PipelineHooks.
func (r *Registry) OnDistances(_ context.Context, _ int, cached bool, d time.Duration) {
	source := "computed"
	if cached {
		source = "cache"
	}
	r.DistanceDuration.WithLabelValues(source).Observe(d.Seconds())
}

// OnSolve implements observability.SolverHooks.
func (r *Registry) OnSolve(_ context.Context, strategy string, _, _ int, d time.Duration, err error) {
	r.SolvesTotal.WithLabelValues(strategy, status(err)).Inc()
	r.SolveDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

// OnStep implements observability.SearchHooks.
func (r *Registry) OnStep(_ context.Context, mode string, k float64, changed bool) {
	r.SearchStepsTotal.WithLabelValues(mode).Inc()
	if changed {
		r.SearchChangesTotal.WithLabelValues(mode).Inc()
	}
	r.SearchLastK.WithLabelValues(mode).Set(k)
}

// OnComplete implements observability.SearchHooks.
func (r *Registry) OnComplete(_ context.Context, mode string, _, _ int, d time.Duration) {
	r.SearchDuration.WithLabelValues(mode).Set(d.Seconds())
}

// OnCacheHit implements observability.CacheHooks.
func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheWrittenBytes.WithLabelValues(keyType).Add(float64(size))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ observability.PipelineHooks = (*Registry)(nil)
	_ observability.SolverHooks   = (*Registry)(nil)
	_ observability.SearchHooks   = (*Registry)(nil)
	_ observability.CacheHooks    = (*Registry)(nil)
)
