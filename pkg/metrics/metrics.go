package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Grid metrics
	GridBuilds        *prometheus.CounterVec
	GridBuildDuration prometheus.Histogram

	// Board metrics
	BoardLoads      *prometheus.CounterVec
	BoardStaleLoads prometheus.Counter
	BoardsActive    prometheus.Gauge

	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec

	// Event metrics
	EventsPublished *prometheus.CounterVec
	EventsReceived  *prometheus.CounterVec
}

// NewMetrics creates all application metrics and registers them with reg.
// A nil reg uses the default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),

		GridBuilds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grid_builds_total",
			Help:      "Total number of week grids built",
		}, []string{"role", "status"}),
		GridBuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grid_build_duration_seconds",
			Help:      "Time spent classifying a week grid",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05},
		}),

		BoardLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "board_loads_total",
			Help:      "Total number of board snapshot loads",
		}, []string{"status"}),
		BoardStaleLoads: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "board_stale_loads_total",
			Help:      "Snapshot loads discarded because the board moved on",
		}),
		BoardsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "boards_active",
			Help:      "Current number of live viewer boards",
		}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Availability cache lookups",
		}, []string{"layer", "result"}),

		DatabaseOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Agenda events published",
		}, []string{"type", "status"}),
		EventsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_received_total",
			Help:      "Agenda events received by the invalidation worker",
		}, []string{"type"}),
	}
}

// NewNop returns metrics registered with a throwaway registry, for tests.
func NewNop() *Metrics {
	return NewMetrics("test", prometheus.NewRegistry())
}
