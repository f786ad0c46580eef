package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Wave planning metrics
	WavesPlanned        *prometheus.CounterVec
	PickTasksGenerated  prometheus.Counter
	WaveTransitions     *prometheus.CounterVec
	OrderClaimConflicts prometheus.Counter
	EmptySelections     prometheus.Counter

	// Storage metrics
	MongoOperations        *prometheus.CounterVec
	MongoOperationDuration *prometheus.HistogramVec
}

// Config holds metrics configuration.
type Config struct {
	ServiceName string
	Namespace   string
}

// DefaultConfig returns default metrics configuration.
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "wms",
	}
}

// New creates a new Metrics instance with its own registry.
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		serviceName: config.ServiceName,
		registry:    registry,
	}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"service", "method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests currently being processed",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.WavesPlanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "waves_planned_total",
			Help:      "Total number of waves planned, by picking strategy",
		},
		[]string{"service", "strategy"},
	)

	m.PickTasksGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "pick_tasks_generated_total",
			Help:        "Total number of pick tasks generated",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.WaveTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "wave_status_transitions_total",
			Help:      "Total number of wave status transitions, by target status",
		},
		[]string{"service", "status"},
	)

	m.OrderClaimConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "order_claim_conflicts_total",
			Help:        "Concurrent wave creations rejected by the order claim constraint",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.EmptySelections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "empty_selections_total",
			Help:        "Wave creation requests that matched no eligible orders",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.MongoOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "mongodb_operations_total",
			Help:      "Total number of MongoDB operations",
		},
		[]string{"service", "collection", "operation", "status"},
	)

	m.MongoOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "mongodb_operation_duration_seconds",
			Help:      "MongoDB operation duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"service", "collection", "operation"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.WavesPlanned,
		m.PickTasksGenerated,
		m.WaveTransitions,
		m.OrderClaimConflicts,
		m.EmptySelections,
		m.MongoOperations,
		m.MongoOperationDuration,
	)

	return m
}

// ServiceName returns the service name metrics are labelled with.
func (m *Metrics) ServiceName() string {
	return m.serviceName
}

// Handler returns the HTTP handler serving this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
