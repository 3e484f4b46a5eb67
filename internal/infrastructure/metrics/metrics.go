package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. It implements usecase.Metrics.
type Metrics struct {
	registry *prometheus.Registry

	// Ledger metrics
	ExpensesCreated  prometheus.Counter
	RecurrenceSpawns prometheus.Counter
	Imports          *prometheus.CounterVec
	ImportedExpenses *prometheus.CounterVec
	StoreErrors      *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge
}

// New creates a registry with the Go and process collectors and registers
// all gospend metrics on it.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(registry)
}

// NewWithRegistry registers all gospend metrics on registry.
func NewWithRegistry(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		ExpensesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "gospend_expenses_created_total",
			Help: "Total number of expenses created by users",
		}),
		RecurrenceSpawns: factory.NewCounter(prometheus.CounterOpts{
			Name: "gospend_recurrences_materialized_total",
			Help: "Total number of expenses spawned from recurring templates",
		}),
		Imports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gospend_imports_total",
				Help: "Total number of completed imports by mode",
			},
			[]string{"mode"},
		),
		ImportedExpenses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gospend_imported_expenses_total",
				Help: "Total number of expenses added by imports",
			},
			[]string{"mode"},
		),
		StoreErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gospend_store_errors_total",
				Help: "Total blob store failures by operation",
			},
			[]string{"operation"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gospend_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gospend_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gospend_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ExpenseCreated() {
	m.ExpensesCreated.Inc()
}

func (m *Metrics) RecurrencesMaterialized(n int) {
	if n > 0 {
		m.RecurrenceSpawns.Add(float64(n))
	}
}

func (m *Metrics) ImportCompleted(mode string, added int) {
	m.Imports.WithLabelValues(mode).Inc()
	if added > 0 {
		m.ImportedExpenses.WithLabelValues(mode).Add(float64(added))
	}
}

func (m *Metrics) StoreError(operation string) {
	m.StoreErrors.WithLabelValues(operation).Inc()
}
