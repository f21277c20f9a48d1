// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Market data metrics
	BarsLoaded         *prometheus.CounterVec
	BarsIngested       prometheus.Counter
	DataLoadErrors     *prometheus.CounterVec
	HistoryLoadLatency prometheus.Histogram

	// Signal metrics
	EventsDetected *prometheus.CounterVec
	RecordsEmitted prometheus.Counter

	// Simulation metrics
	OrdersSimulated prometheus.Counter
	OrdersSkipped   prometheus.Counter
	RunsCompleted   *prometheus.CounterVec
	RunDuration     prometheus.Histogram

	// Optimizer metrics
	CandidatesEvaluated prometheus.Counter
	SearchDuration      prometheus.Histogram
	SearchWorkers       prometheus.Gauge

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "equity_strategy_lab"
	}

	return &Metrics{
		// Market data metrics
		BarsLoaded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "bars_loaded_total",
			Help:      "Total number of daily bars loaded by source",
		}, []string{"source"}),
		BarsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "bars_ingested_total",
			Help:      "Total number of daily bars written to storage",
		}),
		DataLoadErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "load_errors_total",
			Help:      "Total number of history load errors by type",
		}, []string{"error_type"}),
		HistoryLoadLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "history_load_latency_seconds",
			Help:      "History load latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Signal metrics
		EventsDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signal",
			Name:      "events_detected_total",
			Help:      "Total number of events detected by rule",
		}, []string{"rule"}),
		RecordsEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signal",
			Name:      "indicator_records_emitted_total",
			Help:      "Total number of indicator records emitted",
		}),

		// Simulation metrics
		OrdersSimulated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketsim",
			Name:      "orders_simulated_total",
			Help:      "Total number of orders executed in simulation",
		}),
		OrdersSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketsim",
			Name:      "orders_skipped_total",
			Help:      "Total number of orders dated outside the trading calendar",
		}),
		RunsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketsim",
			Name:      "runs_total",
			Help:      "Total number of simulation runs by status",
		}, []string{"status"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "marketsim",
			Name:      "run_duration_seconds",
			Help:      "Simulation run duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Optimizer metrics
		CandidatesEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "optimize",
			Name:      "candidates_evaluated_total",
			Help:      "Total number of allocation candidates evaluated",
		}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "optimize",
			Name:      "search_duration_seconds",
			Help:      "Allocation search duration in seconds",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		SearchWorkers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "optimize",
			Name:      "search_workers",
			Help:      "Number of workers used by the last search",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordBarsLoaded adds to the bars loaded counter for a source.
func RecordBarsLoaded(source string, count int) {
	DefaultMetrics.BarsLoaded.WithLabelValues(source).Add(float64(count))
}

// RecordBarsIngested adds to the bars ingested counter.
func RecordBarsIngested(count int) {
	DefaultMetrics.BarsIngested.Add(float64(count))
}

// RecordLoadError records a history load error.
func RecordLoadError(errorType string) {
	DefaultMetrics.DataLoadErrors.WithLabelValues(errorType).Inc()
}

// RecordEventsDetected adds to the events detected counter for a rule.
func RecordEventsDetected(rule string, count int) {
	DefaultMetrics.EventsDetected.WithLabelValues(rule).Add(float64(count))
}

// RecordSimulationRun records one simulation run's outcome.
func RecordSimulationRun(status string, ordersExecuted, ordersSkipped int, durationSeconds float64) {
	DefaultMetrics.RunsCompleted.WithLabelValues(status).Inc()
	DefaultMetrics.OrdersSimulated.Add(float64(ordersExecuted))
	DefaultMetrics.OrdersSkipped.Add(float64(ordersSkipped))
	DefaultMetrics.RunDuration.Observe(durationSeconds)
}

// RecordSearch records one allocation search.
func RecordSearch(candidates, workers int, durationSeconds float64) {
	DefaultMetrics.CandidatesEvaluated.Add(float64(candidates))
	DefaultMetrics.SearchWorkers.Set(float64(workers))
	DefaultMetrics.SearchDuration.Observe(durationSeconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
