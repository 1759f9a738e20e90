package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the global metrics container wired through the coordinator,
// pathfinder, and graph manager.
type Metrics struct {
	// HTTP метрики
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Бизнес-метрики маршрутизации
	RouteCalculationsTotal   *prometheus.CounterVec
	RouteCalculationDuration *prometheus.HistogramVec
	CandidatesEvaluated      *prometheus.HistogramVec
	CacheOutcomesTotal       *prometheus.CounterVec
	OverloadedTotal          prometheus.Counter

	// Метрики графа портов
	GraphBuildDuration *prometheus.HistogramVec
	GraphNodesTotal     prometheus.Gauge
	GraphEdgesTotal     prometheus.Gauge
	GraphRebuildsTotal  *prometheus.CounterVec

	// Системные метрики
	MemoryUsage *prometheus.GaugeVec
	Goroutines  prometheus.Gauge

	// Информация о сервисе
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics registers every collector under namespace/subsystem and
// stores the result as the process-wide default.
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"route"},
		),

		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		RouteCalculationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "route_calculations_total",
				Help:      "Total number of route calculations by criterion and outcome",
			},
			[]string{"criterion", "outcome"},
		),

		RouteCalculationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "route_calculation_duration_seconds",
				Help:      "Duration of a full coordinator compute phase",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"criterion"},
		),

		CandidatesEvaluated: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pathfinder_candidates_evaluated",
				Help:      "Number of primary + alternative paths evaluated per pathfinder run",
				Buckets:   []float64{1, 2, 3, 4, 5, 8, 11},
			},
			[]string{"criterion"},
		),

		CacheOutcomesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "route_cache_outcomes_total",
				Help:      "Total number of route-cache lookups by outcome (hit, miss)",
			},
			[]string{"outcome"},
		),

		OverloadedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "coordinator_overloaded_total",
				Help:      "Total number of requests rejected for exceeding the compute-phase concurrency ceiling",
			},
		),

		GraphBuildDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_build_duration_seconds",
				Help:      "Duration of a port-graph build or rebuild",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"outcome"},
		),

		GraphNodesTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_nodes_total",
				Help:      "Number of nodes in the current port graph",
			},
		),

		GraphEdgesTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_edges_total",
				Help:      "Number of directed edges in the current port graph",
			},
		),

		GraphRebuildsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_rebuilds_total",
				Help:      "Total number of port-graph rebuilds by outcome",
			},
			[]string{"outcome"},
		),

		MemoryUsage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "memory_usage_bytes",
				Help:      "Current memory usage",
			},
			[]string{"type"},
		),

		Goroutines: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "goroutines",
				Help:      "Current number of goroutines",
			},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}

	defaultMetrics = m
	return m
}

// Get returns the process-wide metrics, lazily initializing them with the
// default namespace if no server startup path has called InitMetrics yet.
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("searoute", "")
	}
	return defaultMetrics
}

// RecordHTTPRequest records one completed HTTP request.
func (m *Metrics) RecordHTTPRequest(route, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordRouteCalculation records the outcome of a coordinator compute phase
// (spec §4.8 step 7: "emit duration, cache outcome, path count ...").
func (m *Metrics) RecordRouteCalculation(criterion, outcome string, duration time.Duration, candidatesEvaluated int) {
	m.RouteCalculationsTotal.WithLabelValues(criterion, outcome).Inc()
	m.RouteCalculationDuration.WithLabelValues(criterion).Observe(duration.Seconds())
	m.CandidatesEvaluated.WithLabelValues(criterion).Observe(float64(candidatesEvaluated))
}

// RecordCacheOutcome records a route-cache lookup result ("hit" or "miss").
func (m *Metrics) RecordCacheOutcome(outcome string) {
	m.CacheOutcomesTotal.WithLabelValues(outcome).Inc()
}

// RecordOverloaded records a request rejected by the compute-phase
// concurrency ceiling (spec §4.8 step 6).
func (m *Metrics) RecordOverloaded() {
	m.OverloadedTotal.Inc()
}

// RecordGraphBuild records a port-graph build attempt and, on success, the
// resulting graph's size.
func (m *Metrics) RecordGraphBuild(outcome string, duration time.Duration, nodes, edges int) {
	m.GraphBuildDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	m.GraphRebuildsTotal.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		m.GraphNodesTotal.Set(float64(nodes))
		m.GraphEdgesTotal.Set(float64(edges))
	}
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler возвращает HTTP handler для /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer запускает HTTP сервер для метрик
func StartMetricsServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		// Игнорируем ошибку записи - response уже отправлен
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint, ошибка записи не критична
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
