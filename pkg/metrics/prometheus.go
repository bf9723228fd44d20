// Package metrics provides Prometheus metrics for the courtrank service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// defaultIterationBuckets spans the default iteration cap of 100.
var defaultIterationBuckets = []float64{5, 10, 20, 30, 40, 50, 60, 80, 100, 200} //nolint:gochecknoglobals // bucket layout

// Manager owns every Prometheus collector used by the service.
type Manager struct {
	namespace        string
	subsystem        string
	latencyBuckets   []float64
	iterationBuckets []float64
	registry         prometheus.Registerer

	// Ingestion
	gamesReceived  prometheus.Counter
	gamesDuplicate prometheus.Counter
	gamesDiscarded *prometheus.CounterVec
	gamesStored    prometheus.Gauge

	// Ranking
	rebuilds           prometheus.Counter
	rebuildLatency     prometheus.Histogram
	rebuildLastUnix    prometheus.Gauge
	pagerankIterations prometheus.Histogram
	nonConvergence     prometheus.Counter
	rankedTeams        prometheus.Gauge
	graphEdges         prometheus.Gauge

	// Queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueued          prometheus.Counter
	queueDequeued          prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec
	errorLatency      *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegisterer(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "courtrank",
		subsystem:        "ranking",
		latencyBuckets:   prometheus.DefBuckets,
		iterationBuckets: defaultIterationBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.gamesReceived = m.counter("games_received_total", "Total number of games accepted for ingestion")
	m.gamesDuplicate = m.counter("games_duplicate_total", "Total number of games rejected as duplicates")
	m.gamesDiscarded = m.counterVec("games_discarded_total", "Games dropped before reaching the graph", "reason")
	m.gamesStored = m.gauge("games_stored", "Number of complete outcomes in the outcome store")

	m.rebuilds = m.counter("rebuilds_total", "Total number of successful ranking rebuilds")
	m.rebuildLatency = m.histogram("rebuild_latency_milliseconds", "Ranking rebuild latency in milliseconds", m.latencyBuckets)
	m.rebuildLastUnix = m.gauge("rebuild_last_unix_seconds", "Unix time of the last published ranking")
	m.pagerankIterations = m.histogram("pagerank_iterations", "Power iterations used per PageRank run", m.iterationBuckets)
	m.nonConvergence = m.counter("pagerank_non_convergence_total", "PageRank runs that hit the iteration cap")
	m.rankedTeams = m.gauge("teams", "Number of teams in the published ranking")
	m.graphEdges = m.gauge("graph_edges", "Number of distinct loser to winner edges in the published graph")

	m.queueSize = m.gauge("queue_size", "Current number of queued games")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum number of queued games")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Total number of games enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Total number of games dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Enqueue latency in milliseconds", m.latencyBuckets)

	m.workerCount = m.gauge("worker_count", "Number of ingest workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Per-game ingest latency in milliseconds", m.latencyBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Total number of ingest errors")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		m.latencyBuckets, "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorsByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of operations that failed", m.latencyBuckets, "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Ingestion metrics.

// RecordGameReceived increments the accepted games counter.
func RecordGameReceived() { globalManager.gamesReceived.Inc() }

// RecordGameDuplicate increments the duplicate games counter.
func RecordGameDuplicate() { globalManager.gamesDuplicate.Inc() }

// RecordGameDiscarded counts a game dropped before the graph, by reason.
func RecordGameDiscarded(reason string) { globalManager.gamesDiscarded.WithLabelValues(reason).Inc() }

// UpdateGamesStored sets the number of outcomes held by the outcome store.
func UpdateGamesStored(count int) { globalManager.gamesStored.Set(float64(count)) }

// Ranking metrics.

// RecordRebuild records a published rebuild and its latency.
func RecordRebuild(latencyMs float64) {
	globalManager.rebuilds.Inc()
	globalManager.rebuildLatency.Observe(latencyMs)
	globalManager.rebuildLastUnix.Set(float64(time.Now().Unix()))
}

// RecordPageRankIterations observes the iteration count of one PageRank run.
func RecordPageRankIterations(iterations int) {
	globalManager.pagerankIterations.Observe(float64(iterations))
}

// RecordNonConvergence increments the non-convergence counter.
func RecordNonConvergence() { globalManager.nonConvergence.Inc() }

// UpdateRankedTeams sets the number of teams in the published ranking.
func UpdateRankedTeams(count int) { globalManager.rankedTeams.Set(float64(count)) }

// UpdateGraphEdges sets the number of edges in the published graph.
func UpdateGraphEdges(count int) { globalManager.graphEdges.Set(float64(count)) }

// Queue metrics.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// RecordQueueProcessingLatency records enqueue latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker metrics.

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records per-game ingest latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error metrics.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System metrics.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
