// Package metrics provides Prometheus metrics for the behavior engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus metric exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Observation pipeline
	observationsProcessed prometheus.Counter
	observationsDuplicate prometheus.Counter
	observationsRejected  prometheus.Counter
	blundersLabeled       prometheus.Counter
	hintsRecorded         prometheus.Counter
	hoversRecorded        prometheus.Counter

	// Classification
	segmentUsers       *prometheus.GaugeVec
	segmentTransitions prometheus.Counter

	// Opponent engine
	opponentMoves        *prometheus.CounterVec
	opponentThinkLatency prometheus.Histogram

	// Nudge scheduler
	nudgesShown      *prometheus.CounterVec
	nudgesSuppressed *prometheus.CounterVec

	// Telemetry queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Service state
	activeSessions  prometheus.Gauge
	profilesTracked prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryBytes    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global manager instance plus the custom registry served on /healthz; the
// default Go collectors are unregistered in main to keep the exposition small.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "wdm",
		subsystem:        "behavior",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.observationsProcessed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "observations_processed_total",
		Help: "Move observations aggregated into profiles.",
	})
	m.observationsDuplicate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "observations_duplicate_total",
		Help: "Move observations replayed with an already-seen (game, ply) key.",
	})
	m.observationsRejected = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "observations_rejected_total",
		Help: "Move observations rejected as illegal for the supplied position.",
	})
	m.blundersLabeled = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "blunders_labeled_total",
		Help: "Human moves the quality oracle labeled as blunders.",
	})
	m.hintsRecorded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "hints_recorded_total",
		Help: "Hint-use events folded into profiles.",
	})
	m.hoversRecorded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "hovers_recorded_total",
		Help: "Hover events folded into sessions and profiles.",
	})

	m.segmentUsers = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "segment_users",
		Help: "Users currently cached per behavioral segment.",
	}, []string{"segment"})
	m.segmentTransitions = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "segment_transitions_total",
		Help: "Recomputations that moved a user to a different segment.",
	})

	m.opponentMoves = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "opponent_moves_total",
		Help: "Opponent replies selected, by engine mode.",
	}, []string{"mode"})
	m.opponentThinkLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "opponent_think_latency_ms",
		Help:    "Simulated opponent thinking delay in milliseconds.",
		Buckets: m.histogramBuckets,
	})

	m.nudgesShown = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "nudges_shown_total",
		Help: "Nudges surfaced to users, by trigger reason.",
	}, []string{"reason"})
	m.nudgesSuppressed = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "nudges_suppressed_total",
		Help: "Nudge evaluations that did not fire, by suppression cause.",
	}, []string{"cause"})

	m.queueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_size",
		Help: "Telemetry events currently queued.",
	})
	m.queueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_capacity",
		Help: "Telemetry queue capacity.",
	})
	m.queueUtilization = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_utilization",
		Help: "Telemetry queue fill ratio (0-1).",
	})
	m.queueEnqueues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_enqueues_total",
		Help: "Telemetry events accepted into the queue.",
	})
	m.queueDequeues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_dequeues_total",
		Help: "Telemetry events handed to workers.",
	})
	m.queueEnqueueErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_enqueue_errors_total",
		Help: "Telemetry events dropped on enqueue (backpressure or closed queue).",
	})

	m.workerProcessingLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "worker_processing_latency_ms",
		Help:    "End-to-end telemetry fold latency in milliseconds.",
		Buckets: m.histogramBuckets,
	})
	m.workerErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_errors_total",
		Help: "Telemetry events that failed to fold.",
	})

	m.activeSessions = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "active_sessions",
		Help: "Sessions currently tracked.",
	})
	m.profilesTracked = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "profiles_tracked",
		Help: "User profiles currently held by the store.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds.",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.errorsByComponent = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "errors_total",
		Help: "Errors by component and reason.",
	}, []string{"component", "reason"})

	m.systemMemoryBytes = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_memory_bytes",
		Help: "Heap bytes in use.",
	})
	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_goroutines",
		Help: "Current goroutine count.",
	})
}

// GetRegistry returns the custom registry for exposition handlers.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level record helpers over the global manager.

func RecordObservationProcessed() { globalManager.observationsProcessed.Inc() }
func RecordObservationDuplicate() { globalManager.observationsDuplicate.Inc() }
func RecordObservationRejected()  { globalManager.observationsRejected.Inc() }
func RecordBlunderLabeled()       { globalManager.blundersLabeled.Inc() }
func RecordHint()                 { globalManager.hintsRecorded.Inc() }
func RecordHover()                { globalManager.hoversRecorded.Inc() }

func UpdateSegmentUsers(segment string, count int) {
	globalManager.segmentUsers.WithLabelValues(segment).Set(float64(count))
}
func RecordSegmentTransition() { globalManager.segmentTransitions.Inc() }

func RecordOpponentMove(mode string) { globalManager.opponentMoves.WithLabelValues(mode).Inc() }
func RecordOpponentThinkLatency(ms float64) {
	globalManager.opponentThinkLatency.Observe(ms)
}

func RecordNudgeShown(reason string) { globalManager.nudgesShown.WithLabelValues(reason).Inc() }
func RecordNudgeSuppressed(cause string) {
	globalManager.nudgesSuppressed.WithLabelValues(cause).Inc()
}

func UpdateQueueSize(n int)         { globalManager.queueSize.Set(float64(n)) }
func UpdateQueueCapacity(n int)     { globalManager.queueCapacity.Set(float64(n)) }
func UpdateQueueUtilization(r float64) { globalManager.queueUtilization.Set(r) }
func RecordQueueEnqueue()           { globalManager.queueEnqueues.Inc() }
func RecordQueueDequeue()           { globalManager.queueDequeues.Inc() }
func RecordQueueEnqueueError()      { globalManager.queueEnqueueErrors.Inc() }

func RecordWorkerProcessingLatency(ms float64) {
	globalManager.workerProcessingLatency.Observe(ms)
}
func RecordWorkerError() { globalManager.workerErrors.Inc() }

func UpdateActiveSessions(n int)  { globalManager.activeSessions.Set(float64(n)) }
func UpdateProfilesTracked(n int) { globalManager.profilesTracked.Set(float64(n)) }

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}
func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

func RecordErrorByComponent(component, reason string) {
	globalManager.errorsByComponent.WithLabelValues(component, reason).Inc()
}

func UpdateSystemMemoryBytes(n uint64) { globalManager.systemMemoryBytes.Set(float64(n)) }
func UpdateSystemGoroutines(n int)     { globalManager.systemGoroutineCount.Set(float64(n)) }
