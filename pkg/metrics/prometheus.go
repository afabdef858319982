// Package metrics provides Prometheus metrics for the Vouch reputation service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the Vouch service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Core Business Metrics - The mutation pipeline is the product
	mutationsApplied     *prometheus.CounterVec
	mutationsRejected    *prometheus.CounterVec
	applyLatency         prometheus.Histogram
	reputationRecomputes prometheus.Counter
	skillsVerified       prometheus.Counter
	projectsVerified     prometheus.Counter

	// Operational Health Metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDequeues    prometheus.Counter
	queueRejections  prometheus.Counter
	totalTalents     prometheus.Gauge

	// Journal Metrics - Durability pipeline
	journalAppends       prometheus.Counter
	journalAppendErrors  prometheus.Counter
	journalReplayed      prometheus.Counter
	journalAppendLatency prometheus.Histogram

	// Read Path Metrics
	analyticsReports   prometheus.Counter
	leaderboardQueries prometheus.Counter
	rankQueries        prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     prometheus.Counter

	// Enhanced Error Metrics
	errorsByComponent *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "vouch",
		subsystem:        "reputation",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Business Metrics - Mutation throughput and outcomes
	m.mutationsApplied = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "mutations_applied_total",
			Help:      "Total number of mutations applied, by kind",
		},
		[]string{"kind"},
	)

	m.mutationsRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "mutations_rejected_total",
			Help:      "Total number of mutations rejected by precondition checks, by kind and reason",
		},
		[]string{"kind", "reason"},
	)

	m.applyLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "apply_latency_milliseconds",
		Help:      "Histogram of single-mutation apply latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.reputationRecomputes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reputation_recomputes_total",
		Help:      "Total number of reputation score recomputations",
	})

	m.skillsVerified = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "skills_verified_total",
		Help:      "Total number of skills that crossed the verification threshold",
	})

	m.projectsVerified = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "projects_verified_total",
		Help:      "Total number of projects verified",
	})

	// Operational Health Metrics - Transaction queue backlog
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the transaction queue (backlog indicator)",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum transaction queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Transaction queue utilization ratio (current size / capacity)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of mutations enqueued",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of mutations dequeued by the applier",
	})

	m.queueRejections = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_rejections_total",
		Help:      "Total number of mutations rejected because the queue was full",
	})

	m.totalTalents = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_talents",
		Help:      "Total number of registered talents (business scale)",
	})

	// Journal Metrics - Durability pipeline
	m.journalAppends = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "journal_appends_total",
		Help:      "Total number of mutations appended to the journal",
	})

	m.journalAppendErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "journal_append_errors_total",
		Help:      "Total number of journal append failures",
	})

	m.journalReplayed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "journal_replayed_total",
		Help:      "Total number of mutations replayed from the journal at startup",
	})

	m.journalAppendLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "journal_append_latency_milliseconds",
		Help:      "Journal append latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Read Path Metrics
	m.analyticsReports = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analytics_reports_total",
		Help:      "Total number of analytics reports generated",
	})

	m.leaderboardQueries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_queries_total",
		Help:      "Total number of leaderboard queries served",
	})

	m.rankQueries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rank_queries_total",
		Help:      "Total number of rank queries served",
	})

	// HTTP Performance Metrics - User experience indicators
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds (user experience)",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRateLimited = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_rate_limited_total",
		Help:      "Total number of HTTP requests rejected by the rate limiter",
	})

	// Enhanced Error Metrics - Detailed error tracking
	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// RecordMutationApplied increments the applied mutations counter for a kind.
func RecordMutationApplied(kind string) {
	globalManager.mutationsApplied.WithLabelValues(kind).Inc()
}

// RecordMutationRejected increments the rejected mutations counter for a kind and reason.
func RecordMutationRejected(kind, reason string) {
	globalManager.mutationsRejected.WithLabelValues(kind, reason).Inc()
}

// RecordApplyLatency records single-mutation apply latency in milliseconds.
func RecordApplyLatency(latencyMs float64) {
	globalManager.applyLatency.Observe(latencyMs)
}

// RecordReputationRecompute increments the reputation recompute counter.
func RecordReputationRecompute() {
	globalManager.reputationRecomputes.Inc()
}

// RecordSkillVerified increments the verified skills counter.
func RecordSkillVerified() {
	globalManager.skillsVerified.Inc()
}

// RecordProjectVerified increments the verified projects counter.
func RecordProjectVerified() {
	globalManager.projectsVerified.Inc()
}

// UpdateQueueSize sets the current transaction queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum transaction queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the transaction queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueRejection increments the queue-full rejection counter.
func RecordQueueRejection() {
	globalManager.queueRejections.Inc()
}

// UpdateTotalTalents sets the total registered talents count.
func UpdateTotalTalents(count int) {
	globalManager.totalTalents.Set(float64(count))
}

// RecordJournalAppend increments the journal append counter.
func RecordJournalAppend() {
	globalManager.journalAppends.Inc()
}

// RecordJournalAppendError increments the journal append error counter.
func RecordJournalAppendError() {
	globalManager.journalAppendErrors.Inc()
}

// RecordJournalReplayed adds to the replayed mutations counter.
func RecordJournalReplayed(count int) {
	globalManager.journalReplayed.Add(float64(count))
}

// RecordJournalAppendLatency records journal append latency in milliseconds.
func RecordJournalAppendLatency(latencyMs float64) {
	globalManager.journalAppendLatency.Observe(latencyMs)
}

// RecordAnalyticsReport increments the analytics reports counter.
func RecordAnalyticsReport() {
	globalManager.analyticsReports.Inc()
}

// RecordLeaderboardQuery increments the leaderboard queries counter.
func RecordLeaderboardQuery() {
	globalManager.leaderboardQueries.Inc()
}

// RecordRankQuery increments the rank queries counter.
func RecordRankQuery() {
	globalManager.rankQueries.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPRateLimited increments the rate limiter rejection counter.
func RecordHTTPRateLimited() {
	globalManager.httpRateLimited.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
