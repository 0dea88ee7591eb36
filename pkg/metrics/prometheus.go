// Package metrics provides Prometheus metrics for the LEVEL UP heist backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Heist lifecycle
	heistsStarted   prometheus.Counter
	heistsBlocked   prometheus.Counter
	heistsResolved  *prometheus.CounterVec
	activeHeists    prometheus.Gauge
	safeAttempts    prometheus.Counter
	cashTransferred *prometheus.CounterVec
	heistDuration   prometheus.Histogram

	// Sweeper
	sweeperRuns    prometheus.Counter
	sweeperExpired prometheus.Counter

	// Snapshot
	snapshotDuration prometheus.Histogram
	snapshotLastUnix prometheus.Gauge
	snapshotErrors   prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Auth
	authFailures prometheus.Counter
	loginLimited prometheus.Counter

	// Notifier
	eventSubscribers prometheus.Gauge
	eventsDropped    prometheus.Counter

	// System
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
		namespace:        "levelup",
		subsystem:        "heist",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.heistsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "started_total",
		Help:      "Total number of heists initiated",
	})

	m.heistsBlocked = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "blocked_total",
		Help:      "Total number of heist attempts blocked by a shield",
	})

	m.heistsResolved = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "resolved_total",
		Help:      "Total number of heists resolved, by outcome and reason",
	}, []string{"outcome", "reason"})

	m.activeHeists = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active",
		Help:      "Number of currently active heists",
	})

	m.safeAttempts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "safe_attempts_total",
		Help:      "Total number of safe-cracking submissions",
	})

	m.cashTransferred = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cash_transferred_total",
		Help:      "Total cash moved by heist resolutions, by outcome",
	}, []string{"outcome"})

	m.heistDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duration_seconds",
		Help:      "Histogram of heist wall-clock duration at resolution",
		Buckets:   []float64{30, 60, 90, 120, 150, 180, 210, 240, 300},
	})

	m.sweeperRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "sweeper",
		Name:      "runs_total",
		Help:      "Total number of expiry sweeper passes",
	})

	m.sweeperExpired = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "sweeper",
		Name:      "expired_total",
		Help:      "Total number of heists force-failed by the sweeper",
	})

	m.snapshotDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "snapshot",
		Name:      "duration_milliseconds",
		Help:      "Histogram of state snapshot write duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.snapshotLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "snapshot",
		Name:      "last_unix_seconds",
		Help:      "Unix timestamp of the last successful state snapshot",
	})

	m.snapshotErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "snapshot",
		Name:      "errors_total",
		Help:      "Total number of failed snapshot writes",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method"})

	m.authFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "auth",
		Name:      "failures_total",
		Help:      "Total number of rejected authentication attempts",
	})

	m.loginLimited = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "auth",
		Name:      "rate_limited_total",
		Help:      "Total number of rate-limited login attempts",
	})

	m.eventSubscribers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "notify",
		Name:      "subscribers",
		Help:      "Number of connected event stream subscribers",
	})

	m.eventsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "notify",
		Name:      "dropped_total",
		Help:      "Total number of events dropped on slow subscribers",
	})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_bytes",
		Help:      "Current allocated memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutines",
		Help:      "Current number of goroutines",
	})
}

// Package-level helpers recording on the global manager.

// RecordHeistStarted increments the started-heist counter.
func RecordHeistStarted() {
	globalManager.heistsStarted.Inc()
}

// RecordHeistBlocked increments the shield-block counter.
func RecordHeistBlocked() {
	globalManager.heistsBlocked.Inc()
}

// RecordHeistResolved records a terminal transition with its outcome and reason.
func RecordHeistResolved(outcome, reason string) {
	globalManager.heistsResolved.WithLabelValues(outcome, reason).Inc()
}

// UpdateActiveHeists sets the active-heist gauge.
func UpdateActiveHeists(count int) {
	globalManager.activeHeists.Set(float64(count))
}

// RecordSafeAttempt increments the safe submission counter.
func RecordSafeAttempt() {
	globalManager.safeAttempts.Inc()
}

// RecordCashTransferred adds to the transferred-cash counter for an outcome.
func RecordCashTransferred(outcome string, amount int64) {
	globalManager.cashTransferred.WithLabelValues(outcome).Add(float64(amount))
}

// RecordHeistDuration observes heist wall-clock duration in seconds.
func RecordHeistDuration(seconds float64) {
	globalManager.heistDuration.Observe(seconds)
}

// RecordSweeperRun increments the sweeper pass counter.
func RecordSweeperRun() {
	globalManager.sweeperRuns.Inc()
}

// RecordSweeperExpired increments the sweeper force-fail counter.
func RecordSweeperExpired() {
	globalManager.sweeperExpired.Inc()
}

// RecordSnapshotDuration observes a snapshot write duration and stamps it.
func RecordSnapshotDuration(ms float64, unix int64) {
	globalManager.snapshotDuration.Observe(ms)
	globalManager.snapshotLastUnix.Set(float64(unix))
}

// RecordSnapshotError increments the failed snapshot counter.
func RecordSnapshotError() {
	globalManager.snapshotErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(durationMs)
}

// RecordAuthFailure increments the rejected-auth counter.
func RecordAuthFailure() {
	globalManager.authFailures.Inc()
}

// RecordLoginRateLimited increments the rate-limited login counter.
func RecordLoginRateLimited() {
	globalManager.loginLimited.Inc()
}

// UpdateEventSubscribers sets the subscriber gauge.
func UpdateEventSubscribers(count int) {
	globalManager.eventSubscribers.Set(float64(count))
}

// RecordEventDropped increments the dropped-event counter.
func RecordEventDropped() {
	globalManager.eventsDropped.Inc()
}

// UpdateSystemMemoryUsage sets the allocated-memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
