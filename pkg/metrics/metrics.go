package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the statistics service.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Platform adapter metrics
	PlatformFetchTotal    *prometheus.CounterVec
	PlatformFetchDuration *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Batch refresh metrics
	BatchRefreshSuccessTotal prometheus.Counter
	BatchRefreshFailTotal    prometheus.Counter
	BatchRefreshDuration     prometheus.Histogram

	// Bot detection metrics
	BotFlagsTotal         *prometheus.CounterVec
	BotDetectionRunsTotal  prometheus.Counter
	BotDetectionConfidence prometheus.Histogram

	// Rankings metrics
	RankingRunsTotal    *prometheus.CounterVec
	RankingRunDuration  *prometheus.HistogramVec

	// Event consumer metrics
	EventsHandledTotal  *prometheus.CounterVec
	EventRetriesTotal   *prometheus.CounterVec
	EventDeadLetterTotal *prometheus.CounterVec

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge
	DBQueriesTotal      *prometheus.CounterVec
	DBQueryDuration     *prometheus.HistogramVec

	// System metrics
	ErrorsTotal *prometheus.CounterVec
	PanicTotal  prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status_code"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		PlatformFetchTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "platform_fetch_total",
				Help: "Total number of platform adapter fetches",
			},
			[]string{"platform", "status"},
		),
		PlatformFetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "platform_fetch_duration_seconds",
				Help:    "Duration of platform adapter fetches in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"platform"},
		),

		CacheHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stats_cache_hits_total",
				Help: "Total number of stats cache hits",
			},
			[]string{"platform"},
		),
		CacheMissesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stats_cache_misses_total",
				Help: "Total number of stats cache misses",
			},
			[]string{"platform"},
		),

		BatchRefreshSuccessTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "batch_refresh_success_total",
				Help: "Total number of successful per-clip refreshes in batch runs",
			},
		),
		BatchRefreshFailTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "batch_refresh_fail_total",
				Help: "Total number of failed per-clip refreshes in batch runs",
			},
		),
		BatchRefreshDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "batch_refresh_duration_seconds",
				Help:    "Duration of batch refresh runs in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 300, 600},
			},
		),

		BotFlagsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bot_flags_total",
				Help: "Total number of bot flags emitted, by type and severity",
			},
			[]string{"type", "severity"},
		),
		BotDetectionRunsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "bot_detection_runs_total",
				Help: "Total number of bot detection runs",
			},
		),
		BotDetectionConfidence: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bot_detection_confidence_score",
				Help:    "Distribution of confidence scores from bot detection runs",
				Buckets: []float64{0, 10, 25, 50, 70, 85, 95, 100},
			},
		),

		RankingRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ranking_runs_total",
				Help: "Total number of ranking calculation runs",
			},
			[]string{"kind", "status"},
		),
		RankingRunDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ranking_run_duration_seconds",
				Help:    "Duration of ranking calculation runs in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60},
			},
			[]string{"kind"},
		),

		EventsHandledTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "events_handled_total",
				Help: "Total number of events handled, by routing key and outcome",
			},
			[]string{"routing_key", "status"},
		),
		EventRetriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "event_retries_total",
				Help: "Total number of event handler retries",
			},
			[]string{"routing_key"},
		),
		EventDeadLetterTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "event_dead_letter_total",
				Help: "Total number of events routed to the dead-letter queue",
			},
			[]string{"routing_key"},
		),

		DBConnectionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsIdle: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
		DBQueriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "db_queries_total",
				Help: "Total number of database queries",
			},
			[]string{"operation", "table", "status"},
		),
		DBQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_query_duration_seconds",
				Help:    "Duration of database queries in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"operation", "table"},
		),

		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "errors_total",
				Help: "Total number of errors",
			},
			[]string{"kind", "component"},
		),
		PanicTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "panics_total",
				Help: "Total number of panics",
			},
		),
	}
}

// HTTPMiddleware returns a Gin middleware for HTTP metrics collection.
func (m *Metrics) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())

		labels := prometheus.Labels{
			"method":      c.Request.Method,
			"endpoint":    c.FullPath(),
			"status_code": statusCode,
		}

		m.HTTPRequestsTotal.With(labels).Inc()
		m.HTTPRequestDuration.With(labels).Observe(duration)
	}
}

// RecordPlatformFetch records metrics for a platform adapter fetch.
func (m *Metrics) RecordPlatformFetch(platform, status string, duration time.Duration) {
	m.PlatformFetchTotal.With(prometheus.Labels{"platform": platform, "status": status}).Inc()
	m.PlatformFetchDuration.With(prometheus.Labels{"platform": platform}).Observe(duration.Seconds())
}

// RecordCacheHit records a stats cache hit for a platform.
func (m *Metrics) RecordCacheHit(platform string) {
	m.CacheHitsTotal.With(prometheus.Labels{"platform": platform}).Inc()
}

// RecordCacheMiss records a stats cache miss for a platform.
func (m *Metrics) RecordCacheMiss(platform string) {
	m.CacheMissesTotal.With(prometheus.Labels{"platform": platform}).Inc()
}

// RecordBatchRefresh records the outcome counts and duration of a batch run.
func (m *Metrics) RecordBatchRefresh(successCount, failCount int, duration time.Duration) {
	m.BatchRefreshSuccessTotal.Add(float64(successCount))
	m.BatchRefreshFailTotal.Add(float64(failCount))
	m.BatchRefreshDuration.Observe(duration.Seconds())
}

// RecordBotFlag records an emitted bot flag.
func (m *Metrics) RecordBotFlag(flagType, severity string) {
	m.BotFlagsTotal.With(prometheus.Labels{"type": flagType, "severity": severity}).Inc()
}

// RecordBotDetectionRun records a completed bot-detection run.
func (m *Metrics) RecordBotDetectionRun(confidenceScore int) {
	m.BotDetectionRunsTotal.Inc()
	m.BotDetectionConfidence.Observe(float64(confidenceScore))
}

// RecordRankingRun records the outcome and duration of a ranking calculation.
func (m *Metrics) RecordRankingRun(kind, status string, duration time.Duration) {
	m.RankingRunsTotal.With(prometheus.Labels{"kind": kind, "status": status}).Inc()
	m.RankingRunDuration.With(prometheus.Labels{"kind": kind}).Observe(duration.Seconds())
}

// RecordEventHandled records the outcome of an event handler invocation.
func (m *Metrics) RecordEventHandled(routingKey, status string) {
	m.EventsHandledTotal.With(prometheus.Labels{"routing_key": routingKey, "status": status}).Inc()
}

// RecordEventRetry records a retried event handler invocation.
func (m *Metrics) RecordEventRetry(routingKey string) {
	m.EventRetriesTotal.With(prometheus.Labels{"routing_key": routingKey}).Inc()
}

// RecordDeadLetter records an event routed to the dead-letter queue.
func (m *Metrics) RecordDeadLetter(routingKey string) {
	m.EventDeadLetterTotal.With(prometheus.Labels{"routing_key": routingKey}).Inc()
}

// RecordDBQuery records metrics for a database query.
func (m *Metrics) RecordDBQuery(operation, table, status string, duration time.Duration) {
	m.DBQueriesTotal.With(prometheus.Labels{"operation": operation, "table": table, "status": status}).Inc()
	m.DBQueryDuration.With(prometheus.Labels{"operation": operation, "table": table}).Observe(duration.Seconds())
}

// RecordError records metrics for errors.
func (m *Metrics) RecordError(kind, component string) {
	m.ErrorsTotal.With(prometheus.Labels{"kind": kind, "component": component}).Inc()
}

// RecordPanic records metrics for panics.
func (m *Metrics) RecordPanic() {
	m.PanicTotal.Inc()
}

// UpdateDBConnections updates database connection gauges.
func (m *Metrics) UpdateDBConnections(active, idle int) {
	m.DBConnectionsActive.Set(float64(active))
	m.DBConnectionsIdle.Set(float64(idle))
}
