package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection
type Collector struct {
	// API Metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIErrorsTotal     *prometheus.CounterVec

	// Provider Fetch Metrics
	FetchRequestsTotal  *prometheus.CounterVec
	FetchRetriesTotal   prometheus.Counter
	FetchDuration       prometheus.Histogram
	FetchPagesTotal     prometheus.Counter
	UpstreamErrorsTotal *prometheus.CounterVec

	// Cache Metrics
	CacheHitsTotal      prometheus.Counter
	CacheMissesTotal    prometheus.Counter
	CacheEvictionsTotal prometheus.Counter
	CacheEntries        prometheus.Gauge

	// Pipeline Metrics
	PipelineDuration       prometheus.Histogram
	RecordsNormalizedTotal prometheus.Counter
	RecordsFilteredTotal   prometheus.Counter
	RecordsDedupedTotal    prometheus.Counter
	PlaceholderServedTotal prometheus.Counter
	ParseSkipsTotal        *prometheus.CounterVec

	// Database Metrics
	DBQueryDuration  *prometheus.HistogramVec
	DBConnectionPool *prometheus.GaugeVec
	DBErrorsTotal    *prometheus.CounterVec
}

// NewCollector creates a new metrics collector
func NewCollector(namespace string) *Collector {
	return &Collector{
		APIRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),

		APIRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"endpoint"},
		),

		APIErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_errors_total",
				Help:      "Total number of API errors by type",
			},
			[]string{"error_type", "endpoint"},
		),

		FetchRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_fetch_requests_total",
				Help:      "Total number of upstream fetch requests by outcome",
			},
			[]string{"outcome"},
		),

		FetchRetriesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_fetch_retries_total",
				Help:      "Total number of fetch retry attempts",
			},
		),

		FetchDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_fetch_duration_seconds",
				Help:      "Duration of upstream fetch operations in seconds",
				Buckets:   []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),

		FetchPagesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_fetch_pages_total",
				Help:      "Total number of result pages fetched from the provider",
			},
		),

		UpstreamErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_upstream_errors_total",
				Help:      "Total number of upstream errors by kind",
			},
			[]string{"kind"},
		),

		CacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "response_cache_hits_total",
				Help:      "Total number of response cache hits",
			},
		),

		CacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "response_cache_misses_total",
				Help:      "Total number of response cache misses",
			},
		),

		CacheEvictionsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "response_cache_evictions_total",
				Help:      "Total number of expired cache entries purged",
			},
		),

		CacheEntries: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "response_cache_entries",
				Help:      "Current number of entries in the response cache",
			},
		),

		PipelineDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_duration_seconds",
				Help:      "Duration of a full fetch-and-aggregate pass in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
		),

		RecordsNormalizedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_records_normalized_total",
				Help:      "Total number of raw flight records normalized",
			},
		),

		RecordsFilteredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_records_filtered_total",
				Help:      "Total number of records dropped by filter predicates",
			},
		),

		RecordsDedupedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_records_deduped_total",
				Help:      "Total number of duplicate flight records collapsed",
			},
		),

		PlaceholderServedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_placeholder_served_total",
				Help:      "Total number of passes degraded to the placeholder dataset",
			},
		),

		ParseSkipsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_parse_skips_total",
				Help:      "Total number of per-record parse skips by stage",
			},
			[]string{"stage"},
		),

		DBQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Database query duration in seconds by query type",
				Buckets:   []float64{0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5},
			},
			[]string{"query_type"},
		),

		DBConnectionPool: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connection_pool",
				Help:      "Database connection pool statistics",
			},
			[]string{"state"}, // "in_use", "idle", "total"
		),

		DBErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_errors_total",
				Help:      "Total number of database errors by type",
			},
			[]string{"error_type"},
		),
	}
}

// Timer provides timing functionality for operations
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

// NewTimer creates a new timer
func (c *Collector) NewTimer(histogram prometheus.Observer) *Timer {
	return &Timer{
		start:    time.Now(),
		observer: histogram,
	}
}

// ObserveDuration records the elapsed time since timer creation
func (t *Timer) ObserveDuration() time.Duration {
	duration := time.Since(t.start)
	if t.observer != nil {
		t.observer.Observe(duration.Seconds())
	}
	return duration
}

// RecordAPIRequest increments API request counter
func (c *Collector) RecordAPIRequest(endpoint, method, status string) {
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// RecordAPIError increments API error counter
func (c *Collector) RecordAPIError(errorType, endpoint string) {
	c.APIErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

// RecordFetch increments the fetch request counter for an outcome
func (c *Collector) RecordFetch(outcome string) {
	c.FetchRequestsTotal.WithLabelValues(outcome).Inc()
}

// RecordUpstreamError increments upstream error counter by kind
func (c *Collector) RecordUpstreamError(kind string) {
	c.UpstreamErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordParseSkip increments the parse skip counter for a pipeline stage
func (c *Collector) RecordParseSkip(stage string) {
	c.ParseSkipsTotal.WithLabelValues(stage).Inc()
}

// RecordDBError increments database error counter
func (c *Collector) RecordDBError(errorType string) {
	c.DBErrorsTotal.WithLabelValues(errorType).Inc()
}

// UpdateDBConnectionPool updates database connection pool metrics
func (c *Collector) UpdateDBConnectionPool(inUse, idle, total int) {
	c.DBConnectionPool.WithLabelValues("in_use").Set(float64(inUse))
	c.DBConnectionPool.WithLabelValues("idle").Set(float64(idle))
	c.DBConnectionPool.WithLabelValues("total").Set(float64(total))
}
