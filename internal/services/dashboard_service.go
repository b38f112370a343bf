package services

import (
	"context"
	"time"

	"flightops-platform/internal/models"
	"flightops-platform/internal/pipeline"
	"flightops-platform/internal/provider"
	"flightops-platform/pkg/logging"
	"flightops-platform/pkg/metrics"
)

// Fetcher resolves a provider query. Satisfied by *provider.Client.
type Fetcher interface {
	Fetch(ctx context.Context, query provider.Query) (*models.FlightsResponse, error)
}

// DashboardService runs the fetch-and-aggregate pipeline: read-through cache,
// normalization, filtering, deduplication, aggregation.
type DashboardService struct {
	fetcher    Fetcher
	cache      *provider.Cache
	aggregator *pipeline.Aggregator
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
	airline    string
	clock      provider.Clock
}

// NewDashboardService creates a dashboard service. clock may be nil, in which
// case wall-clock time is used.
func NewDashboardService(
	fetcher Fetcher,
	cache *provider.Cache,
	aggregator *pipeline.Aggregator,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
	airline string,
	clock provider.Clock,
) *DashboardService {
	if clock == nil {
		clock = time.Now
	}
	return &DashboardService{
		fetcher:    fetcher,
		cache:      cache,
		aggregator: aggregator,
		logger:     logger,
		metrics:    metricsCollector,
		airline:    airline,
		clock:      clock,
	}
}

// DefaultCriteria returns the dashboard's standard filter set: the configured
// carrier, the airport-local schedule day, active flights only.
func (s *DashboardService) DefaultCriteria() pipeline.Criteria {
	return pipeline.Criteria{
		Carrier:    s.airline,
		Date:       pipeline.ScheduleDay(s.clock()),
		ActiveOnly: true,
	}
}

// Refresh runs one full pipeline pass for the criteria. It never surfaces the
// upstream failure to the caller: when the fetch fails the fixed placeholder
// set is returned, marked by Source, so the presentation layer can tell
// "degraded" from "live".
func (s *DashboardService) Refresh(ctx context.Context, criteria pipeline.Criteria) *models.DashboardData {
	start := time.Now()
	defer func() {
		s.metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	}()

	// The upstream query always uses the configured airline: the cache key
	// coalesces on date alone, so a per-request carrier must never narrow the
	// cached payload. The carrier criterion is applied by the filter stage.
	query := provider.Query{
		Airline:  s.airline,
		Date:     criteria.Date,
		FetchAll: true,
	}

	response, hit := s.cache.Get(query.CacheKey())
	if !hit {
		fetched, err := s.fetcher.Fetch(ctx, query)
		if err != nil {
			s.logger.Error(ctx, "[PIPELINE_DEGRADED] Upstream fetch failed, serving placeholder", logging.Fields{
				"query_key": query.CacheKey(),
			}, err)
			s.metrics.PlaceholderServedTotal.Inc()
			return &models.DashboardData{
				Aggregates:  models.PlaceholderAggregates(),
				Source:      models.SourcePlaceholder,
				GeneratedAt: s.clock(),
			}
		}
		response = fetched
	}

	records := pipeline.NormalizeAll(response.Flights, s.clock())
	s.metrics.RecordsNormalizedTotal.Add(float64(len(records)))

	filtered := pipeline.Filter(records, criteria)
	s.metrics.RecordsFilteredTotal.Add(float64(len(records) - len(filtered)))

	deduped := pipeline.Dedup(filtered)
	s.metrics.RecordsDedupedTotal.Add(float64(len(filtered) - len(deduped)))

	aggregates := s.aggregator.Aggregate(ctx, deduped)

	s.logger.Info(ctx, "[PIPELINE_PASS] Aggregation pass completed", logging.Fields{
		"raw_records":    len(records),
		"after_filter":   len(filtered),
		"after_dedup":    len(deduped),
		"pier_groups":    len(aggregates.PierStats),
		"aircraft_types": len(aggregates.AircraftStats),
		"cache_hit":      hit,
		"duration_ms":    time.Since(start).Milliseconds(),
	})

	return &models.DashboardData{
		Aggregates:  aggregates,
		Source:      models.SourceLive,
		GeneratedAt: s.clock(),
	}
}
