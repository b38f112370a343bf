package services

import (
	"context"
	"fmt"

	"flightops-platform/internal/models"
	"flightops-platform/internal/repository"
	"flightops-platform/pkg/logging"
	"flightops-platform/pkg/metrics"
)

// SnapshotService persists aggregation passes for trend history.
type SnapshotService struct {
	repo    repository.SnapshotRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(repo repository.SnapshotRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *SnapshotService {
	return &SnapshotService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Capture persists one dashboard pass. Placeholder passes are skipped: they
// carry no real measurements and would pollute the trend history.
func (s *SnapshotService) Capture(ctx context.Context, scheduleDate string, data *models.DashboardData) (*models.Snapshot, error) {
	if data.Source != models.SourceLive {
		s.logger.Warn(ctx, "[SNAPSHOT_SKIP] Not persisting degraded pass", logging.Fields{
			"source":        data.Source,
			"schedule_date": scheduleDate,
		})
		return nil, nil
	}

	flightCount := 0
	for _, stat := range data.PierStats {
		flightCount += stat.FlightCount
	}

	snapshot := &models.Snapshot{
		TakenAt:       data.GeneratedAt.UTC(),
		ScheduleDate:  scheduleDate,
		Source:        data.Source,
		FlightCount:   flightCount,
		PierStats:     data.PierStats,
		AircraftStats: data.AircraftStats,
	}

	if err := s.repo.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to capture snapshot: %w", err)
	}

	s.logger.Info(ctx, "[SNAPSHOT_CAPTURED] Aggregation snapshot persisted", logging.Fields{
		"snapshot_id":   snapshot.ID,
		"schedule_date": scheduleDate,
		"flight_count":  flightCount,
	})

	return snapshot, nil
}

// List retrieves snapshot headers with filtering
func (s *SnapshotService) List(ctx context.Context, filter repository.SnapshotFilter) ([]*models.Snapshot, int, error) {
	return s.repo.ListSnapshots(ctx, filter)
}

// Get retrieves a full snapshot with its stat rows
func (s *SnapshotService) Get(ctx context.Context, id int64) (*models.Snapshot, error) {
	return s.repo.GetSnapshot(ctx, id)
}

// HealthCheck verifies the snapshot store is reachable
func (s *SnapshotService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}
