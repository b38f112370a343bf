package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightops-platform/internal/models"
	"flightops-platform/internal/repository"
)

// stubSnapshotRepo records saved snapshots in memory.
type stubSnapshotRepo struct {
	saved   []*models.Snapshot
	saveErr error
}

func (r *stubSnapshotRepo) SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	snapshot.ID = int64(len(r.saved) + 1)
	r.saved = append(r.saved, snapshot)
	return nil
}

func (r *stubSnapshotRepo) GetSnapshot(ctx context.Context, id int64) (*models.Snapshot, error) {
	for _, s := range r.saved {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, &repository.NotFoundError{Resource: "aggregation_snapshot", ID: "missing"}
}

func (r *stubSnapshotRepo) ListSnapshots(ctx context.Context, filter repository.SnapshotFilter) ([]*models.Snapshot, int, error) {
	return r.saved, len(r.saved), nil
}

func (r *stubSnapshotRepo) HealthCheck(ctx context.Context) error { return nil }

func liveDashboardData(generatedAt time.Time) *models.DashboardData {
	return &models.DashboardData{
		Aggregates: models.Aggregates{
			PierStats: []models.PierStat{
				{PierKey: "B", FlightCount: 2},
				{PierKey: "D-Schengen", FlightCount: 3},
			},
			AircraftStats: []models.AircraftStat{
				{TypeCode: "73H", FlightCount: 5},
			},
		},
		Source:      models.SourceLive,
		GeneratedAt: generatedAt,
	}
}

func TestCaptureLivePass(t *testing.T) {
	repo := &stubSnapshotRepo{}
	svc := NewSnapshotService(repo, newTestLogger(), testMetrics)

	generatedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	snapshot, err := svc.Capture(context.Background(), "2026-08-30", liveDashboardData(generatedAt))

	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, int64(1), snapshot.ID)
	assert.Equal(t, "2026-08-30", snapshot.ScheduleDate)
	assert.Equal(t, 5, snapshot.FlightCount, "flight count sums the pier stats")
	assert.Equal(t, generatedAt, snapshot.TakenAt)
	assert.Len(t, repo.saved, 1)
}

func TestCaptureSkipsPlaceholderPass(t *testing.T) {
	repo := &stubSnapshotRepo{}
	svc := NewSnapshotService(repo, newTestLogger(), testMetrics)

	data := &models.DashboardData{
		Aggregates: models.PlaceholderAggregates(),
		Source:     models.SourcePlaceholder,
	}

	snapshot, err := svc.Capture(context.Background(), "2026-08-30", data)

	require.NoError(t, err)
	assert.Nil(t, snapshot, "degraded passes are never persisted")
	assert.Empty(t, repo.saved)
}

func TestCaptureSurfacesRepositoryError(t *testing.T) {
	repo := &stubSnapshotRepo{saveErr: errors.New("connection lost")}
	svc := NewSnapshotService(repo, newTestLogger(), testMetrics)

	_, err := svc.Capture(context.Background(), "2026-08-30", liveDashboardData(time.Now()))
	assert.Error(t, err)
}

func TestSnapshotGetNotFound(t *testing.T) {
	svc := NewSnapshotService(&stubSnapshotRepo{}, newTestLogger(), testMetrics)

	_, err := svc.Get(context.Background(), 42)

	var notFound *repository.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}
