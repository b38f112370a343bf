package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"flightops-platform/internal/models"
	"flightops-platform/pkg/database"
	"flightops-platform/pkg/logging"
	"flightops-platform/pkg/metrics"
)

// SnapshotRepository provides data access for aggregation snapshots
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) error
	GetSnapshot(ctx context.Context, id int64) (*models.Snapshot, error)
	ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]*models.Snapshot, int, error)
	HealthCheck(ctx context.Context) error
}

// SnapshotFilter defines filters for querying snapshots
type SnapshotFilter struct {
	ScheduleDate *string
	Source       *string
	Limit        int
	Offset       int
}

// NotFoundError indicates a missing resource
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// snapshotRepository implements SnapshotRepository
type snapshotRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) SnapshotRepository {
	return &snapshotRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// SaveSnapshot persists one aggregation pass: the snapshot row plus its pier
// and aircraft stat rows, in a single transaction.
func (r *snapshotRepository) SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if snapshot.TakenAt.IsZero() {
		snapshot.TakenAt = time.Now().UTC()
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO aggregation_snapshots (taken_at, schedule_date, source, flight_count)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, snapshot.TakenAt, snapshot.ScheduleDate, snapshot.Source, snapshot.FlightCount).Scan(&snapshot.ID)
	if err != nil {
		r.metrics.RecordDBError("snapshot_insert_error")
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	for _, stat := range snapshot.PierStats {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO snapshot_pier_stats
				(snapshot_id, pier_key, flight_count, arrivals, departures, utilization, status_tier, classification)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, snapshot.ID, stat.PierKey, stat.FlightCount, stat.Arrivals, stat.Departures,
			stat.Utilization, stat.StatusTier, stat.Classification)
		if err != nil {
			r.metrics.RecordDBError("pier_stat_insert_error")
			return fmt.Errorf("failed to insert pier stat %s: %w", stat.PierKey, err)
		}
	}

	for _, stat := range snapshot.AircraftStats {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO snapshot_aircraft_stats
				(snapshot_id, type_code, flight_count, avg_delay_minutes, category, manufacturer, seat_capacity, destinations)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, snapshot.ID, stat.TypeCode, stat.FlightCount, stat.AvgDelayMin,
			stat.Category, stat.Manufacturer, stat.SeatCapacity, strings.Join(stat.Destinations, ","))
		if err != nil {
			r.metrics.RecordDBError("aircraft_stat_insert_error")
			return fmt.Errorf("failed to insert aircraft stat %s: %w", stat.TypeCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		r.metrics.RecordDBError("snapshot_commit_error")
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_SAVE_SNAPSHOT] Snapshot persisted", logging.Fields{
		"snapshot_id":    snapshot.ID,
		"schedule_date":  snapshot.ScheduleDate,
		"pier_stats":     len(snapshot.PierStats),
		"aircraft_stats": len(snapshot.AircraftStats),
	})

	return nil
}

// GetSnapshot retrieves a snapshot with its stat rows
func (r *snapshotRepository) GetSnapshot(ctx context.Context, id int64) (*models.Snapshot, error) {
	var snapshot models.Snapshot
	err := r.db.GetContext(ctx, "get_snapshot", &snapshot, `
		SELECT id, taken_at, schedule_date, source, flight_count
		FROM aggregation_snapshots
		WHERE id = $1
	`, id)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "aggregation_snapshot",
			ID:       fmt.Sprintf("%d", id),
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	err = r.db.SelectContext(ctx, "get_snapshot_pier_stats", &snapshot.PierStats, `
		SELECT pier_key, flight_count, arrivals, departures, utilization, status_tier, classification
		FROM snapshot_pier_stats
		WHERE snapshot_id = $1
		ORDER BY pier_key
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load pier stats: %w", err)
	}

	type aircraftRow struct {
		models.AircraftStat
		DestinationsCSV string `db:"destinations"`
	}
	var rows []aircraftRow
	err = r.db.SelectContext(ctx, "get_snapshot_aircraft_stats", &rows, `
		SELECT type_code, flight_count, avg_delay_minutes, category, manufacturer, seat_capacity, destinations
		FROM snapshot_aircraft_stats
		WHERE snapshot_id = $1
		ORDER BY flight_count DESC, type_code
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load aircraft stats: %w", err)
	}

	snapshot.AircraftStats = make([]models.AircraftStat, 0, len(rows))
	for _, row := range rows {
		stat := row.AircraftStat
		if row.DestinationsCSV != "" {
			stat.Destinations = strings.Split(row.DestinationsCSV, ",")
		}
		snapshot.AircraftStats = append(snapshot.AircraftStats, stat)
	}

	return &snapshot, nil
}

// ListSnapshots retrieves snapshot headers with filtering and pagination.
// Stat rows are not loaded; use GetSnapshot for the full record.
func (r *snapshotRepository) ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]*models.Snapshot, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.ScheduleDate != nil {
		conditions = append(conditions, fmt.Sprintf("schedule_date = $%d", argIdx))
		args = append(args, *filter.ScheduleDate)
		argIdx++
	}
	if filter.Source != nil {
		conditions = append(conditions, fmt.Sprintf("source = $%d", argIdx))
		args = append(args, *filter.Source)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM aggregation_snapshots WHERE %s", where)
	if err := r.db.GetContext(ctx, "count_snapshots", &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count snapshots: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, taken_at, schedule_date, source, flight_count
		FROM aggregation_snapshots
		WHERE %s
		ORDER BY taken_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset)

	var snapshots []*models.Snapshot
	if err := r.db.SelectContext(ctx, "list_snapshots", &snapshots, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list snapshots: %w", err)
	}

	return snapshots, total, nil
}

// HealthCheck verifies database connectivity
func (r *snapshotRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}
