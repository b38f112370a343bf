package models

import "time"

// Snapshot is one persisted aggregation pass, kept so the dashboard can chart
// day-over-day trends. The pipeline itself stays stateless; snapshots are an
// optional side channel.
type Snapshot struct {
	ID            int64          `json:"id" db:"id"`
	TakenAt       time.Time      `json:"taken_at" db:"taken_at"`
	ScheduleDate  string         `json:"schedule_date" db:"schedule_date"`
	Source        string         `json:"source" db:"source"`
	FlightCount   int            `json:"flight_count" db:"flight_count"`
	PierStats     []PierStat     `json:"pier_stats,omitempty"`
	AircraftStats []AircraftStat `json:"aircraft_stats,omitempty"`
}
