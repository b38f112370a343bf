package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Flight direction values after normalization.
const (
	DirectionDeparture = "Departure"
	DirectionArrival   = "Arrival"
)

// Canonical flight state tags. The provider reports short codes; the
// normalizer maps them onto these names.
const (
	StateScheduled = "Scheduled"
	StateBoarding  = "Boarding"
	StateOnTime    = "OnTime"
	StateDelayed   = "Delayed"
	StateDeparted  = "Departed"
	StateCancelled = "Cancelled"
	StateLanded    = "Landed"
	StateGateOpen  = "GateOpen"
)

// Schengen classification of a pier or sub-pier.
const (
	ClassSchengen    = "Schengen"
	ClassNonSchengen = "Non-Schengen"
)

// Pier status tiers derived from utilization.
const (
	TierLow    = "Low"
	TierMedium = "Medium"
	TierHigh   = "High"
)

// AircraftType is the structured aircraft type shape. The provider sometimes
// sends a bare string instead; RawFlight.DecodeAircraftType unifies both.
type AircraftType struct {
	Main string `json:"iataMain"`
	Sub  string `json:"iataSub"`
}

// FlightRecord is the canonical flight shape produced by normalization.
// FlightNumber is stable across re-fetches of the same logical flight and is
// the dedup key; it is NOT unique within a raw feed.
type FlightRecord struct {
	FlightName        string       `json:"flight_name" db:"flight_name"`
	FlightNumber      int64        `json:"flight_number" db:"flight_number"`
	Direction         string       `json:"direction" db:"direction"`
	ScheduleDateTime  string       `json:"schedule_date_time" db:"schedule_date_time"`
	EstimatedOffBlock string       `json:"estimated_off_block" db:"estimated_off_block"`
	LastUpdated       time.Time    `json:"last_updated" db:"last_updated"`
	States            []string     `json:"states"`
	OperatingCarrier  string       `json:"operating_carrier" db:"operating_carrier"`
	AircraftType      AircraftType `json:"aircraft_type"`
	Gate              string       `json:"gate" db:"gate"`
	Pier              string       `json:"pier" db:"pier"`
	Destinations      []string     `json:"destinations"`
}

// RawFlight mirrors one entry of the provider's flights array. Field presence
// is not guaranteed; the normalizer supplies defaults for everything.
type RawFlight struct {
	FlightName                  string          `json:"flightName"`
	FlightNumber                int64           `json:"flightNumber"`
	FlightDirection             string          `json:"flightDirection"`
	ScheduleDateTime            string          `json:"scheduleDateTime"`
	PublicEstimatedOffBlockTime string          `json:"publicEstimatedOffBlockTime"`
	ActualOffBlockTime          string          `json:"actualOffBlockTime"`
	ExpectedTimeBoarding        string          `json:"expectedTimeBoarding"`
	LastUpdatedAt               string          `json:"lastUpdatedAt"`
	MainFlight                  string          `json:"mainFlight"`
	AircraftType                json.RawMessage `json:"aircraftType"`
	Gate                        string          `json:"gate"`
	Pier                        string          `json:"pier"`
	Route                       *RawRoute       `json:"route"`
	PublicFlightState           *RawFlightState `json:"publicFlightState"`
}

// RawRoute is the provider's route object.
type RawRoute struct {
	Destinations []string `json:"destinations"`
}

// RawFlightState is the provider's state wrapper.
type RawFlightState struct {
	FlightStates []string `json:"flightStates"`
}

// FlightsResponse is the provider's top-level payload shape.
type FlightsResponse struct {
	Flights []RawFlight            `json:"flights"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// DecodeAircraftType unifies the two aircraft type shapes the provider emits:
// a structured {iataMain, iataSub} object or a bare string. Unresolvable
// payloads yield empty strings.
func (r *RawFlight) DecodeAircraftType() AircraftType {
	raw := bytes.TrimSpace(r.AircraftType)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return AircraftType{}
	}

	if raw[0] == '{' {
		var at AircraftType
		if err := json.Unmarshal(raw, &at); err != nil {
			return AircraftType{}
		}
		return at
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return AircraftType{}
	}
	return AircraftType{Main: strings.TrimSpace(s), Sub: strings.TrimSpace(s)}
}

// PierStat is the per-pier aggregate. PierKey may be a physical pier id or a
// synthesized sub-pier id such as "D-Schengen". Recomputed in full on every
// aggregation pass.
type PierStat struct {
	PierKey        string `json:"pier_key" db:"pier_key"`
	FlightCount    int    `json:"flight_count" db:"flight_count"`
	Arrivals       int    `json:"arrivals" db:"arrivals"`
	Departures     int    `json:"departures" db:"departures"`
	Utilization    int    `json:"utilization" db:"utilization"`
	StatusTier     string `json:"status_tier" db:"status_tier"`
	Classification string `json:"classification" db:"classification"`
}

// AircraftStat is the per-aircraft-type aggregate.
type AircraftStat struct {
	TypeCode     string   `json:"type_code" db:"type_code"`
	FlightCount  int      `json:"flight_count" db:"flight_count"`
	AvgDelayMin  float64  `json:"avg_delay_minutes" db:"avg_delay_minutes"`
	Category     string   `json:"category" db:"category"`
	Manufacturer string   `json:"manufacturer" db:"manufacturer"`
	SeatCapacity int      `json:"seat_capacity" db:"seat_capacity"`
	Destinations []string `json:"destinations"`
}

// HourlyBucket is one hour slot of a pier's density profile.
type HourlyBucket struct {
	Hour        int     `json:"hour"`
	FlightCount int     `json:"flight_count"`
	Intensity   float64 `json:"intensity"`
}

// DensityFirstHour and DensityLastHour bound the density profile (06:00-23:00
// inclusive, 18 buckets).
const (
	DensityFirstHour = 6
	DensityLastHour  = 23
	DensityBuckets   = DensityLastHour - DensityFirstHour + 1
)

// Aggregates bundles the three derived views of one aggregation pass.
type Aggregates struct {
	PierStats     []PierStat                `json:"pier_stats"`
	AircraftStats []AircraftStat            `json:"aircraft_stats"`
	HourlyDensity map[string][]HourlyBucket `json:"hourly_density"`
}

// Data sources for dashboard results. SourcePlaceholder marks a degraded pass
// where the upstream fetch failed and the fixed placeholder set was served.
const (
	SourceLive        = "live"
	SourcePlaceholder = "placeholder"
)

// DashboardData is what the service hands to callers: the aggregates plus
// where they came from, so the presentation layer can distinguish "no data"
// from "service degraded".
type DashboardData struct {
	Aggregates
	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generated_at"`
}
