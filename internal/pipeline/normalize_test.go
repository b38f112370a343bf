package pipeline

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"flightops-platform/internal/models"
)

func TestNormalizeDefaults(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	rec := Normalize(models.RawFlight{}, now)

	assert.Equal(t, models.DirectionDeparture, rec.Direction)
	assert.Equal(t, "", rec.ScheduleDateTime)
	assert.Equal(t, "", rec.EstimatedOffBlock)
	assert.Equal(t, now, rec.LastUpdated, "missing lastUpdated falls back to the pass time")
	assert.Empty(t, rec.States)
	assert.Equal(t, models.AircraftType{}, rec.AircraftType)
}

func TestNormalizeDirection(t *testing.T) {
	now := time.Now()

	arrival := Normalize(models.RawFlight{FlightDirection: "A"}, now)
	assert.Equal(t, models.DirectionArrival, arrival.Direction)

	departure := Normalize(models.RawFlight{FlightDirection: "D"}, now)
	assert.Equal(t, models.DirectionDeparture, departure.Direction)
}

func TestNormalizeScheduleTimeFallback(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		raw  models.RawFlight
		want string
	}{
		{
			name: "primary field wins",
			raw: models.RawFlight{
				ScheduleDateTime:            "2026-08-30T08:15:00+02:00",
				PublicEstimatedOffBlockTime: "2026-08-30T08:25:00+02:00",
			},
			want: "2026-08-30T08:15:00+02:00",
		},
		{
			name: "falls back to estimated off-block",
			raw: models.RawFlight{
				PublicEstimatedOffBlockTime: "2026-08-30T08:25:00+02:00",
			},
			want: "2026-08-30T08:25:00+02:00",
		},
		{
			name: "falls back to boarding time",
			raw: models.RawFlight{
				ExpectedTimeBoarding: "2026-08-30T07:45:00+02:00",
			},
			want: "2026-08-30T07:45:00+02:00",
		},
		{
			name: "all missing yields empty",
			raw:  models.RawFlight{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Normalize(tt.raw, now)
			assert.Equal(t, tt.want, rec.ScheduleDateTime)
		})
	}
}

func TestNormalizeStates(t *testing.T) {
	rec := Normalize(models.RawFlight{
		PublicFlightState: &models.RawFlightState{
			FlightStates: []string{"SCH", "brd", "XYZ", ""},
		},
	}, time.Now())

	assert.Equal(t, []string{
		models.StateScheduled,
		models.StateBoarding,
		"XYZ", // unknown codes pass through
	}, rec.States)
}

func TestNormalizeOperatingCarrier(t *testing.T) {
	now := time.Now()

	// Codeshare: marketed as KL, operated by HV
	codeshare := Normalize(models.RawFlight{
		FlightName: "KL2605",
		MainFlight: "HV6913",
	}, now)
	assert.Equal(t, "HV", codeshare.OperatingCarrier)

	// Own-metal flight
	own := Normalize(models.RawFlight{
		FlightName: "KL1001",
		MainFlight: "KL1001",
	}, now)
	assert.Equal(t, "KL", own.OperatingCarrier)

	// Missing mainFlight falls back to the flight name prefix
	missing := Normalize(models.RawFlight{FlightName: "KL1001"}, now)
	assert.Equal(t, "KL", missing.OperatingCarrier)
}

func TestNormalizeAircraftTypeShapes(t *testing.T) {
	now := time.Now()

	structured := Normalize(models.RawFlight{
		AircraftType: json.RawMessage(`{"iataMain": "332", "iataSub": "332"}`),
	}, now)
	assert.Equal(t, "332", structured.AircraftType.Main)

	bare := Normalize(models.RawFlight{
		AircraftType: json.RawMessage(`"73W"`),
	}, now)
	assert.Equal(t, "73W", bare.AircraftType.Main)
	assert.Equal(t, "73W", bare.AircraftType.Sub)
}

func TestNormalizeAllPreservesOrder(t *testing.T) {
	now := time.Now()
	raw := []models.RawFlight{
		{FlightName: "KL1", FlightNumber: 1},
		{FlightName: "KL2", FlightNumber: 2},
		{FlightName: "KL3", FlightNumber: 3},
	}

	records := NormalizeAll(raw, now)

	assert.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, int64(i+1), rec.FlightNumber)
	}
}
