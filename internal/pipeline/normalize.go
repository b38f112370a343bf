// Package pipeline turns raw provider flight records into clean aggregate
// views: normalization, filtering, deduplication, and aggregation.
package pipeline

import (
	"strings"
	"time"

	"flightops-platform/internal/models"
	"flightops-platform/pkg/timeutil"
)

// stateNames maps provider state codes onto canonical state tags. Codes not
// in the table pass through unchanged.
var stateNames = map[string]string{
	"SCH": models.StateScheduled,
	"BRD": models.StateBoarding,
	"OTM": models.StateOnTime,
	"DEL": models.StateDelayed,
	"DEP": models.StateDeparted,
	"CNX": models.StateCancelled,
	"LND": models.StateLanded,
	"GTO": models.StateGateOpen,
}

// Normalize maps a heterogeneous raw record into the canonical flight shape.
// It is total: every missing field has a defaulting rule, so it never fails.
// now supplies the fallback for a missing last-updated timestamp; this makes
// dedup order-dependent on fetch time for records that never carried one,
// which is a known approximation.
func Normalize(raw models.RawFlight, now time.Time) models.FlightRecord {
	rec := models.FlightRecord{
		FlightName:   strings.TrimSpace(raw.FlightName),
		FlightNumber: raw.FlightNumber,
		Gate:         strings.TrimSpace(raw.Gate),
		Pier:         strings.TrimSpace(raw.Pier),
		AircraftType: raw.DecodeAircraftType(),
	}

	rec.Direction = models.DirectionDeparture
	if strings.EqualFold(raw.FlightDirection, "A") {
		rec.Direction = models.DirectionArrival
	}

	// Scheduled time falls back through alternate provider fields.
	rec.ScheduleDateTime = firstNonEmpty(
		raw.ScheduleDateTime,
		raw.PublicEstimatedOffBlockTime,
		raw.ExpectedTimeBoarding,
	)

	rec.EstimatedOffBlock = firstNonEmpty(
		raw.ActualOffBlockTime,
		raw.PublicEstimatedOffBlockTime,
	)

	if t, ok := timeutil.ParseTimestamp(raw.LastUpdatedAt); ok {
		rec.LastUpdated = t
	} else {
		rec.LastUpdated = now
	}

	if raw.PublicFlightState != nil {
		rec.States = make([]string, 0, len(raw.PublicFlightState.FlightStates))
		for _, code := range raw.PublicFlightState.FlightStates {
			code = strings.TrimSpace(code)
			if code == "" {
				continue
			}
			if name, ok := stateNames[strings.ToUpper(code)]; ok {
				rec.States = append(rec.States, name)
			} else {
				rec.States = append(rec.States, code)
			}
		}
	}

	rec.OperatingCarrier = carrierPrefix(raw.MainFlight)
	if rec.OperatingCarrier == "" {
		rec.OperatingCarrier = carrierPrefix(raw.FlightName)
	}

	if raw.Route != nil {
		rec.Destinations = append(rec.Destinations, raw.Route.Destinations...)
	}

	return rec
}

// NormalizeAll normalizes a raw response in input order.
func NormalizeAll(flights []models.RawFlight, now time.Time) []models.FlightRecord {
	records := make([]models.FlightRecord, 0, len(flights))
	for _, raw := range flights {
		records = append(records, Normalize(raw, now))
	}
	return records
}

// carrierPrefix extracts the leading letters of a flight designator, e.g.
// "KL1234" -> "KL". Returns "" when the designator has no letter prefix.
func carrierPrefix(designator string) string {
	designator = strings.TrimSpace(designator)
	i := 0
	for i < len(designator) {
		ch := designator[i]
		if (ch < 'A' || ch > 'Z') && (ch < 'a' || ch > 'z') {
			break
		}
		i++
	}
	return strings.ToUpper(designator[:i])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
