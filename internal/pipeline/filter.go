package pipeline

import (
	"time"

	"flightops-platform/internal/models"
	"flightops-platform/pkg/timeutil"
)

// scheduleLocation is the airport's local timezone; all calendar-day
// comparisons are normalized to it.
var scheduleLocation = loadScheduleLocation()

func loadScheduleLocation() *time.Location {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		return time.UTC
	}
	return loc
}

// activeStates are the state tags that mark a flight as operationally live.
var activeStates = map[string]bool{
	models.StateScheduled: true,
	models.StateBoarding:  true,
	models.StateOnTime:    true,
	models.StateDelayed:   true,
	models.StateDeparted:  true,
}

// terminalStates are explicit evidence that a flight is no longer operational.
var terminalStates = map[string]bool{
	models.StateCancelled: true,
	models.StateLanded:    true,
}

// Criteria are the filter predicates; zero values disable a predicate. All
// enabled predicates compose by logical AND.
type Criteria struct {
	Carrier    string // operating carrier prefix
	Date       string // schedule date YYYY-MM-DD, airport-local calendar day
	ActiveOnly bool   // keep only operationally active flights
}

// Filter applies the criteria to records, preserving input order. Pure.
func Filter(records []models.FlightRecord, criteria Criteria) []models.FlightRecord {
	kept := make([]models.FlightRecord, 0, len(records))
	for _, rec := range records {
		if criteria.Carrier != "" && rec.OperatingCarrier != criteria.Carrier {
			// Excludes codeshares marketed under the carrier's code but
			// operated by a partner: the match is on the operating prefix,
			// not the flight name.
			continue
		}
		if criteria.Date != "" && scheduleDate(rec.ScheduleDateTime) != criteria.Date {
			continue
		}
		if criteria.ActiveOnly && !isActive(rec.States) {
			continue
		}
		kept = append(kept, rec)
	}
	return kept
}

// ScheduleDay returns the airport-local calendar day for an instant, in the
// YYYY-MM-DD form the date criterion uses.
func ScheduleDay(t time.Time) string {
	return t.In(scheduleLocation).Format("2006-01-02")
}

// scheduleDate derives the airport-local calendar day from a schedule
// timestamp. Unparseable timestamps yield "".
func scheduleDate(timestamp string) string {
	t, ok := timeutil.ParseTimestamp(timestamp)
	if !ok {
		return ""
	}
	return ScheduleDay(t)
}

// isActive reports whether a flight's state tags mark it operational. A
// record with no state tags, or only unrecognized ones, is active by default:
// exclusion requires explicit evidence of a terminal state.
func isActive(states []string) bool {
	if len(states) == 0 {
		return true
	}

	sawTerminal := false
	for _, s := range states {
		if activeStates[s] {
			return true
		}
		if terminalStates[s] {
			sawTerminal = true
		}
	}

	return !sawTerminal
}

// Dedup collapses records sharing a flight number down to the one with the
// latest last-updated timestamp. Ties, including records that fell back to
// the fetch-time default, resolve first-seen wins. Output preserves the
// first-seen order of each surviving flight number. Records without a flight
// number (zero) are passed through untouched.
func Dedup(records []models.FlightRecord) []models.FlightRecord {
	type slot struct {
		index  int
		record models.FlightRecord
	}

	result := make([]models.FlightRecord, 0, len(records))
	byNumber := make(map[int64]slot, len(records))

	for _, rec := range records {
		if rec.FlightNumber == 0 {
			result = append(result, rec)
			continue
		}

		existing, ok := byNumber[rec.FlightNumber]
		if !ok {
			byNumber[rec.FlightNumber] = slot{index: len(result), record: rec}
			result = append(result, rec)
			continue
		}

		if rec.LastUpdated.After(existing.record.LastUpdated) {
			existing.record = rec
			byNumber[rec.FlightNumber] = existing
			result[existing.index] = rec
		}
	}

	return result
}
