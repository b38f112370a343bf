package pipeline

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"

	"flightops-platform/internal/models"
	"flightops-platform/pkg/logging"
	"flightops-platform/pkg/metrics"
	"flightops-platform/pkg/timeutil"
)

// The multi-purpose pier whose gates split into Schengen and non-Schengen
// sub-piers by gate number range.
const multiPurposePier = "D"

const (
	schengenGateLow     = 59
	schengenGateHigh    = 87
	nonSchengenGateLow  = 1
	nonSchengenGateHigh = 57
)

// schengenPiers are the piers that serve Schengen traffic exclusively.
var schengenPiers = map[string]bool{
	"A": true,
	"B": true,
	"C": true,
}

// Aggregator derives pier, aircraft, and hourly density statistics from
// normalized flight records. Every pass recomputes from scratch; nothing is
// mutated incrementally. Logger and metrics may be nil (tests).
type Aggregator struct {
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewAggregator creates an aggregator.
func NewAggregator(logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *Aggregator {
	return &Aggregator{logger: logger, metrics: metricsCollector}
}

// Aggregate computes the three derived views for one record set.
func (a *Aggregator) Aggregate(ctx context.Context, records []models.FlightRecord) models.Aggregates {
	return models.Aggregates{
		PierStats:     a.pierStats(records),
		AircraftStats: a.aircraftStats(records),
		HourlyDensity: a.hourlyDensity(ctx, records),
	}
}

// PierKey derives the grouping key and Schengen classification for a flight.
// Gates at the multi-purpose pier map onto synthesized sub-piers by gate
// number: 59-87 Schengen, 1-57 non-Schengen. Out-of-range or unparseable
// gates fall back to the raw pier id, classified Schengen. All other piers
// classify by the fixed Schengen pier list.
func PierKey(pier, gate string) (key, classification string) {
	if pier == multiPurposePier {
		if n, ok := gateNumber(gate); ok {
			switch {
			case n >= schengenGateLow && n <= schengenGateHigh:
				return pier + "-Schengen", models.ClassSchengen
			case n >= nonSchengenGateLow && n <= nonSchengenGateHigh:
				return pier + "-NonSchengen", models.ClassNonSchengen
			}
		}
		return pier, models.ClassSchengen
	}

	if schengenPiers[pier] {
		return pier, models.ClassSchengen
	}
	return pier, models.ClassNonSchengen
}

// gateNumber extracts the numeric portion of a gate id, e.g. "D62" -> 62.
func gateNumber(gate string) (int, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, gate)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (a *Aggregator) pierStats(records []models.FlightRecord) []models.PierStat {
	type group struct {
		stat models.PierStat
	}

	groups := make(map[string]*group)
	total := 0

	for _, rec := range records {
		if rec.Pier == "" {
			continue
		}
		total++

		key, class := PierKey(rec.Pier, rec.Gate)
		g, ok := groups[key]
		if !ok {
			g = &group{stat: models.PierStat{PierKey: key, Classification: class}}
			groups[key] = g
		}

		g.stat.FlightCount++
		if rec.Direction == models.DirectionArrival {
			g.stat.Arrivals++
		} else {
			g.stat.Departures++
		}
	}

	stats := make([]models.PierStat, 0, len(groups))
	for _, g := range groups {
		if total > 0 {
			g.stat.Utilization = int(math.Round(float64(g.stat.FlightCount) / float64(total) * 100))
		}
		g.stat.StatusTier = statusTier(g.stat.Utilization)
		stats = append(stats, g.stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].PierKey < stats[j].PierKey
	})

	return stats
}

// statusTier maps a utilization percentage onto a tier.
func statusTier(utilization int) string {
	switch {
	case utilization > 20:
		return models.TierHigh
	case utilization > 10:
		return models.TierMedium
	default:
		return models.TierLow
	}
}

func (a *Aggregator) aircraftStats(records []models.FlightRecord) []models.AircraftStat {
	type group struct {
		stat         models.AircraftStat
		delaySum     float64
		destinations map[string]bool
	}

	groups := make(map[string]*group)

	for _, rec := range records {
		code := rec.AircraftType.Main
		if code == "" {
			code = rec.AircraftType.Sub
		}
		if code == "" {
			continue
		}

		g, ok := groups[code]
		if !ok {
			info := models.LookupAircraft(code)
			g = &group{
				stat: models.AircraftStat{
					TypeCode:     code,
					Category:     info.Category,
					Manufacturer: info.Manufacturer,
					SeatCapacity: info.SeatCapacity,
				},
				destinations: make(map[string]bool),
			}
			groups[code] = g
		}

		g.stat.FlightCount++
		g.delaySum += timeutil.DelayMinutes(rec.ScheduleDateTime, rec.EstimatedOffBlock)
		for _, dest := range rec.Destinations {
			g.destinations[dest] = true
		}
	}

	stats := make([]models.AircraftStat, 0, len(groups))
	for _, g := range groups {
		if g.stat.FlightCount > 0 {
			g.stat.AvgDelayMin = g.delaySum / float64(g.stat.FlightCount)
		}
		g.stat.Destinations = make([]string, 0, len(g.destinations))
		for dest := range g.destinations {
			g.stat.Destinations = append(g.stat.Destinations, dest)
		}
		sort.Strings(g.stat.Destinations)
		stats = append(stats, g.stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].FlightCount != stats[j].FlightCount {
			return stats[i].FlightCount > stats[j].FlightCount
		}
		return stats[i].TypeCode < stats[j].TypeCode
	})

	return stats
}

// hourlyDensity buckets each pier's flights into fixed hour slots 06-23 by
// the hour component of the scheduled time. Records whose scheduled time does
// not parse are skipped and logged; they never abort the pass.
func (a *Aggregator) hourlyDensity(ctx context.Context, records []models.FlightRecord) map[string][]models.HourlyBucket {
	counts := make(map[string][]int)

	for _, rec := range records {
		if rec.Pier == "" {
			continue
		}

		t, ok := timeutil.ParseTimestamp(rec.ScheduleDateTime)
		if !ok {
			if a.logger != nil {
				a.logger.Debug(ctx, "[DENSITY_SKIP] Unparseable scheduled time", logging.Fields{
					"flight_name": rec.FlightName,
					"scheduled":   rec.ScheduleDateTime,
				})
			}
			if a.metrics != nil {
				a.metrics.RecordParseSkip("hourly_density")
			}
			continue
		}

		hour := t.In(scheduleLocation).Hour()
		if hour < models.DensityFirstHour || hour > models.DensityLastHour {
			continue
		}

		key, _ := PierKey(rec.Pier, rec.Gate)
		buckets, ok := counts[key]
		if !ok {
			buckets = make([]int, models.DensityBuckets)
			counts[key] = buckets
		}
		buckets[hour-models.DensityFirstHour]++
	}

	density := make(map[string][]models.HourlyBucket, len(counts))
	for key, buckets := range counts {
		maxCount := 0
		for _, n := range buckets {
			if n > maxCount {
				maxCount = n
			}
		}

		out := make([]models.HourlyBucket, models.DensityBuckets)
		for i, n := range buckets {
			bucket := models.HourlyBucket{Hour: models.DensityFirstHour + i, FlightCount: n}
			if maxCount > 0 {
				bucket.Intensity = float64(n) / float64(maxCount)
			}
			out[i] = bucket
		}
		density[key] = out
	}

	return density
}
