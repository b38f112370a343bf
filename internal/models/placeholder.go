package models

// PlaceholderAggregates returns the fixed statistic set served when the
// upstream feed is unavailable. Values are representative, not live.
func PlaceholderAggregates() Aggregates {
	density := make(map[string][]HourlyBucket, 2)
	for _, pier := range []string{"B", "D-Schengen"} {
		buckets := make([]HourlyBucket, 0, DensityBuckets)
		for h := DensityFirstHour; h <= DensityLastHour; h++ {
			buckets = append(buckets, HourlyBucket{Hour: h})
		}
		density[pier] = buckets
	}

	return Aggregates{
		PierStats: []PierStat{
			{PierKey: "B", FlightCount: 24, Arrivals: 11, Departures: 13, Utilization: 16, StatusTier: TierMedium, Classification: ClassSchengen},
			{PierKey: "C", FlightCount: 19, Arrivals: 9, Departures: 10, Utilization: 13, StatusTier: TierMedium, Classification: ClassSchengen},
			{PierKey: "D-Schengen", FlightCount: 34, Arrivals: 15, Departures: 19, Utilization: 23, StatusTier: TierHigh, Classification: ClassSchengen},
			{PierKey: "D-NonSchengen", FlightCount: 28, Arrivals: 13, Departures: 15, Utilization: 19, StatusTier: TierMedium, Classification: ClassNonSchengen},
			{PierKey: "E", FlightCount: 26, Arrivals: 12, Departures: 14, Utilization: 18, StatusTier: TierMedium, Classification: ClassNonSchengen},
			{PierKey: "F", FlightCount: 15, Arrivals: 7, Departures: 8, Utilization: 10, StatusTier: TierLow, Classification: ClassNonSchengen},
		},
		AircraftStats: []AircraftStat{
			{TypeCode: "73H", FlightCount: 31, AvgDelayMin: 8.5, Category: CategoryNarrowBody, Manufacturer: "Boeing", SeatCapacity: 186},
			{TypeCode: "E90", FlightCount: 22, AvgDelayMin: 5.0, Category: CategoryRegional, Manufacturer: "Embraer", SeatCapacity: 100},
			{TypeCode: "772", FlightCount: 9, AvgDelayMin: 12.0, Category: CategoryWideBody, Manufacturer: "Boeing", SeatCapacity: 316},
		},
		HourlyDensity: density,
	}
}
