package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"flightops-platform/internal/models"
	"flightops-platform/internal/pipeline"
	"flightops-platform/pkg/logging"
)

// DemoDataProcessing demonstrates the aggregation pipeline without network or database
func main() {
	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println("FLIGHT OPERATIONS - AGGREGATION PIPELINE DEMONSTRATION")
	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println()

	// Initialize logger
	logger := logging.NewStructuredLogger("demo", "1.0.0", logging.InfoLevel)
	ctx := context.Background()

	// Load a captured provider payload
	payloadPath := "./testdata/flights.json"
	data, err := os.ReadFile(payloadPath)
	if err != nil {
		fmt.Printf("Error reading payload: %v\n", err)
		os.Exit(1)
	}

	var response models.FlightsResponse
	if err := json.Unmarshal(data, &response); err != nil {
		fmt.Printf("Error parsing payload: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded %d raw flight records from %s\n\n", len(response.Flights), payloadPath)

	// Run the pipeline stages
	records := pipeline.NormalizeAll(response.Flights, time.Now())

	criteria := pipeline.Criteria{Carrier: "KL", ActiveOnly: true}
	filtered := pipeline.Filter(records, criteria)
	deduped := pipeline.Dedup(filtered)

	fmt.Printf("Normalized: %d   After filter: %d   After dedup: %d\n\n",
		len(records), len(filtered), len(deduped))

	aggregator := pipeline.NewAggregator(logger, nil)
	aggregates := aggregator.Aggregate(ctx, deduped)

	fmt.Println("Pier statistics:")
	for _, stat := range aggregates.PierStats {
		fmt.Printf("  %-14s %3d flights  util %3d%%  %-6s  %s\n",
			stat.PierKey, stat.FlightCount, stat.Utilization, stat.StatusTier, stat.Classification)
	}

	fmt.Println("\nAircraft statistics:")
	for _, stat := range aggregates.AircraftStats {
		fmt.Printf("  %-5s %3d flights  avg delay %6.1f min  %-12s %s\n",
			stat.TypeCode, stat.FlightCount, stat.AvgDelayMin, stat.Category, stat.Manufacturer)
	}

	fmt.Println("\nHourly density:")
	for pier, buckets := range aggregates.HourlyDensity {
		peak := 0
		peakHour := 0
		for _, b := range buckets {
			if b.FlightCount > peak {
				peak = b.FlightCount
				peakHour = b.Hour
			}
		}
		fmt.Printf("  %-14s peak %d flights at %02d:00\n", pier, peak, peakHour)
	}

	logger.Info(ctx, "[DEMO_COMPLETE] Pipeline demonstration finished", logging.Fields{
		"raw_records": len(response.Flights),
		"pier_groups": len(aggregates.PierStats),
	})
}
