package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"flightops-platform/internal/config"
	"flightops-platform/internal/pipeline"
	"flightops-platform/internal/provider"
	"flightops-platform/internal/repository"
	"flightops-platform/internal/services"
	"flightops-platform/pkg/database"
	"flightops-platform/pkg/logging"
	"flightops-platform/pkg/metrics"
)

func main() {
	// Parse command-line flags
	date := flag.String("date", "", "Schedule date YYYY-MM-DD (default: today)")
	carrier := flag.String("carrier", "", "Operating carrier prefix (default: configured airline)")
	saveSnapshot := flag.Bool("save-snapshot", false, "Persist the aggregation pass to the database")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("flightops-refresher", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[REFRESHER_START] Starting aggregation pass", logging.Fields{
		"version":       "1.0.0",
		"date":          *date,
		"carrier":       *carrier,
		"save_snapshot": *saveSnapshot,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("flightops_refresher")

	cache := provider.NewCache(cfg.Cache.Duration, cfg.Cache.ExpiryWindow, nil, metricsCollector)

	client := provider.NewClient(logger, metricsCollector,
		provider.WithBaseURL(cfg.Provider.BaseURL),
		provider.WithCredentials(cfg.Provider.AppID, cfg.Provider.AppKey),
		provider.WithHTTPClient(&http.Client{Timeout: cfg.Provider.RequestTimeout}),
		provider.WithRetryPolicy(cfg.Provider.MaxRetries, cfg.Provider.RetryBaseDelay),
		provider.WithPagePolicy(cfg.Provider.MaxPages, cfg.Provider.PageDelay),
		provider.WithCache(cache),
	)

	aggregator := pipeline.NewAggregator(logger, metricsCollector)
	dashboardService := services.NewDashboardService(
		client, cache, aggregator, logger, metricsCollector, cfg.Provider.Airline, nil)

	criteria := dashboardService.DefaultCriteria()
	if *date != "" {
		criteria.Date = *date
	}
	if *carrier != "" {
		criteria.Carrier = *carrier
	}

	data := dashboardService.Refresh(ctx, criteria)

	// Print results
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("AGGREGATION PASS COMPLETE (source: %s)\n", data.Source)
	fmt.Println(strings.Repeat("=", 80))

	fmt.Printf("\nPier statistics (%d groups):\n", len(data.PierStats))
	for _, stat := range data.PierStats {
		fmt.Printf("  %-14s %3d flights (%d arr / %d dep)  util %3d%%  %-6s  %s\n",
			stat.PierKey, stat.FlightCount, stat.Arrivals, stat.Departures,
			stat.Utilization, stat.StatusTier, stat.Classification)
	}

	fmt.Printf("\nAircraft statistics (%d types):\n", len(data.AircraftStats))
	for _, stat := range data.AircraftStats {
		fmt.Printf("  %-5s %3d flights  avg delay %6.1f min  %-12s %-12s %3d seats\n",
			stat.TypeCode, stat.FlightCount, stat.AvgDelayMin,
			stat.Category, stat.Manufacturer, stat.SeatCapacity)
	}

	// Persist snapshot if requested
	if *saveSnapshot {
		if !cfg.Database.Enabled() {
			logger.Fatal(ctx, "[REFRESHER_ERROR] -save-snapshot requires DB_HOST", logging.Fields{}, nil)
		}

		dbConfig := &database.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			Database:        cfg.Database.Database,
			SSLMode:         cfg.Database.SSLMode,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		}

		db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
		if err != nil {
			logger.Fatal(ctx, "[REFRESHER_ERROR] Failed to connect to database", logging.Fields{}, err)
		}
		defer db.Close()

		snapshotRepo := repository.NewSnapshotRepository(db, logger, metricsCollector)
		snapshotService := services.NewSnapshotService(snapshotRepo, logger, metricsCollector)

		snapshot, err := snapshotService.Capture(ctx, criteria.Date, data)
		if err != nil {
			logger.Fatal(ctx, "[SNAPSHOT_ERROR] Failed to persist snapshot", logging.Fields{}, err)
		}
		if snapshot != nil {
			fmt.Printf("\nSnapshot %d persisted for %s\n", snapshot.ID, criteria.Date)
		} else {
			fmt.Println("\nSnapshot skipped (degraded pass)")
		}
	}

	logger.Info(ctx, "[REFRESHER_COMPLETE] Aggregation pass finished", logging.Fields{
		"source":         data.Source,
		"pier_groups":    len(data.PierStats),
		"aircraft_types": len(data.AircraftStats),
	})
}
