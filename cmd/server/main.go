package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flightops-platform/internal/config"
	"flightops-platform/internal/handlers"
	"flightops-platform/internal/pipeline"
	"flightops-platform/internal/provider"
	"flightops-platform/internal/repository"
	"flightops-platform/internal/services"
	"flightops-platform/pkg/database"
	"flightops-platform/pkg/logging"
	"flightops-platform/pkg/metrics"
)

func main() {
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
	logger := logging.NewStructuredLogger("flightops-api", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting flight operations API server", logging.Fields{
		"version":      "1.0.0",
		"server_host":  cfg.Server.Host,
		"server_port":  cfg.Server.Port,
		"provider_url": cfg.Provider.BaseURL,
		"airline":      cfg.Provider.Airline,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("flightops")

	// Initialize response cache and provider client
	cache := provider.NewCache(cfg.Cache.Duration, cfg.Cache.ExpiryWindow, nil, metricsCollector)

	client := provider.NewClient(logger, metricsCollector,
		provider.WithBaseURL(cfg.Provider.BaseURL),
		provider.WithCredentials(cfg.Provider.AppID, cfg.Provider.AppKey),
		provider.WithHTTPClient(&http.Client{Timeout: cfg.Provider.RequestTimeout}),
		provider.WithRetryPolicy(cfg.Provider.MaxRetries, cfg.Provider.RetryBaseDelay),
		provider.WithPagePolicy(cfg.Provider.MaxPages, cfg.Provider.PageDelay),
		provider.WithCache(cache),
	)

	// Initialize pipeline and dashboard service
	aggregator := pipeline.NewAggregator(logger, metricsCollector)
	dashboardService := services.NewDashboardService(
		client, cache, aggregator, logger, metricsCollector, cfg.Provider.Airline, nil)

	// Snapshot persistence is optional: only wired when DB_HOST is set
	var snapshotService *services.SnapshotService
	if cfg.Database.Enabled() {
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
			logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
		}
		defer db.Close()

		snapshotRepo := repository.NewSnapshotRepository(db, logger, metricsCollector)
		snapshotService = services.NewSnapshotService(snapshotRepo, logger, metricsCollector)
	} else {
		logger.Info(ctx, "[STARTUP] Snapshot persistence disabled (no DB_HOST)", logging.Fields{})
	}

	// Initialize handlers
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, snapshotService, logger, metricsCollector)

	// Setup router
	router := mux.NewRouter()
	dashboardHandler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Keep the dashboard warm: refresh at half the cache duration so panels
	// never wait on a cold upstream fetch.
	refreshCtx, stopRefresh := context.WithCancel(ctx)
	defer stopRefresh()
	go func() {
		ticker := time.NewTicker(cfg.Cache.Duration / 2)
		defer ticker.Stop()

		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-ticker.C:
				data := dashboardService.Refresh(refreshCtx, dashboardService.DefaultCriteria())
				if snapshotService != nil {
					criteria := dashboardService.DefaultCriteria()
					if _, err := snapshotService.Capture(refreshCtx, criteria.Date, data); err != nil {
						logger.Error(refreshCtx, "[REFRESH_SNAPSHOT_ERROR] Failed to persist snapshot", logging.Fields{}, err)
					}
				}
			}
		}
	}()

	// Start server in goroutine
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})
	stopRefresh()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
