package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightops-platform/internal/models"
	"flightops-platform/internal/pipeline"
	"flightops-platform/internal/provider"
	"flightops-platform/internal/services"
	"flightops-platform/pkg/logging"
	"flightops-platform/pkg/metrics"
)

// One collector per test binary: the prometheus default registry rejects
// duplicate registration.
var testMetrics = metrics.NewCollector("handlers_test")

func newTestLogger() *logging.StructuredLogger {
	logger := logging.NewStructuredLogger("handlers-test", "test", logging.ErrorLevel)
	logger.SetOutput(io.Discard)
	return logger
}

type stubFetcher struct {
	response *models.FlightsResponse
	err      error
}

func (f *stubFetcher) Fetch(ctx context.Context, query provider.Query) (*models.FlightsResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func newTestRouter(fetcher *stubFetcher) *mux.Router {
	logger := newTestLogger()
	clock := func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	cache := provider.NewCache(10*time.Minute, 15*time.Minute, clock, nil)
	aggregator := pipeline.NewAggregator(logger, testMetrics)
	dashboardService := services.NewDashboardService(fetcher, cache, aggregator, logger, testMetrics, "KL", clock)

	handler := NewDashboardHandler(dashboardService, nil, logger, testMetrics)
	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func testFlights() *models.FlightsResponse {
	return &models.FlightsResponse{Flights: []models.RawFlight{
		{
			FlightName:       "KL1001",
			FlightNumber:     1001,
			MainFlight:       "KL1001",
			FlightDirection:  "D",
			ScheduleDateTime: "2026-08-30T08:00:00+02:00",
			LastUpdatedAt:    "2026-08-30T07:30:00+02:00",
			Pier:             "D",
			Gate:             "D62",
		},
		{
			FlightName:       "KL1101",
			FlightNumber:     1101,
			MainFlight:       "KL1101",
			FlightDirection:  "D",
			ScheduleDateTime: "2026-08-30T09:00:00+02:00",
			LastUpdatedAt:    "2026-08-30T08:30:00+02:00",
			Pier:             "B",
			Gate:             "B20",
		},
	}}
}

func doRequest(t *testing.T, router *mux.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetDashboard(t *testing.T) {
	router := newTestRouter(&stubFetcher{response: testFlights()})

	rec := doRequest(t, router, "/api/dashboard?date=2026-08-30")
	require.Equal(t, http.StatusOK, rec.Code)

	var data models.DashboardData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Equal(t, models.SourceLive, data.Source)
	assert.Len(t, data.PierStats, 2)
}

func TestGetDashboardInvalidDate(t *testing.T) {
	router := newTestRouter(&stubFetcher{response: testFlights()})

	rec := doRequest(t, router, "/api/dashboard?date=30-08-2026")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, http.StatusBadRequest, errResp.Code)
}

func TestGetDashboardDegraded(t *testing.T) {
	router := newTestRouter(&stubFetcher{err: errors.New("upstream down")})

	rec := doRequest(t, router, "/api/dashboard?date=2026-08-30")
	require.Equal(t, http.StatusOK, rec.Code, "a degraded pass still answers 200")

	var data models.DashboardData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Equal(t, models.SourcePlaceholder, data.Source)
	assert.NotEmpty(t, data.PierStats)
}

func TestGetPierStats(t *testing.T) {
	router := newTestRouter(&stubFetcher{response: testFlights()})

	rec := doRequest(t, router, "/api/piers?date=2026-08-30")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		PierStats []models.PierStat `json:"pier_stats"`
		Source    string            `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.SourceLive, body.Source)
	require.Len(t, body.PierStats, 2)
	assert.Equal(t, "B", body.PierStats[0].PierKey)
	assert.Equal(t, "D-Schengen", body.PierStats[1].PierKey)
}

func TestGetPierDensity(t *testing.T) {
	router := newTestRouter(&stubFetcher{response: testFlights()})

	rec := doRequest(t, router, "/api/piers/D-Schengen/density?date=2026-08-30")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Pier    string                `json:"pier"`
		Buckets []models.HourlyBucket `json:"buckets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "D-Schengen", body.Pier)
	assert.Len(t, body.Buckets, models.DensityBuckets)
}

func TestGetPierDensityUnknownPier(t *testing.T) {
	router := newTestRouter(&stubFetcher{response: testFlights()})

	rec := doRequest(t, router, "/api/piers/Z/density?date=2026-08-30")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAircraftStats(t *testing.T) {
	router := newTestRouter(&stubFetcher{response: testFlights()})

	rec := doRequest(t, router, "/api/aircraft?date=2026-08-30")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		AircraftStats []models.AircraftStat `json:"aircraft_stats"`
		Source        string                `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.SourceLive, body.Source)
}

func TestSnapshotEndpointsWithoutPersistence(t *testing.T) {
	router := newTestRouter(&stubFetcher{response: testFlights()})

	rec := doRequest(t, router, "/api/snapshots")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doRequest(t, router, "/api/snapshots/1")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&stubFetcher{response: testFlights()})

	rec := doRequest(t, router, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}
