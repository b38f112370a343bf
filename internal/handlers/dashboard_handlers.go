package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"flightops-platform/internal/pipeline"
	"flightops-platform/internal/repository"
	"flightops-platform/internal/services"
	"flightops-platform/pkg/logging"
	"flightops-platform/pkg/metrics"
)

// DashboardHandler handles flight dashboard API endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
	snapshotService  *services.SnapshotService // nil when persistence is disabled
	logger           *logging.StructuredLogger
	metrics          *metrics.Collector
}

// NewDashboardHandler creates a new dashboard handler. snapshotService may be
// nil; the snapshot endpoints then answer 503.
func NewDashboardHandler(
	dashboardService *services.DashboardService,
	snapshotService *services.SnapshotService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		snapshotService:  snapshotService,
		logger:           logger,
		metrics:          metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// criteriaFromRequest builds filter criteria from query parameters, falling
// back to the dashboard defaults.
func (h *DashboardHandler) criteriaFromRequest(r *http.Request) (pipeline.Criteria, error) {
	criteria := h.dashboardService.DefaultCriteria()

	if carrier := r.URL.Query().Get("carrier"); carrier != "" {
		criteria.Carrier = carrier
	}

	if date := r.URL.Query().Get("date"); date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return criteria, errors.New("invalid date format, expected YYYY-MM-DD")
		}
		criteria.Date = date
	}

	if active := r.URL.Query().Get("active"); active != "" {
		criteria.ActiveOnly = active != "false"
	}

	return criteria, nil
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/dashboard").Observe(time.Since(startTime).Seconds())
	}()

	criteria, err := h.criteriaFromRequest(r)
	if err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	data := h.dashboardService.Refresh(ctx, criteria)

	h.metrics.RecordAPIRequest("/api/dashboard", "GET", "200")
	h.sendJSON(w, data, http.StatusOK)
}

// GetPierStats handles GET /api/piers
func (h *DashboardHandler) GetPierStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/piers").Observe(time.Since(startTime).Seconds())
	}()

	criteria, err := h.criteriaFromRequest(r)
	if err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	data := h.dashboardService.Refresh(ctx, criteria)

	h.metrics.RecordAPIRequest("/api/piers", "GET", "200")
	h.sendJSON(w, map[string]interface{}{
		"pier_stats": data.PierStats,
		"source":     data.Source,
	}, http.StatusOK)
}

// GetAircraftStats handles GET /api/aircraft
func (h *DashboardHandler) GetAircraftStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/aircraft").Observe(time.Since(startTime).Seconds())
	}()

	criteria, err := h.criteriaFromRequest(r)
	if err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	data := h.dashboardService.Refresh(ctx, criteria)

	h.metrics.RecordAPIRequest("/api/aircraft", "GET", "200")
	h.sendJSON(w, map[string]interface{}{
		"aircraft_stats": data.AircraftStats,
		"source":         data.Source,
	}, http.StatusOK)
}

// GetPierDensity handles GET /api/piers/{pier}/density
func (h *DashboardHandler) GetPierDensity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/piers/density").Observe(time.Since(startTime).Seconds())
	}()

	pier := mux.Vars(r)["pier"]

	criteria, err := h.criteriaFromRequest(r)
	if err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	data := h.dashboardService.Refresh(ctx, criteria)

	buckets, ok := data.HourlyDensity[pier]
	if !ok {
		h.sendError(w, r, "no density data for pier "+pier, http.StatusNotFound)
		return
	}

	h.metrics.RecordAPIRequest("/api/piers/density", "GET", "200")
	h.sendJSON(w, map[string]interface{}{
		"pier":    pier,
		"buckets": buckets,
		"source":  data.Source,
	}, http.StatusOK)
}

// ListSnapshots handles GET /api/snapshots
func (h *DashboardHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/snapshots").Observe(time.Since(startTime).Seconds())
	}()

	if h.snapshotService == nil {
		h.sendError(w, r, "snapshot persistence is not configured", http.StatusServiceUnavailable)
		return
	}

	page := 1
	limit := 50

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 500 {
			limit = l
		}
	}

	filter := repository.SnapshotFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if date := r.URL.Query().Get("date"); date != "" {
		filter.ScheduleDate = &date
	}
	if source := r.URL.Query().Get("source"); source != "" {
		filter.Source = &source
	}

	snapshots, total, err := h.snapshotService.List(ctx, filter)
	if err != nil {
		h.logger.Error(ctx, "[API_LIST_SNAPSHOTS_ERROR] Failed to list snapshots", logging.Fields{
			"filter": filter,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/snapshots")
		h.sendError(w, r, "failed to retrieve snapshots", http.StatusInternalServerError)
		return
	}

	totalPages := (total + limit - 1) / limit

	response := PaginatedResponse{
		Data:       snapshots,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}

	h.metrics.RecordAPIRequest("/api/snapshots", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// GetSnapshot handles GET /api/snapshots/{id}
func (h *DashboardHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.snapshotService == nil {
		h.sendError(w, r, "snapshot persistence is not configured", http.StatusServiceUnavailable)
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.sendError(w, r, "invalid snapshot id", http.StatusBadRequest)
		return
	}

	snapshot, err := h.snapshotService.Get(ctx, id)
	if err != nil {
		var notFound *repository.NotFoundError
		if errors.As(err, &notFound) {
			h.sendError(w, r, notFound.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error(ctx, "[API_GET_SNAPSHOT_ERROR] Failed to get snapshot", logging.Fields{
			"snapshot_id": id,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/snapshots")
		h.sendError(w, r, "failed to retrieve snapshot", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/snapshots", "GET", "200")
	h.sendJSON(w, snapshot, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *DashboardHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK

	if h.snapshotService != nil {
		if err := h.snapshotService.HealthCheck(ctx); err != nil {
			h.logger.Error(ctx, "[HEALTH_CHECK_ERROR] Snapshot store unreachable", logging.Fields{}, err)
			status["status"] = "degraded"
			status["database"] = "unreachable"
			code = http.StatusServiceUnavailable
		} else {
			status["database"] = "ok"
		}
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, code)
}

// sendJSON sends a JSON response
func (h *DashboardHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *DashboardHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all dashboard API routes
func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/dashboard", h.GetDashboard).Methods("GET")
	router.HandleFunc("/api/piers", h.GetPierStats).Methods("GET")
	router.HandleFunc("/api/piers/{pier}/density", h.GetPierDensity).Methods("GET")
	router.HandleFunc("/api/aircraft", h.GetAircraftStats).Methods("GET")
	router.HandleFunc("/api/snapshots", h.ListSnapshots).Methods("GET")
	router.HandleFunc("/api/snapshots/{id}", h.GetSnapshot).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
}
