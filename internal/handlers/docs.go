package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the Flight Operations API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Flight Operations API",
			"description": "Live airline flight statistics for one airport: pier utilization, aircraft-type delay and volume, hourly density",
			"version":     "1.0.0",
			"contact": map[string]string{
				"name": "Flight Operations Team",
			},
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/dashboard": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get full dashboard data",
					"description": "Run one fetch-and-aggregate pass and return pier stats, aircraft stats, and hourly density",
					"parameters":  criteriaParameters(),
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Dashboard aggregates with a source marker (live or placeholder)",
						},
					},
				},
			},
			"/api/piers": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get pier statistics",
					"description": "Per-pier flight counts, utilization percentage, status tier, and Schengen classification",
					"parameters":  criteriaParameters(),
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Pier statistics"},
					},
				},
			},
			"/api/piers/{pier}/density": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get hourly density for a pier",
					"description": "18 hour slots (06:00-23:00) with flight counts and normalized intensity",
					"parameters": append([]map[string]interface{}{
						{
							"name":        "pier",
							"in":          "path",
							"description": "Pier key, e.g. B or D-Schengen",
							"required":    true,
							"schema":      map[string]string{"type": "string"},
						},
					}, criteriaParameters()...),
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Hourly density buckets"},
						"404": map[string]interface{}{"description": "No density data for the pier"},
					},
				},
			},
			"/api/aircraft": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get aircraft type statistics",
					"description": "Per-type flight counts, average delay, category, manufacturer, seat capacity, destinations",
					"parameters":  criteriaParameters(),
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Aircraft statistics"},
					},
				},
			},
			"/api/snapshots": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List aggregation snapshots",
					"description": "Persisted aggregation passes for trend history, newest first",
					"parameters": []map[string]interface{}{
						{
							"name":        "date",
							"in":          "query",
							"description": "Filter by schedule date (YYYY-MM-DD)",
							"required":    false,
							"schema":      map[string]string{"type": "string", "format": "date"},
						},
						{
							"name":        "page",
							"in":          "query",
							"description": "Page number (default: 1)",
							"required":    false,
							"schema":      map[string]interface{}{"type": "integer", "default": 1},
						},
						{
							"name":        "limit",
							"in":          "query",
							"description": "Records per page (default: 50)",
							"required":    false,
							"schema":      map[string]interface{}{"type": "integer", "default": 50},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Paginated snapshot headers"},
						"503": map[string]interface{}{"description": "Snapshot persistence not configured"},
					},
				},
			},
			"/api/snapshots/{id}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get one aggregation snapshot",
					"description": "A persisted pass with its pier and aircraft stat rows",
					"parameters": []map[string]interface{}{
						{
							"name":     "id",
							"in":       "path",
							"required": true,
							"schema":   map[string]string{"type": "integer"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Snapshot detail"},
						"404": map[string]interface{}{"description": "Snapshot not found"},
						"503": map[string]interface{}{"description": "Snapshot persistence not configured"},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Health check",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Service is healthy"},
						"503": map[string]interface{}{"description": "Snapshot store unreachable"},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}

// criteriaParameters are the filter query parameters shared by the dashboard
// endpoints.
func criteriaParameters() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"name":        "carrier",
			"in":          "query",
			"description": "Operating carrier prefix (default: configured airline)",
			"required":    false,
			"schema":      map[string]string{"type": "string"},
		},
		{
			"name":        "date",
			"in":          "query",
			"description": "Schedule date YYYY-MM-DD (default: today)",
			"required":    false,
			"schema":      map[string]string{"type": "string", "format": "date"},
		},
		{
			"name":        "active",
			"in":          "query",
			"description": "Keep only operationally active flights (default: true)",
			"required":    false,
			"schema":      map[string]interface{}{"type": "boolean", "default": true},
		},
	}
}
