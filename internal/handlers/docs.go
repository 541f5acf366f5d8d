package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the ingestion API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       ServiceName,
			"description": "Webhook ingestion API for agronomic weather stations: validated, normalized telemetry with latest and time-range queries",
			"version":     ServiceVersion,
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/weather/latest": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Get most recent readings",
					"parameters": []map[string]interface{}{
						{
							"name":        "limit",
							"in":          "query",
							"description": "Number of readings (1-100, default 20)",
							"required":    false,
							"schema":      map[string]interface{}{"type": "integer", "default": latestDefaultLimit, "maximum": latestMaxLimit},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Readings, newest first"},
						"400": map[string]interface{}{"description": "Invalid limit"},
					},
				},
			},
			"/api/weather/period": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Get readings within a time range",
					"parameters": []map[string]interface{}{
						{
							"name":        "start",
							"in":          "query",
							"description": "Range start, epoch milliseconds",
							"required":    true,
							"schema":      map[string]string{"type": "string"},
						},
						{
							"name":        "end",
							"in":          "query",
							"description": "Range end, epoch milliseconds",
							"required":    true,
							"schema":      map[string]string{"type": "string"},
						},
						{
							"name":        "limit",
							"in":          "query",
							"description": "Number of readings (1-1000, default 100)",
							"required":    false,
							"schema":      map[string]interface{}{"type": "integer", "default": periodDefaultLimit, "maximum": periodMaxLimit},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Readings in range, newest first"},
						"400": map[string]interface{}{"description": "Missing or invalid parameters"},
					},
				},
			},
			"/api/weather/stations": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Get per-station reading summaries",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "One summary per station"},
					},
				},
			},
			"/api/webhook/weather": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Ingest one station transmission",
					"description": "Validates and normalizes one JSON reading. Requires the x-api-key header. Field-level problems are reported as warnings without rejecting the reading.",
					"security":    []map[string]interface{}{{"ApiKeyAuth": []string{}}},
					"requestBody": map[string]interface{}{
						"required": true,
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{
								"schema": map[string]interface{}{
									"type":        "object",
									"description": "Station reading: IdEstacao (integer) and ts (13-digit epoch ms string) are mandatory, sensor fields are optional",
								},
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Reading accepted and stored"},
						"400": map[string]interface{}{"description": "Validation rejected the reading"},
						"401": map[string]interface{}{"description": "Missing or invalid x-api-key"},
					},
				},
			},
			"/api/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Liveness and datastore reachability",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Service status"},
					},
				},
			},
		},
		"components": map[string]interface{}{
			"securitySchemes": map[string]interface{}{
				"ApiKeyAuth": map[string]string{
					"type": "apiKey",
					"in":   "header",
					"name": "x-api-key",
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
