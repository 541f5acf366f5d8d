package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/murillous/agronomia-API/internal/models"
	"github.com/murillous/agronomia-API/internal/services"
	"github.com/murillous/agronomia-API/internal/validation"
	"github.com/murillous/agronomia-API/pkg/logging"
	"github.com/murillous/agronomia-API/pkg/metrics"
)

// ServiceName and ServiceVersion identify the API in metadata responses.
const (
	ServiceName    = "Agronomia Weather API"
	ServiceVersion = models.SchemaVersion
)

// Limit bounds for the read endpoints.
const (
	latestDefaultLimit = 20
	latestMaxLimit     = 100
	periodDefaultLimit = 100
	periodMaxLimit     = 1000
)

// maxBodyBytes caps webhook payload size at 1 MB.
const maxBodyBytes = 1 << 20

// availableRoutes is returned verbatim on unknown routes.
var availableRoutes = []string{
	"GET /",
	"GET /api/health",
	"GET /api/weather/latest",
	"GET /api/weather/period",
	"GET /api/weather/stations",
	"POST /api/webhook/weather",
}

// WeatherHandler handles the HTTP surface of the ingestion API.
type WeatherHandler struct {
	ingestionService *services.IngestionService
	weatherService   *services.WeatherService
	apiKey           string
	logger           *logging.StructuredLogger
	metrics          *metrics.Collector
}

// NewWeatherHandler creates a new weather handler
func NewWeatherHandler(
	ingestionService *services.IngestionService,
	weatherService *services.WeatherService,
	apiKey string,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *WeatherHandler {
	return &WeatherHandler{
		ingestionService: ingestionService,
		weatherService:   weatherService,
		apiKey:           apiKey,
		logger:           logger,
		metrics:          metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Root handles GET / with service metadata.
func (h *WeatherHandler) Root(w http.ResponseWriter, r *http.Request) {
	h.metrics.RecordAPIRequest("/", "GET", "200")
	h.sendJSON(w, map[string]interface{}{
		"message": ServiceName,
		"version": ServiceVersion,
		"endpoints": map[string]string{
			"health":   "GET /api/health",
			"webhook":  "POST /api/webhook/weather (requires x-api-key)",
			"latest":   "GET /api/weather/latest",
			"period":   "GET /api/weather/period?start=TIMESTAMP&end=TIMESTAMP",
			"stations": "GET /api/weather/stations",
			"docs":     "GET /api/docs",
		},
	}, http.StatusOK)
}

// HealthCheck handles GET /api/health: liveness plus datastore
// reachability. An unreachable store is reported in the body, not as a
// failed response; the process itself is alive.
func (h *WeatherHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	database := "connected"
	if err := h.weatherService.HealthCheck(ctx); err != nil {
		h.logger.Error(ctx, "[HEALTH_DB_ERROR] Datastore unreachable", logging.Fields{}, err)
		database = "error"
	}

	h.metrics.RecordAPIRequest("/api/health", "GET", "200")
	h.sendJSON(w, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   ServiceName,
		"version":   ServiceVersion,
		"database":  database,
	}, http.StatusOK)
}

// Latest handles GET /api/weather/latest?limit=N.
func (h *WeatherHandler) Latest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()
	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/weather/latest").Observe(time.Since(startTime).Seconds())
	}()

	limit, ok := parseLimit(r.URL.Query().Get("limit"), latestDefaultLimit, latestMaxLimit)
	if !ok {
		h.sendError(w, r, "invalid parameter",
			fmt.Sprintf("limit must be a number between 1 and %d", latestMaxLimit), http.StatusBadRequest)
		return
	}

	records, err := h.weatherService.Latest(ctx, limit)
	if err != nil {
		h.logger.Error(ctx, "[API_LATEST_ERROR] Failed to get latest readings", logging.Fields{
			"limit": limit,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/weather/latest")
		h.sendError(w, r, "internal server error", "failed to query weather data", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/weather/latest", "GET", "200")
	h.sendJSON(w, map[string]interface{}{
		"success": true,
		"count":   len(records),
		"limit":   limit,
		"data":    records,
	}, http.StatusOK)
}

// Period handles GET /api/weather/period?start=MS&end=MS&limit=N.
func (h *WeatherHandler) Period(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()
	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/weather/period").Observe(time.Since(startTime).Seconds())
	}()

	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" || endStr == "" {
		h.sendError(w, r, "missing parameters",
			"start and end are required (epoch milliseconds), e.g. /api/weather/period?start=1746466087000&end=1746552487000",
			http.StatusBadRequest)
		return
	}

	start, err1 := strconv.ParseInt(startStr, 10, 64)
	end, err2 := strconv.ParseInt(endStr, 10, 64)
	if err1 != nil || err2 != nil {
		h.sendError(w, r, "invalid timestamps",
			"start and end must be numbers (epoch milliseconds)", http.StatusBadRequest)
		return
	}

	if start >= end {
		h.sendError(w, r, "invalid period", "start must be less than end", http.StatusBadRequest)
		return
	}

	limit, ok := parseLimit(r.URL.Query().Get("limit"), periodDefaultLimit, periodMaxLimit)
	if !ok {
		h.sendError(w, r, "invalid parameter",
			fmt.Sprintf("limit must be a number between 1 and %d", periodMaxLimit), http.StatusBadRequest)
		return
	}

	records, err := h.weatherService.ByPeriod(ctx, start, end, limit)
	if err != nil {
		h.logger.Error(ctx, "[API_PERIOD_ERROR] Failed to get readings by period", logging.Fields{
			"start": start,
			"end":   end,
			"limit": limit,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/weather/period")
		h.sendError(w, r, "internal server error", "failed to query weather data", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/weather/period", "GET", "200")
	h.sendJSON(w, map[string]interface{}{
		"success": true,
		"period": map[string]string{
			"start":    time.UnixMilli(start).UTC().Format(time.RFC3339),
			"end":      time.UnixMilli(end).UTC().Format(time.RFC3339),
			"duration": fmt.Sprintf("%d hours", (end-start)/(1000*60*60)),
		},
		"count": len(records),
		"limit": limit,
		"data":  records,
	}, http.StatusOK)
}

// Stations handles GET /api/weather/stations with per-station aggregates.
func (h *WeatherHandler) Stations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summaries, err := h.weatherService.StationSummaries(ctx)
	if err != nil {
		h.logger.Error(ctx, "[API_STATIONS_ERROR] Failed to get station summaries", logging.Fields{}, err)
		h.metrics.RecordAPIError("internal_error", "/api/weather/stations")
		h.sendError(w, r, "internal server error", "failed to query station data", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/weather/stations", "GET", "200")
	h.sendJSON(w, map[string]interface{}{
		"success": true,
		"count":   len(summaries),
		"data":    summaries,
	}, http.StatusOK)
}

// Webhook handles POST /api/webhook/weather: one station transmission
// through the validation pipeline into the store.
func (h *WeatherHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()
	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/webhook/weather").Observe(time.Since(startTime).Seconds())
	}()

	var reading models.Reading
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(&reading); err != nil {
		h.sendError(w, r, "invalid request", "request body must be a valid JSON object", http.StatusBadRequest)
		return
	}

	result, err := h.ingestionService.ProcessReading(ctx, reading)
	if err != nil {
		if verr, ok := err.(*validation.Error); ok {
			h.sendError(w, r, "invalid data", verr.Message, http.StatusBadRequest)
			return
		}

		h.logger.Error(ctx, "[WEBHOOK_ERROR] Failed to process reading", logging.Fields{}, err)
		h.metrics.RecordAPIError("internal_error", "/api/webhook/weather")
		h.sendError(w, r, "internal server error", "failed to process weather data", http.StatusInternalServerError)
		return
	}

	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	h.metrics.RecordAPIRequest("/api/webhook/weather", "POST", "200")
	h.sendJSON(w, map[string]interface{}{
		"success":        true,
		"message":        "weather data received and stored",
		"documentId":     result.DocumentID,
		"timestamp":      result.Timestamp,
		"workingSensors": len(result.WorkingSensors),
		"warnings":       warnings,
	}, http.StatusOK)
}

// NotFound handles unknown routes with the fixed route list.
func (h *WeatherHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, "404")
	h.sendJSON(w, map[string]interface{}{
		"error":           "route not found",
		"message":         fmt.Sprintf("%s %s does not exist", r.Method, r.URL.Path),
		"availableRoutes": availableRoutes,
	}, http.StatusNotFound)
}

// parseLimit validates a limit query parameter against [1, max], falling
// back to def when absent. Out-of-range values are rejected, not clamped.
func parseLimit(raw string, def, max int) (int, bool) {
	if raw == "" {
		return def, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > max {
		return 0, false
	}
	return limit, true
}

// sendJSON sends a JSON response
func (h *WeatherHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *WeatherHandler) sendError(w http.ResponseWriter, r *http.Request, errLabel, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	h.sendJSON(w, ErrorResponse{
		Error:   errLabel,
		Message: message,
	}, statusCode)
}

// RegisterRoutes registers all API routes
func (h *WeatherHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.Root).Methods("GET")
	router.HandleFunc("/api/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/api/weather/latest", h.Latest).Methods("GET")
	router.HandleFunc("/api/weather/period", h.Period).Methods("GET")
	router.HandleFunc("/api/weather/stations", h.Stations).Methods("GET")
	router.HandleFunc("/api/webhook/weather", h.requireJSON(h.authenticate(h.Webhook))).Methods("POST")
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
	router.NotFoundHandler = http.HandlerFunc(h.NotFound)
}
