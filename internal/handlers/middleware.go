package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/murillous/agronomia-API/pkg/logging"
)

// statusRecorder captures the status code written by the next handler so
// the request log line can carry it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// RequestID assigns a request id to every request and exposes it both in
// the response header and in the logging context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set("X-Request-Id", requestID)
		ctx := logging.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogger logs one line per request with method, path, status, and
// duration.
func RequestLogger(logger *logging.StructuredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sr, r)

			logger.Info(r.Context(), "[HTTP_REQUEST] Request handled", logging.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      sr.status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}

// requireJSON rejects POST requests whose content type is not JSON.
func (h *WeatherHandler) requireJSON(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contentType := r.Header.Get("Content-Type")
		if !strings.Contains(contentType, "application/json") {
			h.sendError(w, r, "invalid request", "Content-Type must be application/json", http.StatusBadRequest)
			return
		}
		next(w, r)
	}
}

// authenticate verifies the webhook pre-shared key. The comparison is a
// plain equality check against the single configured secret.
func (h *WeatherHandler) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		apiKey := r.Header.Get("x-api-key")
		if apiKey == "" {
			h.metrics.RecordAPIError("unauthorized", r.URL.Path)
			h.sendError(w, r, "unauthorized", "x-api-key header missing or invalid", http.StatusUnauthorized)
			return
		}

		if h.apiKey == "" {
			h.logger.Error(ctx, "[AUTH_MISCONFIGURED] API_KEY not configured", logging.Fields{}, nil)
			h.sendError(w, r, "internal server error", "failed to process the request", http.StatusInternalServerError)
			return
		}

		if apiKey != h.apiKey {
			h.logger.Warn(ctx, "[AUTH_REJECTED] Invalid webhook key", logging.Fields{
				"key_prefix": keyPrefix(apiKey),
			})
			h.metrics.RecordAPIError("unauthorized", r.URL.Path)
			h.sendError(w, r, "unauthorized", "x-api-key header missing or invalid", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

// keyPrefix truncates a presented key for logging; the full value never
// reaches the logs.
func keyPrefix(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:8] + "..."
}
