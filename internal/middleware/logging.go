package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/divvyapp/divvy/internal/metrics"
)

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging logs every request and records its duration in the request
// histogram once the handler returns.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		metrics.ObserveRequest(r.Method, r.URL.Path, rec.status, duration)

		logFn := slog.Info
		if rec.status >= http.StatusInternalServerError {
			logFn = slog.Error
		} else if rec.status >= http.StatusBadRequest {
			logFn = slog.Warn
		}
		logFn("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"user_id", GetUserID(r.Context()),
			"duration_ms", duration.Milliseconds(),
		)
	})
}

// CORS adds CORS headers for browser access.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
