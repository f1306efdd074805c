package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"regroup-hq/regroup/pkg/telemetry/logging"
)

// RouteOther labels requests whose path is not a known route.
const RouteOther = "other"

// MetricsRecorder receives one observation per completed request.
type MetricsRecorder interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
	bytes      int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Logging logs every request with its status and latency and reports it
// to recorder. The logger is stored in the request context for handlers.
// Request IDs are added by the handler built with logging.New.
//
// Paths outside routes are reported as RouteOther so the metric label set
// stays bounded. A nil recorder only logs.
//
//	{
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "method": "POST",
//	  "path": "/",
//	  "status": 200,
//	  "latency_ms": 3,
//	  "request_id": "550e8400-e29b-41d4-a716-446655440000"
//	}
func Logging(logger *slog.Logger, recorder MetricsRecorder, routes ...string) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := logging.WithLogger(r.Context(), logger)

			rw := newResponseWriter(w)

			logger.DebugContext(ctx, "request started",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)

			next.ServeHTTP(rw, r.WithContext(ctx))

			latency := time.Since(start)

			level := slog.LevelInfo
			if rw.statusCode >= 500 {
				level = slog.LevelError
			} else if rw.statusCode >= 400 {
				level = slog.LevelWarn
			}

			logger.Log(ctx, level, "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"bytes", rw.bytes,
				"latency_ms", latency.Milliseconds(),
				"remote_addr", r.RemoteAddr,
			)

			if recorder != nil {
				route := r.URL.Path
				if !slices.Contains(routes, route) {
					route = RouteOther
				}
				recorder.RecordHTTPRequest(r.Method, route, rw.statusCode, latency)
			}
		})
	}
}
