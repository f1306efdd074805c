// Package middleware provides the HTTP middleware of the regroup API.
//
// # Middleware Chain
//
// The server applies the chain outermost first:
//
//	Recovery -> RequestID -> Logging -> tracing.Middleware -> CORS -> Timeout -> BodyLimit -> mux
//
// Recovery is outermost so a panic anywhere below still produces a JSON
// 500 body. RequestID runs before Logging so every access log line carries
// the request ID.
//
// # Request ID
//
// RequestID keeps a client supplied X-Request-ID of up to 128 printable
// ASCII characters and otherwise generates a UUIDv4:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// # Metrics
//
// Logging reports every request to a MetricsRecorder, normally the
// metrics.Collector. Unknown paths are folded into the "other" route label.
package middleware
