// Package server provides the regroup HTTP server.
//
// The server routes requests to the convert handler, the health endpoints
// and the Prometheus endpoint, and owns the listener lifecycle: start,
// graceful shutdown and running state.
//
// # Basic Usage
//
//	cfg := config.GetConfig()
//
//	convert, err := handlers.NewConvertHandler(handlers.ConvertOptions{Rules: store})
//	if err != nil {
//	    return err
//	}
//
//	srv, err := server.New(cfg, server.Options{
//	    Convert: convert,
//	    Health:  checker,
//	    Metrics: collector,
//	})
//	if err != nil {
//	    return err
//	}
//	return srv.Start(ctx) // returns after ctx is cancelled and shutdown completes
//
// # Routes
//
//   - GET|POST / - Convert a configuration
//   - GET /health - Liveness probe (always returns 200)
//   - GET /ready - Readiness probe (rule set loaded)
//   - GET /version - Build information
//   - GET /metrics - Prometheus metrics, when telemetry.metrics.enabled
//
// # Middleware Chain
//
// Requests pass through the following middleware (outermost first):
//  1. Recovery: turns panics into 500 responses
//  2. RequestID: reads or generates X-Request-ID
//  3. Logging: access log and HTTP metrics
//  4. Tracing: server span per request, when tracing is enabled
//  5. CORS: Cross-Origin Resource Sharing headers, when enabled
//  6. Timeout: per-request deadline (server.request_timeout)
//  7. BodyLimit: caps the request body (server.max_body_bytes)
//
// # Graceful Shutdown
//
// Cancelling the context passed to Start, or calling Shutdown, stops
// accepting connections and waits up to server.shutdown_timeout for
// in-flight requests.
package server
