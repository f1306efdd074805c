// Package telemetry groups the observability packages used by regroup.
//
// # Components
//
//   - logging: slog construction, request-scoped loggers and redaction of
//     proxy credentials
//   - metrics: Prometheus collectors for conversions, rule set reloads and
//     HTTP requests
//   - tracing: OpenTelemetry spans exported over OTLP gRPC
//   - health: liveness, readiness and version endpoints
//
// # Configuration
//
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
//	  metrics:
//	    enabled: true
//	    path: /metrics
//	  tracing:
//	    enabled: false
//	    endpoint: localhost:4317
//	    sampler: ratio
//	    sample_ratio: 0.1
package telemetry
