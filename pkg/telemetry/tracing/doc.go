// Package tracing provides OpenTelemetry tracing for regroup.
//
// When telemetry.tracing.enabled is set, spans are exported over OTLP gRPC.
// Otherwise every span is a noop and the overhead is negligible.
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	handler = tracing.Middleware(tracer)(handler)
//
// Incoming W3C traceparent headers are honoured; sampling is parent based,
// so a sampled caller gets a sampled child span regardless of the local
// ratio.
package tracing
