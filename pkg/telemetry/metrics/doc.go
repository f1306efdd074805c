// Package metrics exports Prometheus metrics for regroup.
//
// # Metrics
//
//   - Conversions: count by status, latency, proxies processed, regions
//     per document and proxies per region
//   - Rule set: active rule count, reload attempts by result and the time
//     of the last successful load
//   - HTTP: request count by method, route and status code, and latency
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	start := time.Now()
//	doc, summary, err := transformer.ConvertWithSummary(doc, groups, rules)
//	collector.RecordConversion(metrics.StatusSuccess, time.Since(start), summary)
//
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
package metrics
