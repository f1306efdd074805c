package metrics

import (
	"time"

	"regroup-hq/regroup/pkg/config"
	"regroup-hq/regroup/pkg/ruleset"
	"regroup-hq/regroup/pkg/transform"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Conversion outcomes used as the status label.
const (
	StatusSuccess     = "success"
	StatusPassThrough = "passthrough"
	StatusInvalidName = "invalid_name"
	StatusInvalidDoc  = "invalid_document"
	StatusError       = "error"
)

// Collector owns the Prometheus registry and every metric regroup exports.
// All Record methods are no-ops when metrics are disabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	conversion *ConversionMetrics
	ruleset    *RulesetMetrics
	request    *RequestMetrics
}

// NewCollector creates a collector. A nil registry gets a fresh one with the
// Go runtime and process collectors registered.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Namespace: "regroup"}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = config.DefaultDurationBuckets
	}

	return &Collector{
		config:     cfg,
		registry:   registry,
		conversion: NewConversionMetrics(cfg, registry),
		ruleset:    NewRulesetMetrics(cfg, registry),
		request:    NewRequestMetrics(cfg, registry),
	}
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordConversion records a finished conversion. The summary is only
// used when status is StatusSuccess.
func (c *Collector) RecordConversion(status string, duration time.Duration, summary transform.Summary) {
	if !c.config.Enabled {
		return
	}
	c.conversion.Record(status, duration, summary)
}

// RecordRulesetReload records a reload attempt. Its signature matches
// ruleset.StoreConfig.OnReload.
func (c *Collector) RecordRulesetReload(set *ruleset.Set, err error) {
	if !c.config.Enabled {
		return
	}
	c.ruleset.Record(set, err)
}

// RecordHTTPRequest records a served HTTP request.
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.request.Record(method, route, status, duration)
}
