package metrics

import (
	"regroup-hq/regroup/pkg/config"
	"regroup-hq/regroup/pkg/ruleset"

	"github.com/prometheus/client_golang/prometheus"
)

// RulesetMetrics tracks the prepended rule set.
//
// Metrics:
//   - regroup_ruleset_rules: rules in the active set
//   - regroup_ruleset_reloads_total: reload attempts by result
//   - regroup_ruleset_last_reload_timestamp_seconds: time of the last successful load
type RulesetMetrics struct {
	rules      *prometheus.GaugeVec
	reloads    *prometheus.CounterVec
	lastReload *prometheus.GaugeVec
}

// NewRulesetMetrics creates and registers rule set metrics.
func NewRulesetMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RulesetMetrics {
	m := &RulesetMetrics{
		rules: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ruleset_rules",
				Help:      "Number of rules in the active rule set",
			},
			[]string{"ruleset"},
		),
		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ruleset_reloads_total",
				Help:      "Total number of rule set reload attempts by result",
			},
			[]string{"result"},
		),
		lastReload: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ruleset_last_reload_timestamp_seconds",
				Help:      "Unix time of the last successful rule set load",
			},
			[]string{"ruleset"},
		),
	}

	registry.MustRegister(m.rules, m.reloads, m.lastReload)
	return m
}

// Record records a reload attempt.
func (m *RulesetMetrics) Record(set *ruleset.Set, err error) {
	if err != nil || set == nil {
		m.reloads.WithLabelValues("failure").Inc()
		return
	}
	m.reloads.WithLabelValues("success").Inc()
	m.rules.WithLabelValues(set.Name).Set(float64(len(set.Rules)))
	m.lastReload.WithLabelValues(set.Name).Set(float64(set.LoadedAt.Unix()))
}
