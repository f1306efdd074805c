package metrics

import (
	"time"

	"regroup-hq/regroup/pkg/config"
	"regroup-hq/regroup/pkg/transform"

	"github.com/prometheus/client_golang/prometheus"
)

// ConversionMetrics tracks document conversions.
//
// Metrics:
//   - regroup_conversions_total: conversions by status
//   - regroup_conversion_duration_seconds: conversion latency
//   - regroup_proxies_processed_total: proxies sorted into region groups
//   - regroup_regions_per_document: distinct regions per converted document
//   - regroup_region_proxies_total: proxies per region label
type ConversionMetrics struct {
	total         *prometheus.CounterVec
	duration      prometheus.Histogram
	proxies       prometheus.Counter
	regions       prometheus.Histogram
	regionProxies *prometheus.CounterVec
}

// NewConversionMetrics creates and registers conversion metrics.
func NewConversionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ConversionMetrics {
	m := &ConversionMetrics{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "conversions_total",
				Help:      "Total number of conversion requests by status",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "conversion_duration_seconds",
				Help:      "Duration of document conversions in seconds",
				Buckets:   cfg.DurationBuckets,
			},
		),
		proxies: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "proxies_processed_total",
				Help:      "Total number of proxies sorted into region groups",
			},
		),
		regions: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "regions_per_document",
				Help:      "Number of region groups generated per document",
				Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
			},
		),
		regionProxies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "region_proxies_total",
				Help:      "Total number of proxies classified into each region",
			},
			[]string{"region"},
		),
	}

	registry.MustRegister(m.total, m.duration, m.proxies, m.regions, m.regionProxies)
	return m
}

// Record records one conversion.
func (m *ConversionMetrics) Record(status string, duration time.Duration, summary transform.Summary) {
	m.total.WithLabelValues(status).Inc()
	m.duration.Observe(duration.Seconds())

	if status != StatusSuccess {
		return
	}
	m.proxies.Add(float64(summary.Proxies))
	m.regions.Observe(float64(len(summary.Regions)))
	for _, r := range summary.Regions {
		m.regionProxies.WithLabelValues(r.Label).Add(float64(r.Count))
	}
}
