package config

import (
	"slices"
	"time"

	"regroup-hq/regroup/pkg/classify"
	"regroup-hq/regroup/pkg/transform"
)

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "0.0.0.0:5555"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 10 * time.Second
	DefaultMaxHeaderBytes  = 1048576  // 1MB
	DefaultMaxBodyBytes    = 10485760 // 10MB

	// CORS defaults
	DefaultCORSMaxAge = 3600

	// Convert defaults
	DefaultGroupName = "OpenAI"

	// Ruleset defaults
	DefaultRulesetSource    = RulesetSourceEmbedded
	DefaultDebounceInterval = 100 * time.Millisecond
	DefaultFetchTimeout     = 15 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "regroup"

	// Tracing defaults
	DefaultTracingServiceName = "regroup"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingTimeout     = 10 * time.Second
)

// DefaultDurationBuckets are the conversion duration histogram buckets.
var DefaultDurationBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Defaults returns a configuration populated with every default value.
func Defaults() *Config {
	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets defaults for any fields that have zero values.
// It is idempotent.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	applyCORSDefaults(&cfg.Server.CORS)

	// Convert defaults
	if cfg.Convert.GroupNames == nil {
		cfg.Convert.GroupNames = []string{DefaultGroupName}
	}
	if len(cfg.Convert.Regions) == 0 {
		cfg.Convert.Regions = classify.DefaultRegions()
	}
	if cfg.Convert.FallbackRegion == "" {
		cfg.Convert.FallbackRegion = classify.DefaultFallbackRegion
	}
	if cfg.Convert.RatePattern == "" {
		cfg.Convert.RatePattern = classify.DefaultRatePattern
	}
	if cfg.Convert.URLTest.URL == "" {
		cfg.Convert.URLTest.URL = transform.DefaultHealthCheckURL
	}
	if cfg.Convert.URLTest.Interval == 0 {
		cfg.Convert.URLTest.Interval = transform.DefaultInterval
	}
	if cfg.Convert.URLTest.Tolerance == 0 {
		cfg.Convert.URLTest.Tolerance = transform.DefaultTolerance
	}

	// Ruleset defaults
	if cfg.Ruleset.Source == "" {
		cfg.Ruleset.Source = DefaultRulesetSource
	}
	if cfg.Ruleset.Target == "" && len(cfg.Convert.GroupNames) > 0 {
		cfg.Ruleset.Target = cfg.Convert.GroupNames[0]
	}
	if cfg.Ruleset.DebounceInterval == 0 {
		cfg.Ruleset.DebounceInterval = DefaultDebounceInterval
	}
	if cfg.Ruleset.FetchTimeout == 0 {
		cfg.Ruleset.FetchTimeout = DefaultFetchTimeout
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = slices.Clone(DefaultDurationBuckets)
	}
	applyTracingDefaults(&cfg.Telemetry.Tracing)
}

func applyTracingDefaults(tr *TracingConfig) {
	if tr.ServiceName == "" {
		tr.ServiceName = DefaultTracingServiceName
	}
	if tr.Sampler == "" {
		tr.Sampler = DefaultTracingSampler
	}
	if tr.Sampler == DefaultTracingSampler && tr.SampleRatio == 0 {
		tr.SampleRatio = DefaultTracingSampleRatio
	}
	if tr.Endpoint == "" {
		tr.Endpoint = DefaultTracingEndpoint
	}
	if tr.Timeout == 0 {
		tr.Timeout = DefaultTracingTimeout
	}
}

func applyCORSDefaults(cors *CORSConfig) {
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"X-Request-ID"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}
