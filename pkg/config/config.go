package config

import (
	"time"

	"regroup-hq/regroup/pkg/classify"
)

// Config is the root configuration structure for regroup.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and request limits.
	Server ServerConfig `yaml:"server"`

	// Convert controls how proxy names are classified and which groups
	// are added to converted documents.
	Convert ConvertConfig `yaml:"convert"`

	// Ruleset describes where the prepended rules are loaded from.
	Ruleset RulesetConfig `yaml:"ruleset"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "0.0.0.0:5555"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout bounds the handling of a single request.
	// Default: 10s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits the size of a conversion request body.
	// Default: 10485760 (10MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are written.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins lists allowed origins. ["*"] allows all.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods lists allowed methods.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders lists allowed request headers.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders lists headers exposed to the client.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`

	// AllowCredentials allows cookies and auth headers.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// ConvertConfig controls document conversion.
type ConvertConfig struct {
	// GroupNames are the select groups added to every document. Each one
	// lists every group in the converted document. An explicit empty list
	// adds none and requires ruleset.target to be DIRECT or REJECT.
	// Default: ["OpenAI"]
	GroupNames []string `yaml:"group_names"`

	// Regions is the ordered region table. The first region with a marker
	// contained in a proxy name wins.
	// Default: classify.DefaultRegions()
	Regions []classify.Region `yaml:"regions"`

	// FallbackRegion labels names no region matches.
	// Default: "其他"
	FallbackRegion string `yaml:"fallback_region"`

	// RatePattern extracts the rate from a proxy name. It must contain
	// exactly one capture group.
	// Default: `倍率:([\d.]+)`
	RatePattern string `yaml:"rate_pattern"`

	// URLTest configures the generated url-test region groups.
	URLTest URLTestConfig `yaml:"url_test"`
}

// URLTestConfig configures generated url-test groups.
type URLTestConfig struct {
	// URL is the health check URL.
	// Default: "http://www.gstatic.com/generate_204"
	URL string `yaml:"url"`

	// Interval is the health check interval in seconds.
	// Default: 300
	Interval int `yaml:"interval"`

	// Tolerance is the latency tolerance in milliseconds.
	// Default: 100
	Tolerance int `yaml:"tolerance"`
}

// Rule set sources.
const (
	RulesetSourceEmbedded = "embedded"
	RulesetSourceFile     = "file"
	RulesetSourceURL      = "url"
)

// RulesetConfig configures the prepended rule list.
type RulesetConfig struct {
	// Source selects where the list is loaded from.
	// Options: "embedded", "file", "url"
	// Default: "embedded"
	Source string `yaml:"source"`

	// Path is the list file when Source is "file".
	Path string `yaml:"path"`

	// URL is the list location when Source is "url".
	URL string `yaml:"url"`

	// Target is the group that list lines without a target route to.
	// Default: the first entry of convert.group_names
	Target string `yaml:"target"`

	// Watch reloads a file source when it changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period before a file change is reloaded.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// RefreshSchedule is a cron expression for periodic reloads.
	// Example: "@every 6h"
	RefreshSchedule string `yaml:"refresh_schedule"`

	// FetchTimeout bounds a URL download.
	// Default: 15s
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether the Prometheus endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "regroup"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets defines histogram buckets for conversion duration (seconds).
	// Default: [0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "regroup"
	ServiceName string `yaml:"service_name"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export call.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
