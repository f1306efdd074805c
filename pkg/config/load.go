package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "REGROUP_"

// LoadConfig loads configuration from a YAML file at the specified path,
// applies default values and validates the result. An empty path yields
// the default configuration.
func LoadConfig(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention REGROUP_SECTION_FIELD (e.g., REGROUP_SERVER_LISTEN_ADDRESS) and
// always take precedence over the file.
//
// The loading sequence is:
// 1. Load YAML from file (if any)
// 2. Apply environment variable overrides
// 3. Apply default values
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. A value that cannot be parsed is reported as a FieldError.
func applyEnvOverrides(cfg *Config) error {
	var errs []FieldError
	env := envReader{errs: &errs}

	// Server overrides
	env.string("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	env.duration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	env.duration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	env.duration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	env.duration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	env.duration("SERVER_REQUEST_TIMEOUT", &cfg.Server.RequestTimeout)
	env.int64("SERVER_MAX_BODY_BYTES", &cfg.Server.MaxBodyBytes)
	env.bool("SERVER_CORS_ENABLED", &cfg.Server.CORS.Enabled)

	// Convert overrides
	if val := os.Getenv(EnvPrefix + "CONVERT_GROUP_NAMES"); val != "" {
		cfg.Convert.GroupNames = splitList(val)
	}
	env.string("CONVERT_FALLBACK_REGION", &cfg.Convert.FallbackRegion)
	env.string("CONVERT_RATE_PATTERN", &cfg.Convert.RatePattern)
	env.string("CONVERT_URL_TEST_URL", &cfg.Convert.URLTest.URL)

	// Ruleset overrides
	env.string("RULESET_SOURCE", &cfg.Ruleset.Source)
	env.string("RULESET_PATH", &cfg.Ruleset.Path)
	env.string("RULESET_URL", &cfg.Ruleset.URL)
	env.string("RULESET_TARGET", &cfg.Ruleset.Target)
	env.bool("RULESET_WATCH", &cfg.Ruleset.Watch)
	env.string("RULESET_REFRESH_SCHEDULE", &cfg.Ruleset.RefreshSchedule)
	env.duration("RULESET_FETCH_TIMEOUT", &cfg.Ruleset.FetchTimeout)

	// Telemetry overrides
	env.string("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	env.string("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	env.bool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	env.string("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	env.bool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	env.string("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	env.string("TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

type envReader struct {
	errs *[]FieldError
}

func (r envReader) lookup(key string) (string, bool) {
	val := os.Getenv(EnvPrefix + key)
	return val, val != ""
}

func (r envReader) fail(key, kind, val string) {
	*r.errs = append(*r.errs, FieldError{
		Field:   EnvPrefix + key,
		Message: fmt.Sprintf("invalid %s %q", kind, val),
	})
}

func (r envReader) string(key string, dst *string) {
	if val, ok := r.lookup(key); ok {
		*dst = val
	}
}

func (r envReader) bool(key string, dst *bool) {
	if val, ok := r.lookup(key); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			r.fail(key, "boolean", val)
			return
		}
		*dst = b
	}
}

func (r envReader) duration(key string, dst *time.Duration) {
	if val, ok := r.lookup(key); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			r.fail(key, "duration", val)
			return
		}
		*dst = d
	}
}

func (r envReader) int64(key string, dst *int64) {
	if val, ok := r.lookup(key); ok {
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			r.fail(key, "integer", val)
			return
		}
		*dst = i
	}
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
