package config

import (
	"fmt"
	"net"
	"net/url"
	"slices"
	"strings"

	"regroup-hq/regroup/pkg/classify"
	"regroup-hq/regroup/pkg/ruleset"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateConvert(&cfg.Convert, cfg.Ruleset.Target)...)
	errs = append(errs, validateRuleset(&cfg.Ruleset, cfg.Convert.GroupNames)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid listen address %q: %v", cfg.ListenAddress, err),
		})
	}

	timeouts := []struct {
		field string
		value int64
	}{
		{"server.read_timeout", int64(cfg.ReadTimeout)},
		{"server.write_timeout", int64(cfg.WriteTimeout)},
		{"server.idle_timeout", int64(cfg.IdleTimeout)},
		{"server.shutdown_timeout", int64(cfg.ShutdownTimeout)},
		{"server.request_timeout", int64(cfg.RequestTimeout)},
	}
	for _, t := range timeouts {
		if t.value < 0 {
			errs = append(errs, FieldError{Field: t.field, Message: "timeout must not be negative"})
		}
	}

	if cfg.MaxHeaderBytes < 0 || cfg.MaxHeaderBytes > 10*1024*1024 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be between 0 and 10MB",
		})
	}
	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_body_bytes",
			Message: "max body bytes must not be negative",
		})
	}
	if cfg.CORS.MaxAge < 0 {
		errs = append(errs, FieldError{
			Field:   "server.cors.max_age",
			Message: "max age must not be negative",
		})
	}

	return errs
}

// validateConvert validates the classifier and group settings. Rules
// routed to DIRECT or REJECT need no selector group.
func validateConvert(cfg *ConvertConfig, target string) []FieldError {
	var errs []FieldError

	if len(cfg.GroupNames) == 0 && !isBuiltinTarget(target) {
		errs = append(errs, FieldError{
			Field:   "convert.group_names",
			Message: "at least one group name is required unless ruleset.target is DIRECT or REJECT",
		})
	}

	labels := make(map[string]bool, len(cfg.Regions))
	for i, r := range cfg.Regions {
		if r.Label == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("convert.regions[%d].label", i),
				Message: "region label is required",
			})
			continue
		}
		if labels[r.Label] {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("convert.regions[%d].label", i),
				Message: fmt.Sprintf("duplicate region label %q", r.Label),
			})
		}
		labels[r.Label] = true
	}
	if cfg.FallbackRegion == "" {
		errs = append(errs, FieldError{
			Field:   "convert.fallback_region",
			Message: "fallback region is required",
		})
	}
	labels[cfg.FallbackRegion] = true

	seen := make(map[string]bool, len(cfg.GroupNames))
	for i, name := range cfg.GroupNames {
		field := fmt.Sprintf("convert.group_names[%d]", i)
		switch {
		case name == "":
			errs = append(errs, FieldError{Field: field, Message: "group name must not be empty"})
		case seen[name]:
			errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("duplicate group name %q", name)})
		case labels[name]:
			errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("group name %q collides with a region label", name)})
		}
		seen[name] = true
	}

	if _, err := classify.New(classify.Options{RatePattern: cfg.RatePattern}); err != nil {
		errs = append(errs, FieldError{
			Field:   "convert.rate_pattern",
			Message: err.Error(),
		})
	}

	if err := validateHTTPURL(cfg.URLTest.URL); err != nil {
		errs = append(errs, FieldError{Field: "convert.url_test.url", Message: err.Error()})
	}
	if cfg.URLTest.Interval <= 0 {
		errs = append(errs, FieldError{
			Field:   "convert.url_test.interval",
			Message: "interval must be positive",
		})
	}
	if cfg.URLTest.Tolerance < 0 {
		errs = append(errs, FieldError{
			Field:   "convert.url_test.tolerance",
			Message: "tolerance must not be negative",
		})
	}

	return errs
}

// validateRuleset validates the rule list source.
func validateRuleset(cfg *RulesetConfig, groupNames []string) []FieldError {
	var errs []FieldError

	switch cfg.Source {
	case RulesetSourceEmbedded:
	case RulesetSourceFile:
		if cfg.Path == "" {
			errs = append(errs, FieldError{
				Field:   "ruleset.path",
				Message: "path is required when source is 'file'",
			})
		}
	case RulesetSourceURL:
		if err := validateHTTPURL(cfg.URL); err != nil {
			errs = append(errs, FieldError{Field: "ruleset.url", Message: err.Error()})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "ruleset.source",
			Message: fmt.Sprintf("invalid source %q: must be 'embedded', 'file', or 'url'", cfg.Source),
		})
	}

	if cfg.Watch && cfg.Source != RulesetSourceFile {
		errs = append(errs, FieldError{
			Field:   "ruleset.watch",
			Message: "watch requires source 'file'",
		})
	}

	if cfg.RefreshSchedule != "" {
		if err := ruleset.ValidateSchedule(cfg.RefreshSchedule); err != nil {
			errs = append(errs, FieldError{Field: "ruleset.refresh_schedule", Message: err.Error()})
		}
	}

	if cfg.DebounceInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "ruleset.debounce_interval",
			Message: "debounce interval must not be negative",
		})
	}
	if cfg.FetchTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "ruleset.fetch_timeout",
			Message: "fetch timeout must not be negative",
		})
	}

	if cfg.Target == "" {
		errs = append(errs, FieldError{
			Field:   "ruleset.target",
			Message: "target is required",
		})
	} else if !isBuiltinTarget(cfg.Target) && !slices.Contains(groupNames, cfg.Target) {
		errs = append(errs, FieldError{
			Field:   "ruleset.target",
			Message: fmt.Sprintf("target %q must be one of convert.group_names, DIRECT or REJECT", cfg.Target),
		})
	}

	return errs
}

// validateTelemetry validates logging, metrics and tracing configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		switch {
		case !strings.HasPrefix(cfg.Metrics.Path, "/"):
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with '/'",
			})
		case reservedPaths[cfg.Metrics.Path]:
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: fmt.Sprintf("metrics path %q is reserved", cfg.Metrics.Path),
			})
		}
	}

	if cfg.Tracing.Enabled {
		switch cfg.Tracing.Sampler {
		case "always", "never":
		case "ratio":
			if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
				errs = append(errs, FieldError{
					Field:   "telemetry.tracing.sample_ratio",
					Message: fmt.Sprintf("sample ratio must be between 0.0 and 1.0, got %g", cfg.Tracing.SampleRatio),
				})
			}
		default:
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "endpoint is required when tracing is enabled",
			})
		}
	}

	return errs
}

var reservedPaths = map[string]bool{
	"/":        true,
	"/health":  true,
	"/ready":   true,
	"/version": true,
}

func validateHTTPURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid URL %q: host is required", raw)
	}
	return nil
}

func isBuiltinTarget(name string) bool {
	return name == "DIRECT" || name == "REJECT"
}
