package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"regroup-hq/regroup/pkg/classify"
	"regroup-hq/regroup/pkg/cli"
	"regroup-hq/regroup/pkg/config"
	"regroup-hq/regroup/pkg/ruleset"
	"regroup-hq/regroup/pkg/telemetry/logging"
	"regroup-hq/regroup/pkg/telemetry/tracing"
	"regroup-hq/regroup/pkg/transform"
)

// loadConfig loads cfgFile with environment overrides and applies the
// global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		if _, err := logging.ParseLevel(logLevel); err != nil {
			return nil, cli.NewConfigError("--log-level", err.Error())
		}
		cfg.Telemetry.Logging.Level = logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
}

func newTransformer(cfg *config.ConvertConfig) (*transform.Transformer, error) {
	classifier, err := classify.New(classify.Options{
		Regions:        cfg.Regions,
		FallbackRegion: cfg.FallbackRegion,
		RatePattern:    cfg.RatePattern,
	})
	if err != nil {
		return nil, cli.NewConfigError("convert", err.Error())
	}
	return transform.New(transform.Options{
		Classifier: classifier,
		URLTest: transform.URLTestOptions{
			URL:       cfg.URLTest.URL,
			Interval:  cfg.URLTest.Interval,
			Tolerance: cfg.URLTest.Tolerance,
		},
	}), nil
}

// newSource builds the rule list source. The tracer, when enabled, carries
// the trace context into remote fetches.
func newSource(cfg *config.RulesetConfig, tracer *tracing.Tracer) (ruleset.Source, error) {
	switch cfg.Source {
	case config.RulesetSourceEmbedded, "":
		return ruleset.EmbeddedSource{}, nil
	case config.RulesetSourceFile:
		return ruleset.FileSource{Path: cfg.Path}, nil
	case config.RulesetSourceURL:
		src := ruleset.URLSource{URL: cfg.URL, Timeout: cfg.FetchTimeout}
		if tracer.Enabled() {
			src.Prepare = func(req *http.Request) {
				tracer.Inject(req.Context(), req.Header)
			}
		}
		return src, nil
	default:
		return nil, cli.NewConfigError("ruleset.source", fmt.Sprintf("unknown source %q", cfg.Source))
	}
}

func newStore(cfg *config.Config, source ruleset.Source, logger *slog.Logger, onReload func(*ruleset.Set, error)) (*ruleset.Store, error) {
	return ruleset.NewStore(ruleset.StoreConfig{
		Name:     cfg.Ruleset.Target,
		Target:   cfg.Ruleset.Target,
		Groups:   cfg.Convert.GroupNames,
		Source:   source,
		Logger:   logger,
		OnReload: onReload,
	})
}
