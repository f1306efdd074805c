package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"regroup-hq/regroup/pkg/api/handlers"
	"regroup-hq/regroup/pkg/cli"
	"regroup-hq/regroup/pkg/config"
	"regroup-hq/regroup/pkg/ruleset"
	"regroup-hq/regroup/pkg/server"
	"regroup-hq/regroup/pkg/telemetry/health"
	"regroup-hq/regroup/pkg/telemetry/logging"
	"regroup-hq/regroup/pkg/telemetry/metrics"
	"regroup-hq/regroup/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the regroup HTTP server",
	Long: `Start the regroup HTTP server with the specified configuration.

The server converts configurations posted to "/" and serves health,
readiness, version and metrics endpoints. The rule list is loaded before
the server starts; file sources can be watched and any source can be
refreshed on a cron schedule.

Examples:
  # Start with defaults on 0.0.0.0:5555
  regroup run

  # Start with a config file
  regroup run --config /etc/regroup/config.yaml

  # Override listen address
  regroup run --listen 127.0.0.1:8080

  # Validate config and load the rule list without starting the server
  regroup run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config and rule list without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	config.SetConfig(cfg)

	logger, err := newLogger(cfg)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	transformer, err := newTransformer(&cfg.Convert)
	if err != nil {
		return err
	}
	source, err := newSource(&cfg.Ruleset, tracer)
	if err != nil {
		return err
	}
	store, err := newStore(cfg, source, logger, collector.RecordRulesetReload)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	set, err := store.Reload(ctx)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to load rule set: %w", err))
	}

	checker := health.New(0)
	checker.RegisterCheck("ruleset", store.Ready)

	if runFlags.dryRun {
		return printDryRun(cmd, set, checker.CheckReadiness(ctx), checker.ListChecks())
	}

	convert, err := handlers.NewConvertHandler(handlers.ConvertOptions{
		Transformer:  transformer,
		Rules:        store,
		Metrics:      collector,
		Tracer:       tracer,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Redactor:     logging.NewRedactor(logging.DefaultRedactKeys),
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	srv, err := server.New(cfg, server.Options{
		Convert: convert,
		Health:  checker,
		Version: health.NewVersionInfo(Version, GitCommit, BuildDate),
		Metrics: collector,
		Tracer:  tracer,
		Logger:  logger,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	logger.Info("starting regroup",
		"version", Version,
		"config", cfgFile,
		"ruleset", set.Source,
		"rules", len(set.Rules),
		"tracing", tracer.Enabled(),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})

	if cfg.Ruleset.Watch && cfg.Ruleset.Source == config.RulesetSourceFile {
		watcher, err := ruleset.NewWatcher(store, cfg.Ruleset.Path, cfg.Ruleset.DebounceInterval, logger)
		if err != nil {
			stop()
			_ = g.Wait()
			return cli.NewCommandError("run", err)
		}
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}

	if cfg.Ruleset.RefreshSchedule != "" {
		scheduler, err := ruleset.NewScheduler(store, cfg.Ruleset.RefreshSchedule, logger)
		if err != nil {
			stop()
			_ = g.Wait()
			return cli.NewCommandError("run", err)
		}
		g.Go(func() error {
			return scheduler.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return cli.NewCommandError("run", err)
	}

	logger.Info("regroup stopped")
	return nil
}

// printDryRun reports the loaded rule set and the result of each
// readiness check. A failing check fails the dry run.
func printDryRun(cmd *cobra.Command, set *ruleset.Set, status health.HealthStatus, checks []string) error {
	w := stdout(cmd)
	fmt.Fprintln(w, "✓ Configuration valid")
	fmt.Fprintf(w, "✓ Rule set %s loaded from %s (%d rules)\n", set.Name, set.Source, len(set.Rules))

	for _, name := range checks {
		result := status.Checks[name]
		if result.Status != health.StatusOK {
			fmt.Fprintf(w, "✗ Readiness check %s: %s\n", name, result.Message)
			continue
		}
		fmt.Fprintf(w, "✓ Readiness check %s: ok\n", name)
	}

	if !status.Ready() {
		return cli.NewCommandError("run", fmt.Errorf("readiness checks failed"))
	}
	return nil
}
