package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"regroup-hq/regroup/pkg/api/middleware"
	"regroup-hq/regroup/pkg/config"
	"regroup-hq/regroup/pkg/telemetry/health"
	"regroup-hq/regroup/pkg/telemetry/metrics"
	"regroup-hq/regroup/pkg/telemetry/tracing"
)

// Options carries the components the server routes to.
type Options struct {
	// Convert serves "/". Required.
	Convert http.Handler

	// Health serves /health and /ready. Defaults to a checker without checks.
	Health *health.Checker

	// Version is served at /version.
	Version health.VersionInfo

	// Metrics records HTTP requests and, when enabled in the telemetry
	// config, is served at the metrics path.
	Metrics *metrics.Collector

	// Tracer opens a span per request. Nil disables tracing.
	Tracer *tracing.Tracer

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Server is the regroup HTTP server.
type Server struct {
	config     *config.ServerConfig
	metricsCfg *config.MetricsConfig
	opts       Options
	logger     *slog.Logger

	httpServer   *http.Server
	listener     net.Listener
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server for cfg.
func New(cfg *config.Config, opts Options) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if opts.Convert == nil {
		return nil, errors.New("convert handler is required")
	}
	if opts.Health == nil {
		opts.Health = health.New(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		config:     &cfg.Server,
		metricsCfg: &cfg.Telemetry.Metrics,
		opts:       opts,
		logger:     logger.With("component", "server"),
	}, nil
}

// Start listens on the configured address and serves until ctx is
// cancelled or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:        s.setupRoutes(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	s.isRunning = true
	httpServer := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "address", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully stops the server. Only the first call has an effect.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		httpServer := s.httpServer
		running := s.isRunning
		s.mu.RUnlock()
		if !running || httpServer == nil {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx := ctx
		if s.config.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
			defer cancel()
		}

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the address the server listens on, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/{$}", s.opts.Convert)
	health.Register(mux, s.opts.Health, s.opts.Version)

	routes := []string{"/", "/health", "/ready", "/version"}
	if s.opts.Metrics != nil && s.metricsCfg.Enabled {
		mux.Handle(s.metricsCfg.Path, s.opts.Metrics.Handler())
		routes = append(routes, s.metricsCfg.Path)
	}

	var recorder middleware.MetricsRecorder
	if s.opts.Metrics != nil {
		recorder = s.opts.Metrics
	}

	// Innermost first.
	var handler http.Handler = mux
	handler = middleware.BodyLimit(s.config.MaxBodyBytes)(handler)
	handler = middleware.Timeout(s.config.RequestTimeout)(handler)
	handler = middleware.CORS(&s.config.CORS)(handler)
	handler = tracing.Middleware(s.opts.Tracer)(handler)
	handler = middleware.Logging(s.logger, recorder, routes...)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(s.logger)(handler)

	return handler
}
