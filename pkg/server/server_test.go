package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"regroup-hq/regroup/pkg/api/handlers"
	"regroup-hq/regroup/pkg/config"
	"regroup-hq/regroup/pkg/ruleset"
	"regroup-hq/regroup/pkg/telemetry/health"
	"regroup-hq/regroup/pkg/telemetry/metrics"
)

const convertBody = `{"content": {
  "proxies": [{"name": "香港 01 倍率:1.0", "type": "ss"}],
  "proxy-groups": [],
  "rules": ["MATCH,DIRECT"]
}}`

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Server.ListenAddress = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = 5 * time.Second
	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, cfg *config.Config, checker *health.Checker) (*Server, *metrics.Collector) {
	t.Helper()

	set, err := ruleset.NewSet("OpenAI", []string{"OpenAI"}, []string{"DOMAIN-SUFFIX,openai.com,OpenAI"})
	if err != nil {
		t.Fatalf("NewSet() error = %v", err)
	}
	convert, err := handlers.NewConvertHandler(handlers.ConvertOptions{Rules: ruleset.NewStaticStore(set)})
	if err != nil {
		t.Fatalf("NewConvertHandler() error = %v", err)
	}

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	srv, err := New(cfg, Options{
		Convert: convert,
		Health:  checker,
		Version: health.NewVersionInfo("1.2.3", "abc123", "2026-01-01T00:00:00Z"),
		Metrics: collector,
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv, collector
}

func TestNew(t *testing.T) {
	if _, err := New(nil, Options{Convert: http.NotFoundHandler()}); err == nil {
		t.Error("New(nil config) should fail")
	}
	if _, err := New(testConfig(), Options{}); err == nil {
		t.Error("New() without a convert handler should fail")
	}

	srv, err := New(testConfig(), Options{Convert: http.NotFoundHandler()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if srv.IsRunning() {
		t.Error("new server should not be running")
	}
	if srv.Addr() != "" {
		t.Errorf("Addr() = %q before Start, want empty", srv.Addr())
	}
}

func TestHandler_Routes(t *testing.T) {
	checker := health.New(time.Second)
	checker.RegisterCheck("ruleset", func(context.Context) error { return nil })

	srv, _ := newTestServer(t, testConfig(), checker)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"convert", http.MethodPost, "/", convertBody, http.StatusOK, `"01港"`},
		{"convert via GET", http.MethodGet, "/", convertBody, http.StatusOK, `"OpenAI"`},
		{"liveness", http.MethodGet, "/health", "", http.StatusOK, `"status":"ok"`},
		{"readiness", http.MethodGet, "/ready", "", http.StatusOK, `"ruleset"`},
		{"version", http.MethodGet, "/version", "", http.StatusOK, `"version":"1.2.3"`},
		{"unknown path", http.MethodGet, "/v1/convert", "", http.StatusNotFound, ""},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK, `route="/"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("NewRequest() error = %v", err)
			}
			resp, err := ts.Client().Do(req)
			if err != nil {
				t.Fatalf("Do() error = %v", err)
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, tt.wantStatus, body)
			}
			if tt.wantBody != "" && !strings.Contains(string(body), tt.wantBody) {
				t.Errorf("body = %s, want it to contain %s", body, tt.wantBody)
			}
			if resp.Header.Get("X-Request-ID") == "" {
				t.Error("X-Request-ID header not set")
			}
		})
	}
}

func TestHandler_NotReady(t *testing.T) {
	checker := health.New(time.Second)
	checker.RegisterCheck("ruleset", func(context.Context) error { return ruleset.ErrNotLoaded })

	srv, _ := newTestServer(t, testConfig(), checker)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestHandler_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.Metrics.Enabled = false

	srv, _ := newTestServer(t, cfg, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHandler_BodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxBodyBytes = 16

	srv, _ := newTestServer(t, cfg, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(convertBody)))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", w.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestStartShutdown(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for srv.Addr() == "" {
		if time.Now().After(deadline) {
			t.Fatal("server did not start")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !srv.IsRunning() {
		t.Error("IsRunning() = false after start")
	}

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + srv.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status = %d, want 200", resp.StatusCode)
	}

	if err := srv.Start(ctx); err == nil {
		t.Error("second Start() should fail while running")
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	if srv.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("repeated Shutdown() error = %v", err)
	}
}

func TestStart_ListenError(t *testing.T) {
	cfg := testConfig()
	cfg.Server.ListenAddress = "256.0.0.1:bad"

	srv, _ := newTestServer(t, cfg, nil)
	err := srv.Start(context.Background())
	if err == nil {
		t.Fatal("Start() should fail on an invalid address")
	}
	if srv.IsRunning() {
		t.Error("IsRunning() = true after failed start")
	}
}
