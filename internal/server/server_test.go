package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/crewrota/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("CREWROTA_HTTP_BIND", "127.0.0.1")
	t.Setenv("CREWROTA_HTTP_PORT", "18080")
	t.Setenv("CREWROTA_METRICS_BIND", "127.0.0.1:19000")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	srv, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func TestNewWiresListeners(t *testing.T) {
	srv := newTestServer(t)

	if got := srv.HTTPServer().Addr; got != "127.0.0.1:18080" {
		t.Fatalf("http addr=%q", got)
	}
	if srv.MetricsServer() == nil || srv.MetricsServer().Addr != "127.0.0.1:19000" {
		t.Fatal("expected metrics listener on 127.0.0.1:19000")
	}
}

func TestHealthzWithoutCache(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `{"status":"ok"}` {
		t.Fatalf("body=%s", got)
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("security headers missing")
	}
}

func TestRouterServesPlanningAPI(t *testing.T) {
	srv := newTestServer(t)

	body := `{"duty_cycle_length":14,"rest_cycle_length":7,"induction_length":5,"horizon_days":45}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedules", strings.NewReader(body))
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"duty_ceiling":16`) {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	srv := newTestServer(t)
	srv.httpServer.Addr = "127.0.0.1:0"
	srv.metricsServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, time.Second) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("ListenAndServe: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
