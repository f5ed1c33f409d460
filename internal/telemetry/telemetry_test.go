package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Get("/coverage-start/{n}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := APIRequestsTotal.WithLabelValues(http.MethodGet, "/coverage-start/{n}", "418")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodGet, "/coverage-start/5", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Fatalf("request counter delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(APIActiveConnections); got != 0 {
		t.Fatalf("active connections = %v after request, want 0", got)
	}
}

func TestHandlerServesSolverMetrics(t *testing.T) {
	SolverRunsTotal.WithLabelValues("horizon", OutcomeSolved).Inc()

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(rr.Body.String(), "crewrota_solver_runs_total") {
		t.Fatal("expected solver run counter in metrics output")
	}
}

func TestInitTracerDisabled(t *testing.T) {
	tp, err := InitTracer(context.Background(), TracerConfig{Enabled: false}, zerolog.Nop())
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	ctx, span := StartSpan(context.Background(), "test", "noop")
	AddSpanAttributes(span, map[string]any{"n": 14, "ok": true})
	RecordError(span, errors.New("boom"))
	span.End()

	if err := tp.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
