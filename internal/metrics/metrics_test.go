package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/luxury-retail/productlist/internal/offline"
	"github.com/luxury-retail/productlist/internal/storage"
)

func TestMetrics_CountersAndGauges(t *testing.T) {
	m := New()

	m.ObserveLoad("loaded")
	m.ObserveLoad("loaded")
	m.ObserveLoad("fallback")
	if got := testutil.ToFloat64(m.loads.WithLabelValues("loaded")); got != 2 {
		t.Fatalf("loads{loaded} = %v, want 2", got)
	}

	m.Replayed(storage.QueuedRequest{ID: "1"})
	m.ReplayFailed(storage.QueuedRequest{ID: "2"}, errors.New("x"))
	m.Drained(offline.Result{Attempted: 2, Replayed: 1, Failed: 1, Remaining: 1})
	if got := testutil.ToFloat64(m.replays.WithLabelValues("error")); got != 1 {
		t.Fatalf("replays{error} = %v, want 1", got)
	}
	m.ReplayFailed(storage.QueuedRequest{ID: "3"}, fmt.Errorf("request 3: %w", offline.ErrReplayRejected))
	if got := testutil.ToFloat64(m.replays.WithLabelValues("rejected")); got != 1 {
		t.Fatalf("replays{rejected} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.queueDepth); got != 1 {
		t.Fatalf("queue_depth = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.drains); got != 1 {
		t.Fatalf("drains = %v, want 1", got)
	}

	m.ObserveNavigation("embedded", nil)
	m.ObserveNavigation("embedded", errors.New("denied"))
	if got := testutil.ToFloat64(m.navigations.WithLabelValues("embedded", "error")); got != 1 {
		t.Fatalf("navigations{embedded,error} = %v, want 1", got)
	}

	m.ObserveAction("camera", nil)
	if got := testutil.ToFloat64(m.actions.WithLabelValues("camera", "ok")); got != 1 {
		t.Fatalf("actions{camera,ok} = %v, want 1", got)
	}

	m.SetOnline(true)
	if got := testutil.ToFloat64(m.online); got != 1 {
		t.Fatalf("online = %v, want 1", got)
	}
	m.SetOnline(false)
	if got := testutil.ToFloat64(m.online); got != 0 {
		t.Fatalf("online = %v, want 0", got)
	}
}

func TestMetrics_HandlerExposesNamespace(t *testing.T) {
	m := New()
	m.ObserveLoad("recovered")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `productlist_catalog_loads_total{outcome="recovered"} 1`) {
		t.Fatalf("metrics output missing load counter:\n%s", body)
	}
}

func TestRouter_ServesMetricsAndHealth(t *testing.T) {
	m := New()
	m.ObserveLoad("loaded")
	router := m.Router()

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodPost, "/metrics", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.want {
			t.Fatalf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `productlist_catalog_loads_total{outcome="loaded"} 1`) {
		t.Fatalf("routed metrics missing load counter:\n%s", rec.Body.String())
	}
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.ObserveLoad("loaded")
	if got := testutil.ToFloat64(b.loads.WithLabelValues("loaded")); got != 0 {
		t.Fatalf("registries share state: %v", got)
	}
}
