// Package metrics exposes Prometheus collectors for loads, offline sync and navigation.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/luxury-retail/productlist/internal/offline"
	"github.com/luxury-retail/productlist/internal/storage"
)

const namespace = "productlist"

// Ensure Metrics can observe drains at compile time.
var _ offline.Observer = (*Metrics)(nil)

// Metrics holds the app's collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	loads       *prometheus.CounterVec
	replays     *prometheus.CounterVec
	drains      prometheus.Counter
	navigations *prometheus.CounterVec
	actions     *prometheus.CounterVec
	queueDepth  prometheus.Gauge
	online      prometheus.Gauge
}

// New registers a fresh set of collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "loads_total",
			Help:      "Product loads by outcome.",
		}, []string{"outcome"}),
		replays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "offline",
			Name:      "replays_total",
			Help:      "Queued request replays by result.",
		}, []string{"result"}),
		drains: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "offline",
			Name:      "drains_total",
			Help:      "Completed offline queue drain passes.",
		}),
		navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "nav",
			Name:      "posts_total",
			Help:      "Product selections forwarded, by mode and result.",
		}, []string{"mode", "result"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "actions_total",
			Help:      "Native feature actions by action and result.",
		}, []string{"action", "result"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "offline",
			Name:      "queue_depth",
			Help:      "Requests left in the offline queue after the last drain.",
		}),
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "network",
			Name:      "online",
			Help:      "1 when the network is reachable.",
		}),
	}
	m.Registry.MustRegister(m.loads, m.replays, m.drains, m.navigations, m.actions, m.queueDepth, m.online)
	return m
}

// ObserveLoad counts a product load outcome.
func (m *Metrics) ObserveLoad(outcome string) {
	m.loads.WithLabelValues(outcome).Inc()
}

// ObserveNavigation counts a forwarded selection.
func (m *Metrics) ObserveNavigation(mode string, err error) {
	m.navigations.WithLabelValues(mode, result(err)).Inc()
}

// ObserveAction counts a camera or location action.
func (m *Metrics) ObserveAction(action string, err error) {
	m.actions.WithLabelValues(action, result(err)).Inc()
}

// SetOnline records the current network state.
func (m *Metrics) SetOnline(online bool) {
	if online {
		m.online.Set(1)
		return
	}
	m.online.Set(0)
}

// SetQueueDepth records the offline queue length.
func (m *Metrics) SetQueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}

func (m *Metrics) Replayed(storage.QueuedRequest) {
	m.replays.WithLabelValues("ok").Inc()
}

func (m *Metrics) ReplayFailed(_ storage.QueuedRequest, err error) {
	if errors.Is(err, offline.ErrReplayRejected) {
		m.replays.WithLabelValues("rejected").Inc()
		return
	}
	m.replays.WithLabelValues("error").Inc()
}

func (m *Metrics) Drained(res offline.Result) {
	m.drains.Inc()
	m.queueDepth.Set(float64(res.Remaining))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Router routes GET /metrics and GET /health.
func (m *Metrics) Router() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	return r
}

// Serve exposes Router on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, log zerolog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: m.Router(), ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("metrics listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
