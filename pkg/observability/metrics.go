package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records engine activity as Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	actions  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	open     prometheus.Gauge
}

// NewMetrics creates the collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_actions_total",
				Help: "Total number of modal submissions by outcome",
			},
			[]string{"action", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storefront_action_duration_seconds",
				Help:    "Duration of dispatched backend calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action"},
		),
		open: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_session_open",
			Help: "Whether a modal session is open (0 or 1)",
		}),
	}
	m.registry.MustRegister(m.actions, m.duration, m.open)
	return m
}

// Registry exposes the underlying registry, for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnOpen: func(ctx context.Context, e *domain.SessionEvent) {
			m.open.Set(1)
		},
		OnClose: func(ctx context.Context, e *domain.SessionEvent) {
			// A superseded session is immediately followed by the new one.
			if e.Reason != domain.CloseSuperseded {
				m.open.Set(0)
			}
		},
		OnSettle: func(ctx context.Context, e *domain.ActionEvent) {
			m.actions.WithLabelValues(string(e.ActionID), string(e.Outcome)).Inc()
			if e.Outcome == domain.OutcomeSuccess || e.Outcome == domain.OutcomeError {
				m.duration.WithLabelValues(string(e.ActionID)).Observe(e.Duration.Seconds())
			}
		},
	}
}
