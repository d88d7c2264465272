package observability

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cthstore/storefront/pkg/domain"
)

// Metrics holds the storefront collectors.
type Metrics struct {
	registry *prometheus.Registry

	turns         *prometheus.CounterVec
	turnDuration  *prometheus.HistogramVec
	sceneEnters   *prometheus.CounterVec
	loadDuration  *prometheus.HistogramVec
	loadedNodes   prometheus.Counter
	renderResults *prometheus.CounterVec
}

// NewMetrics creates the collectors on a fresh registry, together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_turns_total",
			Help: "User turns by scene and outcome.",
		}, []string{"scene", "outcome"}),
		turnDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_turn_duration_seconds",
			Help:    "Duration of user turns including source and renderer calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"scene"}),
		sceneEnters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_scene_enters_total",
			Help: "Scene entries.",
		}, []string{"scene"}),
		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_source_load_duration_seconds",
			Help:    "Duration of content source calls.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"result"}),
		loadedNodes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_source_nodes_total",
			Help: "Nodes returned by content sources.",
		}),
		renderResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_renders_total",
			Help: "Renderer calls by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		m.turns,
		m.turnDuration,
		m.sceneEnters,
		m.loadDuration,
		m.loadedNodes,
		m.renderResults,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Hooks returns lifecycle hooks recording into m and logging each event.
func (m *Metrics) Hooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSceneEnter: func(ctx context.Context, e *domain.SceneEvent) {
			m.sceneEnters.WithLabelValues(string(e.Scene)).Inc()
			logger.Debug("scene_enter", "user_id", e.UserID, "scene", e.Scene)
		},
		OnSceneLeave: func(ctx context.Context, e *domain.SceneEvent) {
			logger.Debug("scene_leave", "user_id", e.UserID, "scene", e.Scene)
		},
		OnSourceLoad: func(ctx context.Context, e *domain.LoadEvent) {
			m.loadDuration.WithLabelValues(result(e.Err)).Observe(e.Duration.Seconds())
			m.loadedNodes.Add(float64(e.Count))
			logger.Debug("source_load",
				"node_id", e.NodeID,
				"offset", e.Offset,
				"count", e.Count,
				"has_more", e.HasMore,
				"duration", e.Duration,
				"err", e.Err,
			)
		},
		OnRender: func(ctx context.Context, e *domain.RenderEvent) {
			m.renderResults.WithLabelValues(result(e.Err)).Inc()
		},
		OnTurn: func(ctx context.Context, e *domain.TurnEvent) {
			m.turns.WithLabelValues(string(e.Scene), e.Outcome).Inc()
			m.turnDuration.WithLabelValues(string(e.Scene)).Observe(e.Duration.Seconds())
			logger.Info("turn",
				"user_id", e.UserID,
				"scene", e.Scene,
				"outcome", e.Outcome,
				"duration", e.Duration,
			)
		},
	}
}
