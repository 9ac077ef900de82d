// Package metrics exposes engine activity as Prometheus collectors, fed
// through the lifecycle hooks.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/emilianodellacasa/colloquio/pkg/domain"
)

// Collectors holds the engine's Prometheus instruments.
type Collectors struct {
	Turns       *prometheus.CounterVec
	Branches    *prometheus.CounterVec
	Fallbacks   prometheus.Counter
	SessionsEnd *prometheus.CounterVec
}

// NewCollectors creates and registers the instruments on the given registry.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		Turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "colloquio_turns_total",
			Help: "Total number of completed turns",
		}, []string{"mode"}),
		Branches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "colloquio_branches_total",
			Help: "Total number of deepening branch entries",
		}, []string{"category"}),
		Fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "colloquio_generation_fallbacks_total",
			Help: "Total number of deterministic bridge fallbacks",
		}),
		SessionsEnd: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "colloquio_sessions_ended_total",
			Help: "Total number of ended sessions",
		}, []string{"completed"}),
	}
	reg.MustRegister(c.Turns, c.Branches, c.Fallbacks, c.SessionsEnd)
	return c
}

// Hooks returns lifecycle hooks that feed the collectors.
func (c *Collectors) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(_ context.Context, ev *domain.TurnEvent) {
			c.Turns.WithLabelValues(string(ev.Mode)).Inc()
		},
		OnBranch: func(_ context.Context, ev *domain.BranchEvent) {
			c.Branches.WithLabelValues(ev.Category).Inc()
		},
		OnGenerationFallback: func(context.Context, string) {
			c.Fallbacks.Inc()
		},
		OnSessionEnd: func(_ context.Context, ev *domain.SessionEvent) {
			label := "false"
			if ev.Completed {
				label = "true"
			}
			c.SessionsEnd.WithLabelValues(label).Inc()
		},
	}
}
