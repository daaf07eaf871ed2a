// Package metrics exposes session counters to Prometheus. Instrumentation
// attaches through domain.LifecycleHooks so the session core stays free of
// any metrics dependency.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/syncroot/roomsync/pkg/domain"
)

// Metrics holds the session instrument set on a private registry, so
// tests and multiple sessions never collide on the default registry.
type Metrics struct {
	registry *prometheus.Registry

	snapshotsApplied *prometheus.CounterVec
	framesDropped    *prometheus.CounterVec
	commandsSent     *prometheus.CounterVec
	phaseChanges     *prometheus.CounterVec
	snapshotVersion  prometheus.Gauge
}

// New creates the instrument set.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		snapshotsApplied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roomsync_snapshots_applied_total",
				Help: "Snapshot updates applied from inbound frames",
			},
			[]string{"kind", "topic"},
		),
		framesDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roomsync_frames_dropped_total",
				Help: "Inbound frames dropped before reaching a reducer",
			},
			[]string{"reason"},
		),
		commandsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roomsync_commands_sent_total",
				Help: "Outbound commands accepted by the data channel",
			},
			[]string{"kind", "class"},
		),
		phaseChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roomsync_phase_changes_total",
				Help: "Session lifecycle transitions",
			},
			[]string{"to"},
		),
		snapshotVersion: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "roomsync_snapshot_version",
				Help: "Version of the latest applied snapshot",
			},
		),
	}
}

// Hooks returns lifecycle callbacks that feed the instruments. Chain them
// with any other hook set before handing them to the session.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSnapshot: func(ctx context.Context, ev *domain.SnapshotEvent) {
			m.snapshotsApplied.WithLabelValues(ev.Route.Kind, ev.Route.Topic).Inc()
			m.snapshotVersion.Set(float64(ev.Version))
		},
		OnFrameDropped: func(ctx context.Context, ev *domain.DropEvent) {
			m.framesDropped.WithLabelValues(ev.Reason).Inc()
		},
		OnCommandSent: func(ctx context.Context, ev *domain.CommandEvent) {
			m.commandsSent.WithLabelValues(ev.Kind, string(ev.Class)).Inc()
		},
		OnPhaseChange: func(ctx context.Context, ev *domain.PhaseEvent) {
			m.phaseChanges.WithLabelValues(string(ev.To)).Inc()
		},
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Combine merges hook sets; every callback present in any set fires.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		h := h
		if h.OnSnapshot != nil {
			prev := out.OnSnapshot
			out.OnSnapshot = func(ctx context.Context, ev *domain.SnapshotEvent) {
				if prev != nil {
					prev(ctx, ev)
				}
				h.OnSnapshot(ctx, ev)
			}
		}
		if h.OnFrameDropped != nil {
			prev := out.OnFrameDropped
			out.OnFrameDropped = func(ctx context.Context, ev *domain.DropEvent) {
				if prev != nil {
					prev(ctx, ev)
				}
				h.OnFrameDropped(ctx, ev)
			}
		}
		if h.OnCommandSent != nil {
			prev := out.OnCommandSent
			out.OnCommandSent = func(ctx context.Context, ev *domain.CommandEvent) {
				if prev != nil {
					prev(ctx, ev)
				}
				h.OnCommandSent(ctx, ev)
			}
		}
		if h.OnPhaseChange != nil {
			prev := out.OnPhaseChange
			out.OnPhaseChange = func(ctx context.Context, ev *domain.PhaseEvent) {
				if prev != nil {
					prev(ctx, ev)
				}
				h.OnPhaseChange(ctx, ev)
			}
		}
	}
	return out
}
