// Package observability bridges controller lifecycle hooks to Prometheus
// metrics.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/scrumhand/scrumhand/pkg/domain"
)

// Metrics holds the Prometheus collectors for the turn controller.
type Metrics struct {
	phases       *prometheus.CounterVec
	toolCalls    *prometheus.CounterVec
	toolErrors   *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	safetyBlocks *prometheus.CounterVec
}

// NewMetrics builds the collectors and registers them with reg. Using
// prometheus.DefaultRegisterer wires them into the default /metrics
// endpoint.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		phases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scrumhand_controller_phases_total",
			Help: "Number of controller phase entries, by phase. The guard_input count equals the number of turns started.",
		}, []string{"phase"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scrumhand_tool_calls_total",
			Help: "Number of tool dispatches, by tool name.",
		}, []string{"tool"}),
		toolErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scrumhand_tool_errors_total",
			Help: "Number of tool dispatches that returned an error outcome, by tool name.",
		}, []string{"tool"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scrumhand_tool_duration_seconds",
			Help:    "Tool dispatch duration in seconds, by tool name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
		safetyBlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scrumhand_safety_blocks_total",
			Help: "Number of unsafe verdicts, by conversation role.",
		}, []string{"role"}),
	}

	for _, c := range []prometheus.Collector{
		m.phases, m.toolCalls, m.toolErrors, m.toolDuration, m.safetyBlocks,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseEnter: func(_ context.Context, ev *domain.PhaseEvent) {
			m.phases.WithLabelValues(ev.Phase).Inc()
		},
		OnToolCall: func(_ context.Context, ev *domain.ToolEvent) {
			m.toolCalls.WithLabelValues(ev.ToolName).Inc()
		},
		OnToolReturn: func(_ context.Context, ev *domain.ToolEvent) {
			if ev.IsError {
				m.toolErrors.WithLabelValues(ev.ToolName).Inc()
			}
			m.toolDuration.WithLabelValues(ev.ToolName).Observe(ev.Elapsed.Seconds())
		},
		OnSafetyVerdict: func(_ context.Context, ev *domain.SafetyEvent) {
			if ev.Verdict.Unsafe() {
				m.safetyBlocks.WithLabelValues(string(ev.Role)).Inc()
			}
		},
	}
}
