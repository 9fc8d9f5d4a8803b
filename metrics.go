package uigen

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of agent runs and the SSE transport. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	agentSteps        *prometheus.CounterVec
	agentStepDuration prometheus.Histogram
	toolCalls         *prometheus.CounterVec

	sseConnectionsActive prometheus.Gauge
	sseEvents            *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		agentSteps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uigen_agent_steps_total",
				Help: "Total number of model steps run by agents",
			},
			[]string{"finish_reason"},
		),
		agentStepDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "uigen_agent_step_duration_seconds",
				Help:    "Duration of a model step including its tool calls",
				Buckets: prometheus.DefBuckets,
			},
		),
		toolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uigen_tool_calls_total",
				Help: "Total number of tool calls executed by agents",
			},
			[]string{"tool", "status"},
		),
		sseConnectionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "uigen_sse_connections_active",
				Help: "Number of chat streams currently open",
			},
		),
		sseEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uigen_sse_events_total",
				Help: "Total number of SSE events sent to chat clients",
			},
			[]string{"type"},
		),
	}
}

func (m *Metrics) recordStep(reason FinishReason, duration time.Duration) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "none"
	}
	m.agentSteps.WithLabelValues(string(reason)).Inc()
	m.agentStepDuration.Observe(duration.Seconds())
}

func (m *Metrics) recordToolCall(tool string, failed bool) {
	if m == nil {
		return
	}
	status := "ok"
	if failed {
		status = "error"
	}
	m.toolCalls.WithLabelValues(tool, status).Inc()
}

func (m *Metrics) sseConnected(delta float64) {
	if m == nil {
		return
	}
	m.sseConnectionsActive.Add(delta)
}

func (m *Metrics) recordSSEEvent(eventType string) {
	if m == nil {
		return
	}
	m.sseEvents.WithLabelValues(eventType).Inc()
}
