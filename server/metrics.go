// metrics.go - prometheus instrumentation
package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics implements game.Metrics and carries the transport-level gauges.
type Metrics struct {
	actions     *prometheus.CounterVec
	promptsOpen prometheus.Gauge
	connections prometheus.Gauge
	matchesLive prometheus.GaugeFunc
}

// NewMetrics registers the server's metrics on the default registry.
// liveMatches is sampled on scrape.
func NewMetrics(liveMatches func() int) *Metrics {
	return &Metrics{
		actions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "provinces_actions_dispatched_total",
			Help: "Game actions dispatched, by action name.",
		}, []string{"action"}),
		promptsOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "provinces_prompts_open",
			Help: "Effect runs currently parked on player input.",
		}),
		connections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "provinces_ws_connections",
			Help: "Open websocket connections.",
		}),
		matchesLive: promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "provinces_matches_live",
			Help: "Matches currently in progress.",
		}, func() float64 { return float64(liveMatches()) }),
	}
}

func (m *Metrics) ActionDispatched(name string) { m.actions.WithLabelValues(name).Inc() }
func (m *Metrics) PromptOpened()                { m.promptsOpen.Inc() }
func (m *Metrics) PromptResolved()              { m.promptsOpen.Dec() }

func (m *Metrics) connOpened() { m.connections.Inc() }
func (m *Metrics) connClosed() { m.connections.Dec() }
