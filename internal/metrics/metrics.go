// Package metrics exposes Prometheus counters and gauges for the ingress
// and engine layers, grounded in DimaJoyti-ai-agentic-crypto-browser's and
// fd1az-arbitrage-bot's use of prometheus/client_golang.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every counter/gauge the core publishes. It is
// registered against a private *prometheus.Registry rather than the
// global default registerer, so importing this package in tests never
// panics on duplicate registration.
type Metrics struct {
	Registry *prometheus.Registry

	OrdersAccepted  prometheus.Counter
	OrdersDropped   prometheus.Counter // back-pressure (queue full)
	OrdersRejected  prometheus.Counter // malformed input
	TradesExecuted  prometheus.Counter
	QueueOccupancy  prometheus.Gauge
	EngineIdleSpins prometheus.Counter
}

// New builds and registers a fresh metrics bundle.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		OrdersAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "limitbook",
			Name:      "orders_accepted_total",
			Help:      "Orders accepted by the ingress adapter and enqueued.",
		}),
		OrdersDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "limitbook",
			Name:      "orders_dropped_total",
			Help:      "Orders rejected at ingress because the SPSC queue was full.",
		}),
		OrdersRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "limitbook",
			Name:      "orders_rejected_total",
			Help:      "Orders rejected at ingress for malformed input.",
		}),
		TradesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "limitbook",
			Name:      "trades_executed_total",
			Help:      "Trade executions produced by the matching engine.",
		}),
		QueueOccupancy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "limitbook",
			Name:      "queue_occupancy",
			Help:      "Number of orders currently buffered in the SPSC queue.",
		}),
		EngineIdleSpins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "limitbook",
			Name:      "engine_idle_iterations_total",
			Help:      "Number of engine loop iterations that observed an empty queue.",
		}),
	}

	reg.MustRegister(
		m.OrdersAccepted,
		m.OrdersDropped,
		m.OrdersRejected,
		m.TradesExecuted,
		m.QueueOccupancy,
		m.EngineIdleSpins,
	)

	return m
}
