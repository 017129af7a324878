package messaging

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is nil-safe so adapters can run without a registry.
type Metrics struct {
	published    *prometheus.CounterVec
	outcomes     *prometheus.CounterVec
	redeliveries *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		published: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "broker_messages_published_total",
				Help: "Messages accepted by the broker per channel",
			},
			[]string{"channel"},
		),
		outcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "broker_deliveries_total",
				Help: "Final delivery outcome per queue",
			},
			[]string{"queue", "outcome"},
		),
		redeliveries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "broker_redeliveries_total",
				Help: "Handler retries per queue",
			},
			[]string{"queue"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "broker_delivery_duration_ms",
				Help:    "Time from first attempt to final outcome in ms",
				Buckets: []float64{1, 5, 25, 100, 500, 2500, 10000, 30000},
			},
			[]string{"queue"},
		),
	}
}

func (m *Metrics) Published(channel string) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(channel).Inc()
}

func (m *Metrics) outcome(queue string, o Outcome) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(queue, o.String()).Inc()
}

func (m *Metrics) redelivered(queue string) {
	if m == nil {
		return
	}
	m.redeliveries.WithLabelValues(queue).Inc()
}

func (m *Metrics) observe(queue string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(queue).Observe(float64(d.Milliseconds()))
}
