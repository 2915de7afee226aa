// Package metrics exposes simulation counters in the Prometheus text format.
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/dayuer/virtualco/internal/bus"
	"github.com/dayuer/virtualco/internal/tracker"
)

const namespace = "virtualco"

// Metrics holds the collectors of one simulation run on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	// MessagesRouted counts delivered messages by kind.
	MessagesRouted *prometheus.CounterVec
	// MessagesDropped counts messages whose receiver could not be resolved.
	MessagesDropped *prometheus.CounterVec
	// DispatchMisses counts messages no handler matched.
	DispatchMisses *prometheus.CounterVec
	// HandlerDuration tracks handler latency in seconds.
	HandlerDuration *prometheus.HistogramVec
	// Workflows is the number of workflows per status.
	Workflows *prometheus.GaugeVec
	// Tick is the last completed tick.
	Tick prometheus.Gauge
	// Inbox is the number of pending messages per agent category.
	Inbox *prometheus.GaugeVec
}

// New creates the collectors and registers them.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		MessagesRouted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_routed_total",
				Help:      "Messages delivered to an inbox, by kind.",
			},
			[]string{"kind"},
		),
		MessagesDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_dropped_total",
				Help:      "Messages addressed to an unknown role, by kind.",
			},
			[]string{"kind"},
		),
		DispatchMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_misses_total",
				Help:      "Messages no handler matched, by tier and kind.",
			},
			[]string{"tier", "kind"},
		),
		HandlerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "handler_duration_seconds",
				Help:      "Handler latency in seconds.",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
			},
			[]string{"kind"},
		),
		Workflows: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "workflows",
				Help:      "Workflows by status.",
			},
			[]string{"status"},
		),
		Tick: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tick",
			Help:      "Last completed simulation tick.",
		}),
		Inbox: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "inbox_pending",
				Help:      "Pending messages by agent category.",
			},
			[]string{"category"},
		),
	}
	m.Registry.MustRegister(
		m.MessagesRouted, m.MessagesDropped, m.DispatchMisses,
		m.HandlerDuration, m.Workflows, m.Tick, m.Inbox,
	)
	return m
}

// Observe records a routing outcome. It is meant to be passed to
// bus.Subscribe.
func (m *Metrics) Observe(r bus.Receipt) {
	kind := string(r.Msg.Kind)
	if r.Delivered() {
		m.MessagesRouted.WithLabelValues(kind).Inc()
		return
	}
	m.MessagesDropped.WithLabelValues(kind).Inc()
}

// ObserveTick records the end of a tick along with workflow totals.
func (m *Metrics) ObserveTick(tick int, summary map[tracker.Status]int) {
	m.Tick.Set(float64(tick))
	for _, s := range tracker.Statuses {
		m.Workflows.WithLabelValues(string(s)).Set(float64(summary[s]))
	}
}

// WritePrometheus writes every collector to w in the text exposition format.
func (m *Metrics) WritePrometheus(w io.Writer) error {
	families, err := m.Registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
