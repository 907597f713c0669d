package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RealtimeMetrics records fan-out activity on the kitchen-display channel.
type RealtimeMetrics struct {
	published   *prometheus.CounterVec
	dropped     *prometheus.CounterVec
	subscribers prometheus.Gauge
}

// NewRealtimeMetrics registers the realtime metrics on the provided registerer.
func NewRealtimeMetrics(reg prometheus.Registerer) *RealtimeMetrics {
	if reg == nil {
		return &RealtimeMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_events_published",
		Help: "Events delivered to display subscribers, by event kind.",
	}, []string{"kind"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_events_dropped",
		Help: "Events dropped because a subscriber could not keep up.",
	}, []string{"kind"})
	subscribers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_subscribers",
		Help: "Display terminals currently joined to a room.",
	})
	reg.MustRegister(published, dropped, subscribers)
	return &RealtimeMetrics{
		published:   published,
		dropped:     dropped,
		subscribers: subscribers,
	}
}

// IncPublished increments the delivered counter for the event kind.
func (m *RealtimeMetrics) IncPublished(kind string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncDropped increments the dropped counter for the event kind.
func (m *RealtimeMetrics) IncDropped(kind string) {
	if m == nil || m.dropped == nil {
		return
	}
	m.dropped.WithLabelValues(normalizeLabel(kind)).Inc()
}

// SubscriberJoined tracks a new terminal connection.
func (m *RealtimeMetrics) SubscriberJoined() {
	if m == nil || m.subscribers == nil {
		return
	}
	m.subscribers.Inc()
}

// SubscriberLeft tracks a terminal disconnect.
func (m *RealtimeMetrics) SubscriberLeft() {
	if m == nil || m.subscribers == nil {
		return
	}
	m.subscribers.Dec()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
