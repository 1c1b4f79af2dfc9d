package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "letsconnect"

// Relay collects relay counters and exposes them in Prometheus format.
// It satisfies core.Metrics.
type Relay struct {
	registry *prometheus.Registry

	connections prometheus.Gauge
	rooms       prometheus.Gauge
	joins       prometheus.Counter
	leaves      prometheus.Counter
	signals     *prometheus.CounterVec
	chat        *prometheus.CounterVec
	malformed   prometheus.Counter
	evictions   prometheus.Counter
}

// New builds a collector set on its own registry, together with the Go
// runtime and process collectors.
func New() *Relay {
	m := &Relay{
		registry: prometheus.NewRegistry(),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Live websocket connections.",
		}),
		rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms",
			Help:      "Rooms with at least one member.",
		}),
		joins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_joins_total",
			Help:      "Successful room joins.",
		}),
		leaves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_leaves_total",
			Help:      "Room departures, explicit or by disconnect.",
		}),
		signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signals_total",
			Help:      "Signaling payloads by outcome.",
		}, []string{"outcome"}),
		chat: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_total",
			Help:      "Chat messages by outcome.",
		}, []string{"outcome"}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_frames_total",
			Help:      "Inbound frames that could not be decoded.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evictions_total",
			Help:      "Connections dropped for not keeping up with their events.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.connections, m.rooms, m.joins, m.leaves,
		m.signals, m.chat, m.malformed, m.evictions,
	)
	return m
}

// Handler exposes the registry at /metrics.
func (m *Relay) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Relay) ConnectionOpened() { m.connections.Inc() }
func (m *Relay) ConnectionClosed() { m.connections.Dec() }
func (m *Relay) RoomsActive(n int) { m.rooms.Set(float64(n)) }
func (m *Relay) MemberJoined()     { m.joins.Inc() }
func (m *Relay) MemberLeft()       { m.leaves.Inc() }
func (m *Relay) SignalRelayed()    { m.signals.WithLabelValues("relayed").Inc() }
func (m *Relay) SignalDropped()    { m.signals.WithLabelValues("dropped").Inc() }
func (m *Relay) ChatPosted()       { m.chat.WithLabelValues("posted").Inc() }
func (m *Relay) ChatDropped()      { m.chat.WithLabelValues("dropped").Inc() }
func (m *Relay) ClientEvicted()    { m.evictions.Inc() }

// MalformedFrame counts an inbound frame the transport could not decode.
func (m *Relay) MalformedFrame() { m.malformed.Inc() }
