package websocket

import "github.com/prometheus/client_golang/prometheus"

var (
	activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "chat_gateway",
		Name:      "active_sessions",
		Help:      "Websocket sessions currently joined to a room.",
	})
	activeRooms = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "chat_gateway",
		Name:      "active_rooms",
		Help:      "Rooms with at least one joined session.",
	})
	deliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chat_gateway",
		Name:      "deliveries_total",
		Help:      "Events enqueued to sessions, by event type.",
	}, []string{"event"})
	prunedSessions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chat_gateway",
		Name:      "pruned_sessions_total",
		Help:      "Sessions dropped because delivery to them failed.",
	})
	inboundFrames = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chat_gateway",
		Name:      "inbound_frames_total",
		Help:      "Inbound frames by action; malformed and unknown frames are counted as dropped.",
	}, []string{"action"})
	handshakeRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chat_gateway",
		Name:      "handshake_rejections_total",
		Help:      "Handshakes refused before upgrade, by reason.",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(activeSessions)
	prometheus.MustRegister(activeRooms)
	prometheus.MustRegister(deliveries)
	prometheus.MustRegister(prunedSessions)
	prometheus.MustRegister(inboundFrames)
	prometheus.MustRegister(handshakeRejections)
}
