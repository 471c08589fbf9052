package websocket

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrHubClosed = errors.New("ws: hub is closed")

// Subscriber is a session as seen by the hub. Deliver must not block; a false
// return means the subscriber can no longer keep up and will be dropped.
type Subscriber interface {
	ID() string
	UserID() string
	Deliver(payload []byte) bool
	Close()
}

type room struct {
	mu          sync.Mutex
	subscribers map[Subscriber]struct{}
}

// Hub is the process-wide room registry. The room map is guarded by mu and
// each room's subscriber set by its own lock; when both are held, mu is taken
// first.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]*room
	closed bool

	totalConnections atomic.Int64
	messagesSent     atomic.Int64
	startedAt        time.Time
}

type HubStats struct {
	TotalRooms       int       `json:"total_rooms"`
	TotalClients     int       `json:"total_clients"`
	TotalConnections int64     `json:"total_connections"`
	MessageSent      int64     `json:"message_sent"`
	StartedAt        time.Time `json:"started_at"`
}

type RoomStats struct {
	RoomID      string `json:"room_id"`
	Exists      bool   `json:"exists"`
	Connections int    `json:"total_connections"`
	UniqueUsers int    `json:"unique_users"`
}

// GroupName is the registry key of a chat room.
func GroupName(roomID string) string {
	return "chat_" + roomID
}

func NewHub() *Hub {
	return &Hub{
		rooms:     make(map[string]*room),
		startedAt: time.Now(),
	}
}

// Join adds sub to roomID. Joining twice is a no-op.
func (h *Hub) Join(roomID string, sub Subscriber) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}

	rm, ok := h.rooms[GroupName(roomID)]
	if !ok {
		rm = &room{subscribers: make(map[Subscriber]struct{})}
		h.rooms[GroupName(roomID)] = rm
		activeRooms.Inc()
	}

	rm.mu.Lock()
	_, already := rm.subscribers[sub]
	rm.subscribers[sub] = struct{}{}
	size := len(rm.subscribers)
	rm.mu.Unlock()

	if already {
		return nil
	}

	h.totalConnections.Add(1)
	activeSessions.Inc()
	log.Info().Str("roomID", roomID).Str("clientID", sub.ID()).Str("userID", sub.UserID()).Int("roomSize", size).Msg("ws: client joined room")
	return nil
}

// Leave removes sub from roomID and drops the room once it is empty.
func (h *Hub) Leave(roomID string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rm, ok := h.rooms[GroupName(roomID)]
	if !ok {
		return
	}

	rm.mu.Lock()
	_, present := rm.subscribers[sub]
	delete(rm.subscribers, sub)
	empty := len(rm.subscribers) == 0
	rm.mu.Unlock()

	if empty {
		delete(h.rooms, GroupName(roomID))
		activeRooms.Dec()
	}
	if present {
		activeSessions.Dec()
		log.Info().Str("roomID", roomID).Str("clientID", sub.ID()).Str("userID", sub.UserID()).Msg("ws: client left room")
	}
}

// Broadcast delivers event to every subscriber of roomID, the sender
// included, and returns how many accepted it. Delivery happens under the
// room lock so every subscriber sees a room's events in the same order.
// Subscribers that refuse delivery are removed and closed.
func (h *Hub) Broadcast(roomID string, event Event) int {
	payload, err := json.Marshal(event.Frame)
	if err != nil {
		log.Error().Err(err).Str("roomID", roomID).Str("event", event.Type).Msg("ws: failed to marshal broadcast event")
		return 0
	}

	h.mu.RLock()
	rm, ok := h.rooms[GroupName(roomID)]
	h.mu.RUnlock()
	if !ok {
		return 0
	}

	var stale []Subscriber
	delivered := 0

	rm.mu.Lock()
	for sub := range rm.subscribers {
		if sub.Deliver(payload) {
			delivered++
			continue
		}
		delete(rm.subscribers, sub)
		stale = append(stale, sub)
	}
	empty := len(rm.subscribers) == 0
	rm.mu.Unlock()

	for _, sub := range stale {
		log.Warn().Str("roomID", roomID).Str("clientID", sub.ID()).Msg("ws: slow consumer, dropping client")
		activeSessions.Dec()
		prunedSessions.Inc()
		go sub.Close()
	}
	if len(stale) > 0 && empty {
		h.dropIfEmpty(roomID, rm)
	}

	h.messagesSent.Add(int64(delivered))
	deliveries.WithLabelValues(event.Type).Add(float64(delivered))

	log.Debug().Str("roomID", roomID).Int("targets", delivered).Str("event", event.Type).Msg("ws: broadcast completed")
	return delivered
}

func (h *Hub) dropIfEmpty(roomID string, rm *room) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[GroupName(roomID)] != rm {
		return
	}

	rm.mu.Lock()
	empty := len(rm.subscribers) == 0
	rm.mu.Unlock()

	if empty {
		delete(h.rooms, GroupName(roomID))
		activeRooms.Dec()
	}
}

func (h *Hub) RoomStats(roomID string) RoomStats {
	stats := RoomStats{RoomID: roomID}

	h.mu.RLock()
	rm, ok := h.rooms[GroupName(roomID)]
	h.mu.RUnlock()
	if !ok {
		return stats
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	users := make(map[string]struct{})
	for sub := range rm.subscribers {
		if uid := sub.UserID(); uid != "" {
			users[uid] = struct{}{}
		}
	}

	stats.Exists = len(rm.subscribers) > 0
	stats.Connections = len(rm.subscribers)
	stats.UniqueUsers = len(users)
	return stats
}

func (h *Hub) HubStats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := 0
	for _, rm := range h.rooms {
		rm.mu.Lock()
		clients += len(rm.subscribers)
		rm.mu.Unlock()
	}

	return HubStats{
		TotalRooms:       len(h.rooms),
		TotalClients:     clients,
		TotalConnections: h.totalConnections.Load(),
		MessageSent:      h.messagesSent.Load(),
		StartedAt:        h.startedAt,
	}
}

// Close refuses further joins and closes every joined subscriber.
func (h *Hub) Close() {
	log.Info().Msg("ws: shutting down hub")

	h.mu.Lock()
	h.closed = true
	var all []Subscriber
	for group, rm := range h.rooms {
		rm.mu.Lock()
		for sub := range rm.subscribers {
			all = append(all, sub)
		}
		rm.subscribers = make(map[Subscriber]struct{})
		rm.mu.Unlock()
		delete(h.rooms, group)
	}
	h.mu.Unlock()

	activeRooms.Set(0)
	activeSessions.Sub(float64(len(all)))

	for _, sub := range all {
		sub.Close()
	}

	log.Info().Int("clients", len(all)).Msg("ws: hub shutdown completed")
}
