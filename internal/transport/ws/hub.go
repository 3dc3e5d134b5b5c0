package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nettd/lobby-server/internal/events"
	"github.com/nettd/lobby-server/internal/model"
)

// Hub fans events out to every connection subscribed to one room.
// Fanout happens synchronously under the lock so two events published
// in order arrive at every client in that order.
type Hub struct {
	room   model.RoomCode
	logger *slog.Logger

	mu    sync.RWMutex
	conns map[*Conn]struct{}
}

// newHub creates a hub for a room
func newHub(room model.RoomCode, logger *slog.Logger) *Hub {
	return &Hub{
		room:   room,
		logger: logger.With(slog.String("room", string(room))),
		conns:  make(map[*Conn]struct{}),
	}
}

// subscribe adds a connection to the fanout set
func (h *Hub) subscribe(c *Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	total := len(h.conns)
	h.mu.Unlock()
	h.logger.Debug("hub subscribed",
		slog.String("conn", string(c.id)),
		slog.Int("total", total))
}

// unsubscribe removes a connection from the fanout set
func (h *Hub) unsubscribe(c *Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	total := len(h.conns)
	h.mu.Unlock()
	h.logger.Debug("hub unsubscribed",
		slog.String("conn", string(c.id)),
		slog.Int("total", total))
}

// broadcast delivers a pre-encoded frame to every subscriber. A client
// whose buffer is full has the frame dropped rather than blocking the
// rest of the room.
func (h *Hub) broadcast(frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for c := range h.conns {
		if !c.enqueue(frame) {
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("broadcast dropped for slow clients", slog.Int("dropped", dropped))
	}
}

// size reports the current subscriber count
func (h *Hub) size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// HubManager owns the per-room hubs and is the broadcast surface the
// services publish through.
type HubManager struct {
	logger *slog.Logger

	mu   sync.RWMutex
	hubs map[model.RoomCode]*Hub
}

// NewHubManager creates an empty hub registry
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		logger: logger.With(slog.String("component", "ws")),
		hubs:   make(map[model.RoomCode]*Hub),
	}
}

// Subscribe attaches a connection to a room's fanout, creating the hub
// on first use
func (m *HubManager) Subscribe(room model.RoomCode, c *Conn) {
	m.mu.Lock()
	hub, ok := m.hubs[room]
	if !ok {
		hub = newHub(room, m.logger)
		m.hubs[room] = hub
	}
	m.mu.Unlock()
	hub.subscribe(c)
}

// Unsubscribe detaches a connection from a room's fanout. Empty hubs
// for non-default rooms are reaped; room destruction handles the rest
// via CloseRoom.
func (m *HubManager) Unsubscribe(room model.RoomCode, c *Conn) {
	m.mu.Lock()
	hub, ok := m.hubs[room]
	if ok {
		hub.unsubscribe(c)
		if hub.size() == 0 && room != model.DefaultRoomCode {
			delete(m.hubs, room)
		}
	}
	m.mu.Unlock()
}

// Publish encodes the event once and fans it out to the room
func (m *HubManager) Publish(room model.RoomCode, ev events.Event) {
	m.mu.RLock()
	hub, ok := m.hubs[room]
	m.mu.RUnlock()
	if !ok {
		return
	}

	frame, err := json.Marshal(ev)
	if err != nil {
		m.logger.Error("event encode failed",
			slog.String("room", string(room)),
			slog.String("type", string(ev.Type)))
		return
	}
	hub.broadcast(frame)
}

// CloseRoom drops the room's hub. Connections are not closed; they
// simply stop receiving frames for the destroyed room.
func (m *HubManager) CloseRoom(room model.RoomCode) {
	m.mu.Lock()
	if _, ok := m.hubs[room]; ok {
		delete(m.hubs, room)
		m.logger.Info("hub closed", slog.String("room", string(room)))
	}
	m.mu.Unlock()
}

// SubscriberCount reports how many connections a room currently fans
// out to
func (m *HubManager) SubscriberCount(room model.RoomCode) int {
	m.mu.RLock()
	hub, ok := m.hubs[room]
	m.mu.RUnlock()
	if !ok {
		return 0
	}
	return hub.size()
}

var _ events.Publisher = (*HubManager)(nil)
