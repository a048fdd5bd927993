package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Rooms mirror the two audiences of the panel: one room per employee and
// a shared room for master dashboards.
const MasterRoom = "master-panel"

func EmployeeRoom(employeeID uint) string {
	return fmt.Sprintf("employee-%d", employeeID)
}

// Envelope is the wire format for every event pushed to observers.
type Envelope struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Hub fans events out to connected websocket clients. Delivery is
// fire-and-forget and at-most-once: nothing is persisted or replayed, and
// a client that cannot keep up is disconnected rather than blocking the
// broadcast. The panel re-reads state over HTTP, so losing an event is
// never a correctness problem.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	rooms   map[string]map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		rooms:   make(map[string]map[*client]struct{}),
	}
}

// Publish delivers the event to every connected client.
func (h *Hub) Publish(event string, payload interface{}) {
	msg, err := json.Marshal(Envelope{Event: event, Payload: payload})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.trySend(msg)
	}
}

// PublishToGroup delivers the event to clients that joined the room.
func (h *Hub) PublishToGroup(room string, event string, payload interface{}) {
	msg, err := json.Marshal(Envelope{Event: event, Payload: payload})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		c.trySend(msg)
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *client, rooms []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	for _, room := range rooms {
		if h.rooms[room] == nil {
			h.rooms[room] = make(map[*client]struct{})
		}
		h.rooms[room][c] = struct{}{}
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for room, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	close(c.send)
}
