// Package chat provides the real-time appointment chat relay. Rooms are
// keyed by appointment id; the registry is process-wide, starts empty, and
// drops a room when its last member leaves.
package chat

import (
	"sync"
)

// Client represents one connected websocket user.
type Client struct {
	UserID string
	Send   chan []byte

	rooms map[string]struct{}
}

// NewClient creates a client with a buffered send channel.
func NewClient(userID string) *Client {
	return &Client{
		UserID: userID,
		Send:   make(chan []byte, 256),
		rooms:  make(map[string]struct{}),
	}
}

type room struct {
	// mu serializes persist-then-relay for this room so every member
	// observes messages in creation order.
	mu      sync.Mutex
	members map[*Client]struct{}
}

// Hub is the room registry. Membership is guarded by a single RWMutex.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*room)}
}

// Join adds the client to a room, creating it on first join.
func (h *Hub) Join(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r := h.rooms[roomID]
	if r == nil {
		r = &room{members: make(map[*Client]struct{})}
		h.rooms[roomID] = r
	}
	r.members[client] = struct{}{}
	client.rooms[roomID] = struct{}{}
}

// Leave removes the client from a room, tearing the room down when it was
// the last member.
func (h *Hub) Leave(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leave(client, roomID)
}

func (h *Hub) leave(client *Client, roomID string) {
	r := h.rooms[roomID]
	if r == nil {
		return
	}
	delete(r.members, client)
	if len(r.members) == 0 {
		delete(h.rooms, roomID)
	}
	delete(client.rooms, roomID)
}

// Remove drops the client from every room and closes its send channel.
// Called once when the connection goes away.
func (h *Hub) Remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for roomID := range client.rooms {
		h.leave(client, roomID)
	}
	close(client.Send)
}

// Publish runs persist under the room's lock and relays its payload to every
// member. Persistence happens-before relay; when persist fails nothing is
// relayed. A room nobody joined still gets its message persisted.
func (h *Hub) Publish(roomID string, persist func() ([]byte, error)) error {
	h.mu.RLock()
	r := h.rooms[roomID]
	h.mu.RUnlock()

	if r == nil {
		_, err := persist()
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := persist()
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range r.members {
		select {
		case client.Send <- data:
		default:
			// Client buffer full; skip to avoid blocking the room.
		}
	}
	return nil
}

// RoomCount returns the number of live rooms.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// RoomSize returns the number of members in a room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r := h.rooms[roomID]
	if r == nil {
		return 0
	}
	return len(r.members)
}
