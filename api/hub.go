package api

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phuslu/log"
)

// WSHub manages WebSocket client connections and fans out broadcasts.
type WSHub struct {
	mu        sync.RWMutex
	clients   map[*WSClient]struct{}
	stopped   bool
	broadcast chan WSMessage
}

// WSClient represents a connected WebSocket client.
type WSClient struct {
	id   string
	hub  *WSHub
	send chan WSMessage
}

// WSMessage is the envelope for WebSocket messages.
type WSMessage struct {
	Type string      `json:"type"` // "welcome", "ticker", "pong", "error"
	Data interface{} `json:"data,omitempty"`
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:   make(map[*WSClient]struct{}),
		broadcast: make(chan WSMessage, 256),
	}
}

func newWSClient(hub *WSHub) *WSClient {
	return &WSClient{
		id:   uuid.NewString(),
		hub:  hub,
		send: make(chan WSMessage, 256),
	}
}

// ID returns the client's connection id.
func (c *WSClient) ID() string { return c.id }

// Run delivers broadcasts until ctx is done, then closes every client.
func (h *WSHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				h.drop(client)
			}
			h.mu.Unlock()
			return

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					log.Warn().Str("client", client.id).Msg("websocket client too slow, disconnecting")
					h.drop(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop removes a client. Callers hold mu.
func (h *WSHub) drop(client *WSClient) {
	delete(h.clients, client)
	close(client.send)
}

// Register adds a client. It reports false once the hub has stopped.
func (h *WSHub) Register(client *WSClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	h.clients[client] = struct{}{}
	log.Debug().Str("client", client.id).Msg("websocket client connected")
	return true
}

// Unregister removes a client if it is still connected.
func (h *WSHub) Unregister(client *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		h.drop(client)
		log.Debug().Str("client", client.id).Msg("websocket client disconnected")
	}
}

// Send queues a message for one client. It reports false when the client
// is gone or its queue is full.
func (h *WSHub) Send(client *WSClient, msg WSMessage) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[client]; !ok {
		return false
	}
	select {
	case client.send <- msg:
		return true
	default:
		return false
	}
}

// Broadcast queues a message for every connected client. It drops the
// message when the queue is full.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		log.Warn().Str("type", msg.Type).Msg("websocket broadcast queue full, dropping message")
	}
}

// ClientCount returns the number of connected clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
