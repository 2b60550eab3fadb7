// Package notifications fans new announcements out to websocket subscribers.
package notifications

import (
	"context"
	"errors"
	"sync"

	"forumhub/internal/middleware"
	"forumhub/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const maxTotalConns = 10000

// ErrHubFull is returned by Register once the connection limit is reached.
var ErrHubFull = errors.New("server connection limit reached")

// ErrHubClosed is returned by Register after Shutdown.
var ErrHubClosed = errors.New("hub is shutting down")

// Hub tracks the open announcement streams.
type Hub struct {
	mu     sync.RWMutex
	conns  map[*Client]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{conns: make(map[*Client]struct{})}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "announcements" }

// Register adds a connection. subscriber identifies the peer in logs only.
func (h *Hub) Register(subscriber string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if len(h.conns) >= maxTotalConns {
		return nil, ErrHubFull
	}

	client := NewClient(h, conn, subscriber)
	h.conns[client] = struct{}{}
	observability.ActiveWebSockets.Inc()
	return client, nil
}

// UnregisterClient drops a connection. Calling it twice is harmless.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[client]; !ok {
		return
	}
	delete(h.conns, client)
	close(client.Send)
	observability.ActiveWebSockets.Dec()
}

// Count reports the number of registered connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// BroadcastAll sends message to every connected client.
func (h *Hub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns {
		c.TrySend(message)
	}
}

// Shutdown closes every client's send channel. WritePump then sends the
// close frame and tears the connection down.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	for client := range h.conns {
		close(client.Send)
		observability.ActiveWebSockets.Dec()
	}
	middleware.Logger.Info("announcement hub closed", "connections", len(h.conns))
	h.conns = make(map[*Client]struct{})
	return nil
}
