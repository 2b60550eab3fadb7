package notifications

import (
	"time"

	"forumhub/internal/middleware"
	"forumhub/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Subscribers only send control frames.
	maxMessageSize = 512

	sendBuffer = 64
)

var dropNotice = []byte(`{"type":"messages_dropped","payload":{"reason":"buffer_full"}}`)

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	hub  *Hub
	Conn *websocket.Conn

	// Buffered channel of outbound messages. Closed by the hub.
	Send chan []byte

	Subscriber string
}

func NewClient(hub *Hub, conn *websocket.Conn, subscriber string) *Client {
	return &Client{
		hub:        hub,
		Conn:       conn,
		Subscriber: subscriber,
		Send:       make(chan []byte, sendBuffer),
	}
}

// ReadPump discards inbound frames and keeps the read deadline fresh
// until the peer goes away.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { return c.Conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				middleware.Logger.Warn("websocket read failed", "subscriber", c.Subscriber, "error", err)
			}
			return
		}
	}
}

// WritePump writes queued messages and pings to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream closed"))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues message without blocking. A full buffer drops the message
// and queues a drop notice instead, if there is room for it.
func (c *Client) TrySend(message []byte) {
	defer func() {
		// Send was closed by a concurrent unregister.
		if r := recover(); r != nil {
			observability.WebSocketBackpressureDrops.WithLabelValues(c.hub.Name(), "closed").Inc()
		}
	}()

	select {
	case c.Send <- message:
	default:
		observability.WebSocketBackpressureDrops.WithLabelValues(c.hub.Name(), "full").Inc()
		middleware.Logger.Warn("websocket buffer full, dropped message", "subscriber", c.Subscriber)
		select {
		case c.Send <- dropNotice:
		default:
		}
	}
}
