package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"forumhub/internal/middleware"
	"forumhub/internal/models"

	"github.com/redis/go-redis/v9"
)

// AnnouncementsChannel is the Redis channel new announcements are published on.
const AnnouncementsChannel = "announcements"

// Event is the envelope written to websocket subscribers.
type Event struct {
	Type    string               `json:"type"`
	Payload *models.Announcement `json:"payload"`
}

// Notifier publishes announcements. With Redis every instance's hub receives
// them through the subscriber; without it the local hub is written directly.
type Notifier struct {
	rdb *redis.Client
	hub *Hub
}

func NewNotifier(rdb *redis.Client, hub *Hub) *Notifier {
	return &Notifier{rdb: rdb, hub: hub}
}

// PublishAnnouncement encodes a and fans it out.
func (n *Notifier) PublishAnnouncement(ctx context.Context, a *models.Announcement) error {
	payload, err := json.Marshal(Event{Type: "announcement", Payload: a})
	if err != nil {
		return fmt.Errorf("marshal announcement: %w", err)
	}
	if n.rdb == nil {
		n.hub.BroadcastAll(payload)
		return nil
	}
	return n.rdb.Publish(ctx, AnnouncementsChannel, payload).Err()
}

// Start subscribes to the announcements channel and forwards every message
// to the hub until ctx is cancelled. It returns once the subscription is
// confirmed. Without Redis it does nothing.
func (n *Notifier) Start(ctx context.Context) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, AnnouncementsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", AnnouncementsChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in announcement subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					n.hub.BroadcastAll([]byte(msg.Payload))
				}()
			}
		}
	}()

	return nil
}
