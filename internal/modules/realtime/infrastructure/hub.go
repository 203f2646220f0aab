package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"

	"doceGestaoWs/internal/modules/realtime/domain"
)

// Hub delivers one message to every registered connection, or to a room subset.
// Delivery is best effort, at most once per connection, with no retry and no
// acknowledgement; a connection whose write fails is dropped from the registry
// and the fan-out continues.
type Hub struct {
	registry *Registry
}

func NewHub(registry *Registry) *Hub {
	return &Hub{registry: registry}
}

// Registry exposes the hub's connection registry to the transport handlers.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Broadcast fans the message out to every registered connection.
func (h *Hub) Broadcast(ctx context.Context, msg *domain.Message) {
	h.fanOut(ctx, h.registry.Snapshot(), msg)
}

// BroadcastTo fans the message out to the members of the named room.
func (h *Hub) BroadcastTo(ctx context.Context, room string, msg *domain.Message) {
	h.fanOut(ctx, h.registry.Room(room), msg)
}

func (h *Hub) fanOut(_ context.Context, conns []Conn, msg *domain.Message) {
	if msg == nil || len(conns) == 0 {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		slog.Error("broadcast marshal error", slog.String("type", msg.Type), slog.Any("error", err))
		return
	}

	for _, c := range conns {
		if err := c.Send(payload); err != nil {
			slog.Warn("broadcast send failed, dropping connection",
				slog.String("connId", c.ID()), slog.String("type", msg.Type), slog.Any("error", err))
			h.registry.Unregister(c)
		}
	}
}
