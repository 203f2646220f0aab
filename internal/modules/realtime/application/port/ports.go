package port

import (
	"context"

	"doceGestaoWs/internal/modules/realtime/domain"
)

// Broadcaster is the transport-agnostic fan-out capability. Implementations
// never surface delivery failures to callers.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg *domain.Message)
	BroadcastTo(ctx context.Context, room string, msg *domain.Message)
}

// EventPublisher pushes committed order events to the broker so sibling
// services (SMS, email) can react.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, data *domain.NewOrderData) error
}

// NopPublisher discards events, used when no broker is configured.
type NopPublisher struct{}

var _ EventPublisher = (*NopPublisher)(nil)

func (NopPublisher) PublishOrderCreated(context.Context, *domain.NewOrderData) error { return nil }
