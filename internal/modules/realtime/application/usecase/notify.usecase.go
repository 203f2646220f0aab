package usecase

import (
	"context"
	"log/slog"
	"time"

	"doceGestaoWs/internal/modules/realtime/application/port"
	"doceGestaoWs/internal/modules/realtime/domain"
)

// NotifyUseCase turns a committed domain event into a dashboard broadcast and
// a broker publication. It is fire-and-forget: every failure, including a
// panicking collaborator, is logged and swallowed so the order path that
// triggered it always reports success.
type NotifyUseCase struct {
	broadcaster port.Broadcaster
	publisher   port.EventPublisher
	now         func() time.Time
}

func NewNotifyUseCase(b port.Broadcaster, p port.EventPublisher) *NotifyUseCase {
	if p == nil {
		p = port.NopPublisher{}
	}
	return &NotifyUseCase{broadcaster: b, publisher: p, now: time.Now}
}

// Notify builds the message, fans it out to the dashboard room, and publishes
// new-order events to the broker. It never returns an error and never panics.
func (uc *NotifyUseCase) Notify(ctx context.Context, eventType string, data any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("notify panic recovered", slog.String("type", eventType), slog.Any("error", r))
		}
	}()

	// The triggering request may already be cancelled (peer gone right after
	// commit); the notification still has to reach the connected dashboards.
	ctx = context.WithoutCancel(ctx)

	msg := domain.NewMessage(eventType, data, uc.now())
	uc.broadcaster.BroadcastTo(ctx, domain.RoomDashboard, msg)

	if orderData, ok := data.(*domain.NewOrderData); ok && eventType == domain.EventNewOrder {
		if err := uc.publisher.PublishOrderCreated(ctx, orderData); err != nil {
			slog.Warn("order event publish failed", slog.String("codigo", orderData.Codigo), slog.Any("error", err))
		}
	}
}
