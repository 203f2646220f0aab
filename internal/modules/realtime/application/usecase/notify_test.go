package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"doceGestaoWs/internal/modules/realtime/domain"
)

type recordingBroadcaster struct {
	rooms    []string
	messages []*domain.Message
	panics   bool
}

func (b *recordingBroadcaster) Broadcast(_ context.Context, msg *domain.Message) {
	if b.panics {
		panic("broadcaster down")
	}
	b.messages = append(b.messages, msg)
}

func (b *recordingBroadcaster) BroadcastTo(_ context.Context, room string, msg *domain.Message) {
	if b.panics {
		panic("broadcaster down")
	}
	b.rooms = append(b.rooms, room)
	b.messages = append(b.messages, msg)
}

type failingPublisher struct {
	calls int
}

func (p *failingPublisher) PublishOrderCreated(context.Context, *domain.NewOrderData) error {
	p.calls++
	return errors.New("broker unavailable")
}

func TestNotifyBroadcastsToDashboardRoom(t *testing.T) {
	t.Parallel()

	broadcaster := &recordingBroadcaster{}
	uc := NewNotifyUseCase(broadcaster, nil)
	uc.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }

	data := &domain.NewOrderData{ID: "order-1", Codigo: "PD1", ValorTotal: 50}
	uc.Notify(context.Background(), domain.EventNewOrder, data)

	if len(broadcaster.messages) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(broadcaster.messages))
	}
	if broadcaster.rooms[0] != domain.RoomDashboard {
		t.Fatalf("expected dashboard room, got %q", broadcaster.rooms[0])
	}
	msg := broadcaster.messages[0]
	if msg.Type != domain.EventNewOrder {
		t.Fatalf("expected type new_order, got %q", msg.Type)
	}
	if msg.Timestamp != "2025-03-10T12:00:00Z" {
		t.Fatalf("unexpected timestamp: %s", msg.Timestamp)
	}
	if msg.Data != any(data) {
		t.Fatal("payload should be passed through untouched")
	}
}

func TestNotifySwallowsPublisherFailure(t *testing.T) {
	t.Parallel()

	broadcaster := &recordingBroadcaster{}
	publisher := &failingPublisher{}
	uc := NewNotifyUseCase(broadcaster, publisher)

	uc.Notify(context.Background(), domain.EventNewOrder, &domain.NewOrderData{ID: "order-1"})

	if publisher.calls != 1 {
		t.Fatalf("expected 1 publish attempt, got %d", publisher.calls)
	}
	if len(broadcaster.messages) != 1 {
		t.Fatal("broadcast should happen regardless of publisher failure")
	}
}

func TestNotifyRecoversBroadcasterPanic(t *testing.T) {
	t.Parallel()

	uc := NewNotifyUseCase(&recordingBroadcaster{panics: true}, nil)
	// Must not panic.
	uc.Notify(context.Background(), domain.EventNewOrder, &domain.NewOrderData{ID: "order-1"})
}

func TestNotifySurvivesCancelledContext(t *testing.T) {
	t.Parallel()

	broadcaster := &recordingBroadcaster{}
	uc := NewNotifyUseCase(broadcaster, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	uc.Notify(ctx, domain.EventNewOrder, &domain.NewOrderData{ID: "order-1"})

	if len(broadcaster.messages) != 1 {
		t.Fatal("a cancelled request context must not suppress the notification")
	}
}

func TestNotifySkipsPublisherForOtherEvents(t *testing.T) {
	t.Parallel()

	publisher := &failingPublisher{}
	uc := NewNotifyUseCase(&recordingBroadcaster{}, publisher)

	uc.Notify(context.Background(), domain.EventOrderUpdated, map[string]any{"id": "order-1"})

	if publisher.calls != 0 {
		t.Fatalf("expected no publish for order_updated, got %d", publisher.calls)
	}
}
