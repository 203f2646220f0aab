package domain

import (
	"fmt"
	"testing"
	"time"
)

func newOrderMessage(id string) *Message {
	return NewMessage(EventNewOrder, &NewOrderData{ID: id, Codigo: "PD" + id, ValorTotal: 10}, time.Now())
}

func TestFeedCapNeverExceeded(t *testing.T) {
	t.Parallel()

	feed := NewFeed(10, nil)
	for i := 0; i < 50; i++ {
		feed.Push(newOrderMessage(fmt.Sprintf("order-%d", i)))
	}

	entries := feed.Entries()
	if len(entries) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(entries))
	}
}

func TestFeedMostRecentFirstAndFIFOEviction(t *testing.T) {
	t.Parallel()

	feed := NewFeed(3, nil)
	for i := 1; i <= 4; i++ {
		feed.Push(newOrderMessage(fmt.Sprintf("order-%d", i)))
	}

	entries := feed.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []string{"order-4", "order-3", "order-2"}
	for i, entry := range entries {
		data := entry.Data.(*NewOrderData)
		if data.ID != want[i] {
			t.Fatalf("entry %d: expected %s, got %s", i, want[i], data.ID)
		}
	}
}

func TestFeedDropsDuplicateOrders(t *testing.T) {
	t.Parallel()

	feed := NewFeed(10, nil)
	if !feed.Push(newOrderMessage("order-1")) {
		t.Fatal("first push should be accepted")
	}
	if feed.Push(newOrderMessage("order-1")) {
		t.Fatal("duplicate order id should be dropped")
	}
	if len(feed.Entries()) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(feed.Entries()))
	}
}

func TestFeedIgnoresOtherEventTypes(t *testing.T) {
	t.Parallel()

	feed := NewFeed(10, nil)
	if feed.Push(ConnectedMessage("ok")) {
		t.Fatal("connected frames should not enter the history")
	}
	if feed.Push(NewMessage(EventOrderUpdated, map[string]any{"id": "order-1"}, time.Now())) {
		t.Fatal("order_updated should not enter the history")
	}
}

func TestFeedToastFlag(t *testing.T) {
	t.Parallel()

	feed := NewFeed(10, nil)
	if feed.ConsumeToast() {
		t.Fatal("toast should start cleared")
	}
	feed.Push(newOrderMessage("order-1"))
	if !feed.ConsumeToast() {
		t.Fatal("toast should be pending after a new order")
	}
	if feed.ConsumeToast() {
		t.Fatal("toast should be cleared after consumption")
	}
}

func TestFeedInvokesNativeNotification(t *testing.T) {
	t.Parallel()

	var notified []*Message
	feed := NewFeed(10, func(msg *Message) { notified = append(notified, msg) })

	feed.Push(newOrderMessage("order-1"))
	feed.Push(newOrderMessage("order-1"))

	if len(notified) != 1 {
		t.Fatalf("expected 1 native notification, got %d", len(notified))
	}
}

func TestFeedHandlesDecodedMapPayloads(t *testing.T) {
	t.Parallel()

	feed := NewFeed(10, nil)
	msg := NewMessage(EventNewOrder, map[string]any{"id": "order-1", "valorTotal": 50.0}, time.Now())
	if !feed.Push(msg) {
		t.Fatal("map payload should be accepted")
	}
	if feed.Push(NewMessage(EventNewOrder, map[string]any{"id": "order-1"}, time.Now())) {
		t.Fatal("duplicate map payload should be dropped")
	}
}

func TestFeedConnectedFlag(t *testing.T) {
	t.Parallel()

	feed := NewFeed(10, nil)
	if feed.Connected() {
		t.Fatal("feed should start disconnected")
	}
	feed.SetConnected(true)
	if !feed.Connected() {
		t.Fatal("feed should report connected")
	}
	feed.SetConnected(false)
	if feed.Connected() {
		t.Fatal("feed should report disconnected after transport error")
	}
}
