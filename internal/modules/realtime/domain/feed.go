package domain

import (
	"strings"
	"sync"
)

// NotifyFunc raises a native notification for a freshly arrived order.
type NotifyFunc func(msg *Message)

// Feed keeps the bounded, most-recent-first history a dashboard shows. Entries
// beyond the limit are evicted oldest-first; duplicate order ids are dropped so
// a dashboard subscribed over both transports shows each order once.
type Feed struct {
	mu        sync.Mutex
	limit     int
	entries   []*Message
	seen      map[string]struct{}
	showToast bool
	connected bool
	notify    NotifyFunc
}

// NewFeed creates a feed capped at limit entries. A non-positive limit falls
// back to 10, the dashboard default.
func NewFeed(limit int, notify NotifyFunc) *Feed {
	if limit < 1 {
		limit = 10
	}
	return &Feed{
		limit:  limit,
		seen:   make(map[string]struct{}),
		notify: notify,
	}
}

// Push records an incoming message. Only new_order events enter the history;
// it reports whether the message was added.
func (f *Feed) Push(msg *Message) bool {
	if msg == nil || msg.Type != EventNewOrder {
		return false
	}

	f.mu.Lock()
	id := orderID(msg)
	if id != "" {
		if _, dup := f.seen[id]; dup {
			f.mu.Unlock()
			return false
		}
		f.seen[id] = struct{}{}
	}

	f.entries = append([]*Message{msg}, f.entries...)
	if len(f.entries) > f.limit {
		evicted := f.entries[f.limit:]
		f.entries = f.entries[:f.limit]
		for _, old := range evicted {
			if oldID := orderID(old); oldID != "" {
				delete(f.seen, oldID)
			}
		}
	}
	f.showToast = true
	notify := f.notify
	f.mu.Unlock()

	if notify != nil {
		notify(msg)
	}
	return true
}

// Entries returns a copy of the history, most recent first.
func (f *Feed) Entries() []*Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Message, len(f.entries))
	copy(out, f.entries)
	return out
}

// ConsumeToast reports whether a toast is pending and clears the flag.
func (f *Feed) ConsumeToast() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	pending := f.showToast
	f.showToast = false
	return pending
}

// SetConnected flips the transport state shown by the dashboard.
func (f *Feed) SetConnected(connected bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = connected
}

// Connected reports whether a transport is currently attached.
func (f *Feed) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// orderID extracts the order id from a message payload, whether the payload is
// the typed struct (in-process) or a decoded JSON map (off a transport).
func orderID(msg *Message) string {
	switch data := msg.Data.(type) {
	case *NewOrderData:
		return data.ID
	case NewOrderData:
		return data.ID
	case map[string]any:
		if id, ok := data["id"].(string); ok {
			return strings.TrimSpace(id)
		}
	}
	return ""
}
