package infrastructure

import (
	"fmt"
	"sync"
	"testing"

	"doceGestaoWs/internal/modules/realtime/domain"
)

// fakeConn records delivered payloads and can be told to fail its writes.
type fakeConn struct {
	id string

	mu       sync.Mutex
	received [][]byte
	failSend error
	closed   bool
	onSend   func()
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.onSend != nil {
		c.onSend()
	}
	if c.failSend != nil {
		return c.failSend
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	c.received = append(c.received, buf)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) deliveries() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.received))
	copy(out, c.received)
	return out
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func snapshotIDs(r *Registry) map[string]bool {
	ids := make(map[string]bool)
	for _, c := range r.Snapshot() {
		ids[c.ID()] = true
	}
	return ids
}

func TestRegistrySetSemantics(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := newFakeConn("a")
	b := newFakeConn("b")
	c := newFakeConn("c")

	r.Register(a)
	r.Register(b)
	r.Register(c)
	r.Unregister(b)
	r.Register(a) // duplicate register is a no-op
	r.Unregister(newFakeConn("ghost")) // absent removal is not an error

	ids := snapshotIDs(r)
	if len(ids) != 2 || !ids["a"] || !ids["c"] {
		t.Fatalf("expected {a, c}, got %v", ids)
	}
	if r.Len() != 2 {
		t.Fatalf("expected len 2, got %d", r.Len())
	}
}

func TestRegistryUnregisterIsIdempotent(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := newFakeConn("a")
	r.Register(a)
	r.Unregister(a)
	r.Unregister(a)

	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
	if !a.isClosed() {
		t.Fatal("unregister should close the connection")
	}
}

func TestRegistryRoomMembership(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := newFakeConn("a")
	b := newFakeConn("b")

	r.Join(a, domain.RoomDashboard)
	r.Register(b) // registered but not in the room

	room := r.Room(domain.RoomDashboard)
	if len(room) != 1 || room[0].ID() != "a" {
		t.Fatalf("expected room {a}, got %d members", len(room))
	}
	if r.Len() != 2 {
		t.Fatalf("join should also register; expected len 2, got %d", r.Len())
	}

	r.Unregister(a)
	if members := r.Room(domain.RoomDashboard); len(members) != 0 {
		t.Fatalf("expected empty room after unregister, got %d", len(members))
	}
}

func TestRegistryConcurrentMutation(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c := newFakeConn(fmt.Sprintf("conn-%d", n))
			r.Join(c, domain.RoomDashboard)
			r.Snapshot()
			if n%2 == 0 {
				r.Unregister(c)
			}
		}(i)
	}
	wg.Wait()

	if r.Len() != 16 {
		t.Fatalf("expected 16 surviving connections, got %d", r.Len())
	}
}
