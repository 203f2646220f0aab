package infrastructure

import (
	"errors"
	"log/slog"
	"sync"
)

var (
	// ErrConnClosed is returned by Send once a connection has been closed.
	ErrConnClosed = errors.New("connection closed")
	// ErrSlowConsumer is returned by Send when the outbound buffer is full.
	ErrSlowConsumer = errors.New("send buffer full")
)

// Conn is one open channel to a client capable of receiving pushed frames.
// Implementations must make Send safe for concurrent use and Close idempotent.
type Conn interface {
	ID() string
	Send(payload []byte) error
	Close()
}

// Registry tracks the currently reachable connections and their room
// memberships. It holds no history; a restart leaves it empty.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn
	rooms map[string]map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]Conn),
		rooms: make(map[string]map[string]Conn),
	}
}

// Register adds a connection. Registering an already-present connection is a no-op.
func (r *Registry) Register(c Conn) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[c.ID()]; ok {
		return
	}
	r.conns[c.ID()] = c
	slog.Debug("connection registered", slog.String("connId", c.ID()))
}

// Unregister removes a connection from the registry and every room, then closes
// it. Removing an absent connection is not an error.
func (r *Registry) Unregister(c Conn) {
	if c == nil {
		return
	}
	r.mu.Lock()
	_, present := r.conns[c.ID()]
	delete(r.conns, c.ID())
	for name, members := range r.rooms {
		delete(members, c.ID())
		if len(members) == 0 {
			delete(r.rooms, name)
		}
	}
	r.mu.Unlock()

	c.Close()
	if present {
		slog.Debug("connection unregistered", slog.String("connId", c.ID()))
	}
}

// Join registers the connection if needed and adds it to the named room.
func (r *Registry) Join(c Conn, room string) {
	if c == nil || room == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[c.ID()]; !ok {
		r.conns[c.ID()] = c
	}
	if r.rooms[room] == nil {
		r.rooms[room] = make(map[string]Conn)
	}
	r.rooms[room][c.ID()] = c
	slog.Debug("connection joined room", slog.String("connId", c.ID()), slog.String("room", room))
}

// Snapshot returns the connections registered at call time. Mutations after the
// call are not reflected in the returned slice.
func (r *Registry) Snapshot() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Conn, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

// Room returns the current members of the named room.
func (r *Registry) Room(name string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.rooms[name]
	out := make([]Conn, 0, len(members))
	for _, c := range members {
		out = append(out, c)
	}
	return out
}

// Len reports the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
