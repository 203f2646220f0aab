package infrastructure

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"doceGestaoWs/internal/modules/realtime/domain"
)

const (
	pingInterval  = 30 * time.Second
	pongWait      = 60 * time.Second
	writeDeadline = 5 * time.Second
)

// wsCommand is an inbound frame from the dashboard frontend.
type wsCommand struct {
	Event string `json:"event"`
}

// wsFrame is the outbound envelope: the dashboard listens for "notification"
// events whose payload is the shared message shape.
type wsFrame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// WSClient binds one websocket connection to the registry. Outbound frames go
// through a buffered channel drained by WritePump; a full buffer fails the Send
// so the hub drops the connection instead of blocking the fan-out.
type WSClient struct {
	id        string
	userID    string
	conn      *websocket.Conn
	registry  *Registry
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewWSClient(registry *Registry, conn *websocket.Conn, id, userID string, buffer int) *WSClient {
	if buffer < 1 {
		buffer = 16
	}
	return &WSClient{
		id:       id,
		userID:   userID,
		conn:     conn,
		registry: registry,
		send:     make(chan []byte, buffer),
		done:     make(chan struct{}),
	}
}

func (c *WSClient) ID() string { return c.id }

func (c *WSClient) Send(payload []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return ErrSlowConsumer
	}
}

func (c *WSClient) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// SendMessage marshals and queues a message outside the hub's fan-out path,
// used for the connected handshake frame.
func (c *WSClient) SendMessage(msg *domain.Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		slog.Error("websocket marshal error", slog.Any("error", err))
		return
	}
	if err := c.Send(payload); err != nil {
		c.registry.Unregister(c)
	}
}

// WritePump drains the send channel onto the wire and keeps the peer alive
// with pings. It owns all writes to the underlying connection.
func (c *WSClient) WritePump() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			frame, err := json.Marshal(wsFrame{Event: "notification", Payload: payload})
			if err != nil {
				slog.Error("websocket frame marshal error", slog.Any("error", err))
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				slog.Warn("websocket write error", slog.String("connId", c.id), slog.Any("error", err))
				c.registry.Unregister(c)
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline)); err != nil {
				slog.Warn("websocket ping error", slog.String("connId", c.id), slog.Any("error", err))
				c.registry.Unregister(c)
				return
			}
		}
	}
}

// ReadPump consumes inbound commands until the peer disconnects. Disconnection
// is the expected cancellation path and only triggers cleanup.
func (c *WSClient) ReadPump() {
	defer c.registry.Unregister(c)

	c.conn.SetReadLimit(1 << 16)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var cmd wsCommand
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("websocket read error", slog.String("connId", c.id), slog.Any("error", err))
			}
			return
		}
		c.handleCommand(cmd)
	}
}

func (c *WSClient) handleCommand(cmd wsCommand) {
	switch cmd.Event {
	case "join-dashboard":
		c.registry.Join(c, domain.RoomDashboard)
		slog.Info("websocket client joined dashboard", slog.String("connId", c.id), slog.String("userId", c.userID))
	case "ping":
		c.SendMessage(&domain.Message{Type: "pong"})
	default:
		slog.Debug("websocket command ignored", slog.String("connId", c.id), slog.String("event", cmd.Event))
	}
}
