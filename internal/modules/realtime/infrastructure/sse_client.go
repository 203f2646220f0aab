package infrastructure

import (
	"fmt"
	"net/http"
	"sync"
)

// SSEClient binds one long-lived event-stream response to the registry. Frames
// are newline-delimited "data: <json>" blocks; the connection lives until the
// peer aborts the request.
type SSEClient struct {
	id        string
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewSSEClient(id string, buffer int) *SSEClient {
	if buffer < 1 {
		buffer = 16
	}
	return &SSEClient{
		id:   id,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func (c *SSEClient) ID() string { return c.id }

func (c *SSEClient) Send(payload []byte) error {
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

func (c *SSEClient) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// WriteFrame writes one event-stream frame and flushes it to the peer.
func WriteFrame(w http.ResponseWriter, flusher http.Flusher, payload []byte) error {
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// Serve pumps queued frames onto the response until the request context is
// cancelled or a write fails. It blocks for the lifetime of the stream.
func (c *SSEClient) Serve(w http.ResponseWriter, flusher http.Flusher, clientGone <-chan struct{}) error {
	for {
		select {
		case <-clientGone:
			return nil
		case <-c.done:
			return nil
		case payload := <-c.send:
			if err := WriteFrame(w, flusher, payload); err != nil {
				return err
			}
		}
	}
}
