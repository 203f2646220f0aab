package domain

import "time"

// Message is the envelope pushed to every dashboard connection, regardless of
// transport. It only exists during fan-out; nothing persists it.
type Message struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	UserID    string `json:"userId,omitempty"`
}

// NewMessage builds an event message stamped with the given instant in RFC 3339.
func NewMessage(eventType string, data any, at time.Time) *Message {
	return &Message{
		Type:      eventType,
		Data:      data,
		Timestamp: at.UTC().Format(time.RFC3339),
	}
}

// ConnectedMessage is the first frame a transport sends after a subscribe succeeds.
func ConnectedMessage(text string) *Message {
	return &Message{Type: EventConnected, Message: text}
}
