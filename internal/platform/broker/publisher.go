package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"doceGestaoWs/internal/modules/realtime/domain"
)

// OrderCreatedEvent is the broker envelope published after an order commits,
// consumed by the SMS/email workers.
type OrderCreatedEvent struct {
	EventType  string    `json:"event_type"`
	OrderID    string    `json:"order_id"`
	OrderCode  string    `json:"order_code"`
	ClientID   string    `json:"client_id"`
	Total      float64   `json:"total"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

const eventOrderCreated = "order.created"

// Publisher writes committed order events to Kafka.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, data *domain.NewOrderData) error {
	payload, err := json.Marshal(OrderCreatedEvent{
		EventType:  eventOrderCreated,
		OrderID:    data.ID,
		OrderCode:  data.Codigo,
		ClientID:   data.Cliente.ID,
		Total:      data.ValorTotal,
		Status:     data.Status,
		OccurredAt: data.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(data.ID),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("write order event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
