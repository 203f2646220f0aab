package broker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"doceGestaoWs/internal/modules/realtime/application/port"
	"doceGestaoWs/internal/modules/realtime/domain"
)

// Consumer reads one notification topic and hands each decoded message to a handler.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}),
	}
}

func (c *Consumer) Consume(ctx context.Context, handler func(*domain.Message)) error {
	defer c.reader.Close()
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			slog.Warn("kafka read error", slog.String("topic", c.reader.Config().Topic), slog.Any("error", err))
			continue
		}
		msg := decodeMessage(m)
		slog.Info("kafka message consumed",
			slog.String("topic", m.Topic),
			slog.Int("partition", m.Partition),
			slog.Int64("offset", m.Offset),
			slog.String("type", msg.Type),
		)
		handler(msg)
	}
}

// decodeMessage maps a broker payload onto the shared notification shape.
// Payloads that are not the expected envelope are forwarded raw so a
// misbehaving producer still shows up on the dashboard instead of vanishing.
func decodeMessage(m kafka.Message) *domain.Message {
	var msg domain.Message
	if err := json.Unmarshal(m.Value, &msg); err != nil || msg.Type == "" {
		return &domain.Message{Type: m.Topic, Data: string(m.Value)}
	}
	return &msg
}

// StartConsumers launches one consumer goroutine per topic, each re-broadcasting
// into the dashboard room. The context cancels all of them.
func StartConsumers(ctx context.Context, broadcaster port.Broadcaster, brokers []string, groupID string, topics []string) {
	for _, topic := range topics {
		consumer := NewConsumer(brokers, groupID, topic)
		go func(topic string) {
			slog.Info("kafka consumer started", slog.String("topic", topic), slog.String("group", groupID))
			if err := consumer.Consume(ctx, func(msg *domain.Message) {
				broadcaster.BroadcastTo(ctx, domain.RoomDashboard, msg)
			}); err != nil {
				slog.Error("kafka consumer stopped", slog.String("topic", topic), slog.Any("error", err))
			}
		}(topic)
	}
}
