package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaSink forwards events to a Kafka topic, keyed so one booking's
// events land on one partition in order.
type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (s *KafkaSink) Deliver(ctx context.Context, event Event) error {
	msg, err := toMessage(event)
	if err != nil {
		return err
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write %s: %w", event.Type, err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func toMessage(event Event) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event %s: %w", event.ID, err)
	}
	key := event.Key
	if key == "" {
		key = event.ID
	}
	return kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  event.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}, nil
}
