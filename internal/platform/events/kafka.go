package events

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher mirrors every event to a Kafka topic so downstream
// consumers (reminder workers, analytics) can react to CRM changes.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

// SplitBrokers parses a comma-separated broker list, dropping empties.
func SplitBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

// NewKafkaPublisher returns nil when no brokers are configured so callers
// can treat Kafka as optional.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	return &KafkaPublisher{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers:  brokers,
			Topic:    topic,
			Balancer: &kafka.Hash{},
		}),
		topic: topic,
	}
}

// Publish writes the event keyed by entity id, so all events for one entity
// land on the same partition in order.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.EntityID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "entity_type", Value: []byte(event.EntityType)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
