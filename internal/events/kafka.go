package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"

	"github.com/fairyhunter13/amiral-order-service/internal/model"
)

// DefaultTopic receives every order event.
const DefaultTopic = "orders.events"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

// KafkaPublisher writes order events to a topic, keyed by the client
// fingerprint so one customer's events stay in order on a partition.
type KafkaPublisher struct {
	w     messageWriter
	topic string
}

// NewKafkaPublisher returns a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafkaGo.Writer{
		Addr:         kafkaGo.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkaGo.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafkaGo.RequireOne,
	}
	return &KafkaPublisher{w: w, topic: topic}
}

func (k *KafkaPublisher) Name() string { return "kafka" }

func (k *KafkaPublisher) Handle(ctx context.Context, ev model.OrderEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	key := ev.Payload.Fingerprint
	if key == "" {
		key = ev.ID
	}
	err = k.w.WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafkaGo.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
			{Key: "event_id", Value: []byte(ev.ID)},
		},
		Time: ev.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("write to %s: %w", k.topic, err)
	}
	return nil
}

// Close flushes pending messages.
func (k *KafkaPublisher) Close() error { return k.w.Close() }
