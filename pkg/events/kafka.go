package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher sends domain events to the message broker.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
	Close() error
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

// NewPublisher returns a Kafka publisher, or a no-op one when no brokers are
// configured.
func NewPublisher(cfg KafkaConfig) Publisher {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return NoopPublisher{}
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 5 * time.Second,
	}
	return &kafkaPublisher{writer: w}
}

func (p *kafkaPublisher) Publish(ctx context.Context, key string, event any) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

func (p *kafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
func (NoopPublisher) Close() error                              { return nil }
