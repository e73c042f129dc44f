package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher publishes CloudEvents to a topic.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, ce CloudEvent) error
	Close() error
}

// Producer publishes CloudEvents to Kafka.
type Producer struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// NewProducer creates a Producer for the given brokers. The topic is chosen per message.
func NewProducer(brokers []string, logger *zap.Logger) *Producer {
	return &Producer{
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(brokers...),
			Balancer:               &kafkago.Hash{},
			RequiredAcks:           kafkago.RequireOne,
			BatchTimeout:           10 * time.Millisecond,
			WriteTimeout:           5 * time.Second,
			AllowAutoTopicCreation: true,
		},
		logger: logger.Named("kafka-producer"),
	}
}

// PublishEvent writes ce to topic, keyed by its subject (or ID when no subject is set).
func (p *Producer) PublishEvent(ctx context.Context, topic string, ce CloudEvent) error {
	value, err := json.Marshal(ce)
	if err != nil {
		return fmt.Errorf("marshal cloud event: %w", err)
	}

	key := ce.Subject
	if key == "" {
		key = ce.ID
	}

	msg := kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "ce_type", Value: []byte(ce.Type)},
			{Key: "content-type", Value: []byte("application/cloudevents+json")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message to %s: %w", topic, err)
	}

	p.logger.Debug("event published",
		zap.String("topic", topic),
		zap.String("event_type", ce.Type),
		zap.String("event_id", ce.ID),
	)
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// NopPublisher discards every event. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishEvent(context.Context, string, CloudEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
