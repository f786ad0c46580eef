package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Envelope is the wire shape of every event this service publishes.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Source     string          `json:"source"`
	Subject    string          `json:"subject"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// Producer publishes event envelopes to Kafka topics.
type Producer struct {
	writers map[string]*kafka.Writer
	config  *Config
	source  string
}

// NewProducer creates a new Kafka producer.
func NewProducer(config *Config, source string) *Producer {
	return &Producer{
		writers: make(map[string]*kafka.Writer),
		config:  config,
		source:  source,
	}
}

func (p *Producer) getWriter(topic string) *kafka.Writer {
	if writer, exists := p.writers[topic]; exists {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.config.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    p.config.BatchSize,
		BatchTimeout: p.config.BatchTimeout,
		RequiredAcks: kafka.RequiredAcks(p.config.RequiredAcks),
		Async:        false,
	}

	p.writers[topic] = writer
	return writer
}

// Publish serializes payload into an Envelope and writes it to topic, keyed
// by subject so events for one wave stay ordered within a partition.
func (p *Producer) Publish(ctx context.Context, topic, eventID, eventType, subject string, occurredAt time.Time, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := Envelope{
		ID:         eventID,
		Type:       eventType,
		Source:     p.source,
		Subject:    subject,
		OccurredAt: occurredAt,
		Data:       data,
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(subject),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(eventType)},
			{Key: "event-source", Value: []byte(p.source)},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: occurredAt,
	}

	if err := p.getWriter(topic).WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event to topic %s: %w", topic, err)
	}

	return nil
}

// Close closes all writers.
func (p *Producer) Close() error {
	var lastErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close writer for topic %s: %w", topic, err)
		}
	}
	return lastErr
}
