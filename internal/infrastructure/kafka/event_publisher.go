package kafka

import (
	"context"

	"github.com/google/uuid"

	"github.com/wms-platform/wave-planning-service/internal/domain"
	"github.com/wms-platform/wave-planning-service/pkg/kafka"
	"github.com/wms-platform/wave-planning-service/pkg/logging"
)

// EventPublisher implements domain.EventPublisher on top of the Kafka
// producer. Wave lifecycle events and pick task events go to separate topics.
type EventPublisher struct {
	producer *kafka.Producer
	logger   *logging.Logger
}

// NewEventPublisher creates a new Kafka-backed event publisher.
func NewEventPublisher(producer *kafka.Producer, logger *logging.Logger) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		logger:   logger.WithComponent("event-publisher"),
	}
}

// Publish routes the event to its topic and writes it.
func (p *EventPublisher) Publish(ctx context.Context, event domain.Event) error {
	topic := kafka.Topics.WavesEvents
	if _, ok := event.(domain.PickTaskUpdatedEvent); ok {
		topic = kafka.Topics.PickingEvents
	}

	err := p.producer.Publish(ctx, topic,
		uuid.NewString(), event.EventType(), event.Subject(), event.OccurredAt(), event)
	if err != nil {
		return err
	}

	p.logger.Debug("event published",
		"topic", topic, "eventType", event.EventType(), "subject", event.Subject())
	return nil
}
