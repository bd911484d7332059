package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flight-booking-engine/internal/domain/outbox"
	"github.com/flight-booking-engine/internal/domain/shared"
	"github.com/flight-booking-engine/internal/platform/messaging/producers"
)

// Kafka headers set on every published event
const (
	HeaderEventType     = "event-type"
	HeaderEventID       = "event-id"
	HeaderCorrelationID = "correlation-id"
)

// ErrUndeliverable marks a message that was parked instead of retried
var ErrUndeliverable = errors.New("outbox message is undeliverable")

// EventPublisher moves one outbox message to the message bus
type EventPublisher interface {
	Publish(ctx context.Context, message *outbox.Message) error
}

// KafkaEventPublisher publishes outbox messages to the booking topic and marks them processed
type KafkaEventPublisher struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

func NewKafkaEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// Publish sends the stored envelope keyed by aggregate id, so events of one booking or
// wallet stay ordered within a partition. A payload that no longer decodes is parked as
// FAILED_TO_PUBLISH right away since retrying cannot fix it.
func (p *KafkaEventPublisher) Publish(ctx context.Context, message *outbox.Message) error {
	evt, err := message.Event()
	if err != nil {
		p.logger.Error("Outbox payload is not a valid event envelope",
			"outbox_id", message.ID, "event_id", message.EventID.String(), "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after decode error",
				"outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("outbox %d: %w: %w", message.ID, ErrUndeliverable, err)
	}

	logger := p.logger
	if evt.CorrelationID != "" {
		logger = p.logger.With("correlation_id", evt.CorrelationID)
	}

	headers := map[string]string{
		HeaderEventType: string(evt.Type),
		HeaderEventID:   evt.EventID.String(),
	}
	if evt.CorrelationID != "" {
		headers[HeaderCorrelationID] = evt.CorrelationID
	}

	if err := p.producer.Publish(ctx, evt.AggregateID.String(), message.Payload, headers); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", evt.EventID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "event_id", evt.EventID.String(), "error", err,
		)
		return fmt.Errorf("event %s published, but failed to mark outbox %d as PROCESSED: %w", evt.EventID, message.ID, err)
	}

	logger.Info("Event published", "outbox_id", message.ID, "event_id", evt.EventID.String(), "event_type", evt.Type)
	return nil
}
