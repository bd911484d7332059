package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flight-booking-engine/internal/domain/shared"
	"github.com/flight-booking-engine/internal/event_processor/service"
	"github.com/flight-booking-engine/internal/platform/messaging/producers"
	"github.com/flight-booking-engine/internal/platform/metrics"
)

// BookingEventHandler handles domain events consumed from the booking topic
type BookingEventHandler struct {
	processingService service.ProcessingService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewBookingEventHandler creates a new handler. producer may be nil, in which case
// permanent failures are retried instead of parked.
func NewBookingEventHandler(
	logger *slog.Logger,
	processingService service.ProcessingService,
	producer producers.DeadLetterPublisher,
) *BookingEventHandler {
	return &BookingEventHandler{
		processingService: processingService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage processes Kafka messages. A nil return commits the offset; any error
// makes the consumer retry the message, so permanent failures are parked on the DLQ.
func (h *BookingEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	event, err := shared.DecodeEvent(value)
	if err != nil {
		h.logger.Error("Failed to decode event envelope from Kafka message",
			"error", err,
			"message_key", string(key),
		)
		if h.deadLetter(ctx, key, value, "undecodable", "Failed to decode event envelope from Kafka message: "+err.Error()) {
			return nil
		}
		return fmt.Errorf("failed to decode message value: %w", err)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received event for processing",
		"event_id", event.EventID.String(),
		"event_type", event.Type,
		"aggregate_id", event.AggregateID.String(),
	)

	if err := h.processingService.ProcessEvent(ctx, event); err != nil {
		logger.Error("Failed to process event",
			"event_id", event.EventID.String(),
			"event_type", event.Type,
			"error", err,
		)
		if errors.Is(err, service.ErrUnprocessable) && h.deadLetter(ctx, key, value, string(event.Type), err.Error()) {
			return nil
		}
		return fmt.Errorf("processing event %s failed: %w", event.EventID.String(), err)
	}

	logger.Info("Successfully processed event", "event_id", event.EventID.String())
	return nil
}

// deadLetter parks the raw message and reports whether it was accepted by the DLQ
func (h *BookingEventHandler) deadLetter(ctx context.Context, key, value []byte, eventType, reason string) bool {
	if h.producer == nil {
		return false
	}
	if err := h.producer.PublishToDLQ(ctx, string(key), value, reason); err != nil {
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", err,
			"message_key", string(key),
			"reason", reason,
		)
		return false
	}
	h.logger.Info("Published message to DLQ", "message_key", string(key), "reason", reason)
	metrics.EventProcessed(eventType, metrics.OutcomeDeadLettered)
	return true
}
