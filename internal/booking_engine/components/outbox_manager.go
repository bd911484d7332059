package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flight-booking-engine/internal/booking_engine/service"
	"github.com/flight-booking-engine/internal/domain/outbox"
	"github.com/flight-booking-engine/internal/domain/shared"
	"github.com/jackc/pgx/v5"
)

type OutboxManagerImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewOutboxManager(outboxRepo outbox.Repository, logger *slog.Logger) service.OutboxManager {
	return &OutboxManagerImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// Enqueue writes one outbox row per event inside tx
func (m *OutboxManagerImpl) Enqueue(ctx context.Context, tx pgx.Tx, events ...*shared.Event) error {
	outboxRepoTx := m.outboxRepo.WithTx(tx)

	for _, event := range events {
		logger := m.logger
		if event.CorrelationID != "" {
			logger = m.logger.With("correlation_id", event.CorrelationID)
		}

		message, err := outbox.NewMessage(event)
		if err != nil {
			logger.Error("Failed to create outbox message", "event_id", event.EventID.String(), "error", err)
			return fmt.Errorf("failed to create outbox message for event %s: %w", event.EventID.String(), err)
		}

		if err := outboxRepoTx.Create(ctx, message); err != nil {
			logger.Error("Failed to store outbox message", "event_id", event.EventID.String(), "type", string(event.Type), "error", err)
			return fmt.Errorf("failed to store outbox message for event %s: %w", event.EventID.String(), err)
		}
		logger.Info("Outbox message created", "event_id", event.EventID.String(), "type", string(event.Type), "outbox_id", message.ID)
	}
	return nil
}
