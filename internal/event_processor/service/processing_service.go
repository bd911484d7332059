package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/flight-booking-engine/internal/domain/ledger"
	"github.com/flight-booking-engine/internal/domain/shared"
	"github.com/flight-booking-engine/internal/platform/metrics"
)

// EventProcessingService routes wallet events to the ledger projection and
// booking events to the notifier
type EventProcessingService struct {
	projector LedgerProjector
	notifier  BookingNotifier
	logger    *slog.Logger
}

func NewEventProcessingService(projector LedgerProjector, notifier BookingNotifier, logger *slog.Logger) *EventProcessingService {
	return &EventProcessingService{
		projector: projector,
		notifier:  notifier,
		logger:    logger,
	}
}

// ProcessEvent dispatches by event type. Errors wrapping ErrUnprocessable are permanent;
// any other error is retried by the consumer.
func (s *EventProcessingService) ProcessEvent(ctx context.Context, event *shared.Event) error {
	err := s.dispatch(ctx, event)
	if err != nil {
		metrics.EventProcessed(string(event.Type), metrics.OutcomeFailed)
		return err
	}
	metrics.EventProcessed(string(event.Type), metrics.OutcomeProcessed)
	return nil
}

func (s *EventProcessingService) dispatch(ctx context.Context, event *shared.Event) error {
	switch event.Type {
	case shared.EventWalletCredited, shared.EventWalletDebited:
		var movement shared.WalletMovement
		if err := json.Unmarshal(event.Payload, &movement); err != nil {
			return fmt.Errorf("%w: failed to decode %s payload: %w", ErrUnprocessable, event.Type, err)
		}
		return s.projector.Project(ctx, ledger.FromMovement(movement, event.CorrelationID))

	case shared.EventBookingConfirmed, shared.EventBookingCancelled:
		var notice shared.BookingNotice
		if err := json.Unmarshal(event.Payload, &notice); err != nil {
			return fmt.Errorf("%w: failed to decode %s payload: %w", ErrUnprocessable, event.Type, err)
		}
		return s.notifier.NotifyBooking(ctx, event.Type, notice)
	}
	return fmt.Errorf("%w: %w: %s", ErrUnprocessable, shared.ErrUnknownEventType, event.Type)
}
