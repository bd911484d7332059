package service

import (
	"context"
	"errors"

	"github.com/flight-booking-engine/internal/domain/ledger"
	"github.com/flight-booking-engine/internal/domain/shared"
)

// ErrUnprocessable marks an event that no retry can fix
var ErrUnprocessable = errors.New("event cannot be processed")

// ProcessingService handles one decoded domain event
type ProcessingService interface {
	ProcessEvent(ctx context.Context, event *shared.Event) error
}

// LedgerProjector writes wallet movements into the statement store
type LedgerProjector interface {
	Project(ctx context.Context, entry *ledger.Entry) error
}

// BookingNotifier tells the passenger about a booking status change
type BookingNotifier interface {
	NotifyBooking(ctx context.Context, eventType shared.EventType, notice shared.BookingNotice) error
}
