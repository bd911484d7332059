package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flight-booking-engine/internal/booking_engine/service"
	"github.com/flight-booking-engine/internal/domain/booking"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BookingManagerImpl struct {
	bookingRepo booking.Repository
	tickets     *booking.TicketNumberGenerator
	logger      *slog.Logger
}

func NewBookingManager(bookingRepo booking.Repository, tickets *booking.TicketNumberGenerator, logger *slog.Logger) service.BookingManager {
	return &BookingManagerImpl{
		bookingRepo: bookingRepo,
		tickets:     tickets,
		logger:      logger,
	}
}

// IssueTicketNumber draws ticket numbers until one is not taken
func (m *BookingManagerImpl) IssueTicketNumber(ctx context.Context) (string, error) {
	ticket, err := m.tickets.GenerateUnique(ctx, m.bookingRepo.TicketNumberExists)
	if err != nil {
		m.logger.Error("Failed to issue ticket number", "error", err)
		return "", fmt.Errorf("failed to issue ticket number: %w", err)
	}
	return ticket, nil
}

func (m *BookingManagerImpl) FindByIdempotencyKey(ctx context.Context, key string) (*booking.Booking, error) {
	return m.bookingRepo.GetByIdempotencyKey(ctx, key)
}

func (m *BookingManagerImpl) Create(ctx context.Context, tx pgx.Tx, b *booking.Booking) error {
	if err := m.bookingRepo.WithTx(tx).Create(ctx, b); err != nil {
		var dup booking.ErrDuplicateIdempotencyKey
		if errors.As(err, &dup) {
			m.logger.Warn("Idempotency key already used", "key", dup.Key)
			return err
		}
		m.logger.Error("Failed to create booking", "booking_id", b.ID.String(), "error", err)
		return fmt.Errorf("failed to create booking %s: %w", b.ID.String(), err)
	}
	return nil
}

// LockBooking loads the booking under a row lock held until tx ends
func (m *BookingManagerImpl) LockBooking(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*booking.Booking, error) {
	b, err := m.bookingRepo.WithTx(tx).LockForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound{}) {
			return nil, err
		}
		m.logger.Error("Failed to lock booking", "booking_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock booking %s: %w", id.String(), err)
	}
	return b, nil
}

// MarkCancelled persists a booking already moved to CANCELLED in memory
func (m *BookingManagerImpl) MarkCancelled(ctx context.Context, tx pgx.Tx, b *booking.Booking) error {
	if !b.IsCancelled() {
		return fmt.Errorf("booking %s is %s, not cancelled", b.ID.String(), b.Status)
	}
	if err := m.bookingRepo.WithTx(tx).UpdateStatus(ctx, b); err != nil {
		m.logger.Error("Failed to persist cancellation", "booking_id", b.ID.String(), "error", err)
		return fmt.Errorf("failed to cancel booking %s: %w", b.ID.String(), err)
	}
	return nil
}
