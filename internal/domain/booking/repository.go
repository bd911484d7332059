package booking

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines booking persistence operations
type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*Booking, error)

	// LockForUpdate acquires a row lock for the rest of the surrounding transaction
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error)
	UpdateStatus(ctx context.Context, booking *Booking) error

	// ListByUserEmail returns bookings newest first
	ListByUserEmail(ctx context.Context, email string) ([]*Booking, error)
	TicketNumberExists(ctx context.Context, ticketNumber string) (bool, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrBookingNotFound indicates missing booking
type ErrBookingNotFound struct {
	BookingID uuid.UUID
}

func (e ErrBookingNotFound) Error() string {
	return "booking not found: " + e.BookingID.String()
}

// Is implements the errors.Is interface for ErrBookingNotFound
func (e ErrBookingNotFound) Is(target error) bool {
	t, ok := target.(ErrBookingNotFound)
	if !ok {
		return false
	}
	if t.BookingID == uuid.Nil {
		return true
	}
	return e.BookingID == t.BookingID
}

// ErrDuplicateIdempotencyKey indicates another booking was already created with the key
type ErrDuplicateIdempotencyKey struct {
	Key string
}

func (e ErrDuplicateIdempotencyKey) Error() string {
	return "booking already exists for idempotency key: " + e.Key
}
