package service

import (
	"context"
	"time"

	"github.com/flight-booking-engine/internal/domain/booking"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/flight-booking-engine/internal/domain/shared"
	"github.com/flight-booking-engine/internal/domain/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BookingService runs the mutating booking workflows. Each workflow is one or
// two Postgres transactions; state changes inside a transaction commit together.
type BookingService interface {
	CreateBooking(ctx context.Context, req *CreateBookingRequest) (*BookingResult, error)
	CancelBooking(ctx context.Context, bookingID uuid.UUID, correlationID string) (*CancelResult, error)
	RecordAttempt(ctx context.Context, flightID uuid.UUID, sessionID string) (*flight.Flight, error)
	AddFunds(ctx context.Context, req *AddFundsRequest) (*WalletResult, error)
}

// CreateBookingRequest carries a validated create-booking call
type CreateBookingRequest struct {
	UserEmail      string
	Flight         flight.Ref
	Passenger      booking.Passenger
	SessionID      string
	IdempotencyKey string
	CorrelationID  string
}

// BookingResult is the outcome of CreateBooking.
// Replayed is set when an earlier request with the same idempotency key created the booking.
type BookingResult struct {
	Booking          *booking.Booking
	Flight           *flight.Flight
	RemainingBalance decimal.Decimal
	Replayed         bool
}

// CancelResult is the outcome of CancelBooking
type CancelResult struct {
	Booking        *booking.Booking
	RefundedAmount decimal.Decimal
	NewBalance     decimal.Decimal
}

// AddFundsRequest credits a user's wallet
type AddFundsRequest struct {
	UserEmail     string
	Amount        decimal.Decimal
	Description   string
	CorrelationID string
}

// WalletResult is the wallet state after a movement
type WalletResult struct {
	User        *user.User
	Transaction *user.Transaction
}

// InventoryManager owns seat counts and the per-flight row lock
type InventoryManager interface {
	GetFlight(ctx context.Context, flightID uuid.UUID) (*flight.Flight, error)
	LockFlight(ctx context.Context, tx pgx.Tx, flightID uuid.UUID) (*flight.Flight, error)
	ReserveSeat(ctx context.Context, tx pgx.Tx, f *flight.Flight) error
	ReleaseSeat(ctx context.Context, tx pgx.Tx, f *flight.Flight) (bool, error)
}

// PricingManager records demand and persists the recomputed price.
// It reports whether the flight is priced at the surge rate afterwards.
type PricingManager interface {
	RecordAttempt(ctx context.Context, tx pgx.Tx, f *flight.Flight, sessionID string, now time.Time) (bool, error)
	Reprice(ctx context.Context, tx pgx.Tx, f *flight.Flight, now time.Time) (bool, error)
}

// WalletManager applies wallet movements under the user row lock
type WalletManager interface {
	GetUser(ctx context.Context, tx pgx.Tx, email string) (*user.User, error)
	LockUser(ctx context.Context, tx pgx.Tx, email string) (*user.User, error)
	LockUserByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*user.User, error)
	Debit(ctx context.Context, tx pgx.Tx, u *user.User, amount decimal.Decimal, description string, bookingID *uuid.UUID) (*user.Transaction, error)
	Credit(ctx context.Context, tx pgx.Tx, u *user.User, amount decimal.Decimal, description string, bookingID *uuid.UUID) (*user.Transaction, error)
}

// BookingManager persists booking records
type BookingManager interface {
	IssueTicketNumber(ctx context.Context) (string, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*booking.Booking, error)
	Create(ctx context.Context, tx pgx.Tx, b *booking.Booking) error
	LockBooking(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*booking.Booking, error)
	MarkCancelled(ctx context.Context, tx pgx.Tx, b *booking.Booking) error
}

// OutboxManager enqueues domain events in the caller's transaction
type OutboxManager interface {
	Enqueue(ctx context.Context, tx pgx.Tx, events ...*shared.Event) error
}

// FlightCacheInvalidator drops cached copies of a flight after its price or seats change
type FlightCacheInvalidator interface {
	InvalidateFlight(ctx context.Context, flightID uuid.UUID) error
}
