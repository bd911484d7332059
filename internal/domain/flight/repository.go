package flight

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DateCount is the number of flights departing on one UTC day
type DateCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// RouteDate groups flights of one route departing on one UTC day
type RouteDate struct {
	OriginCode      string
	OriginCity      string
	DestinationCode string
	DestinationCity string
	Date            string
	Count           int
}

// Repository defines flight persistence operations
type Repository interface {
	Create(ctx context.Context, flight *Flight) error
	GetByID(ctx context.Context, id uuid.UUID) (*Flight, error)

	// LockForUpdate acquires a row lock for the rest of the surrounding transaction
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Flight, error)

	// UpdatePricing persists current_price and the attempt log
	UpdatePricing(ctx context.Context, flight *Flight) error

	// ReserveSeat decrements available_seats only while seats remain
	ReserveSeat(ctx context.Context, id uuid.UUID) error

	// ReleaseSeat increments available_seats up to total_seats and reports whether it changed
	ReleaseSeat(ctx context.Context, id uuid.UUID) (bool, error)

	CountByRoute(ctx context.Context, originCode, destinationCode string) (int64, error)
	SearchByRoute(ctx context.Context, originCode, destinationCode string, from, to time.Time) ([]*Flight, error)
	AvailableDates(ctx context.Context, originCode, destinationCode string) ([]DateCount, error)
	ListRouteDates(ctx context.Context) ([]RouteDate, error)

	// ListRepriceable returns ids of flights whose current price differs from the base price
	ListRepriceable(ctx context.Context, limit int) ([]uuid.UUID, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrFlightNotFound indicates missing flight
type ErrFlightNotFound struct {
	FlightID uuid.UUID
}

func (e ErrFlightNotFound) Error() string {
	return "flight not found: " + e.FlightID.String()
}

// Is implements the errors.Is interface for ErrFlightNotFound
func (e ErrFlightNotFound) Is(target error) bool {
	t, ok := target.(ErrFlightNotFound)
	if !ok {
		return false
	}
	if t.FlightID == uuid.Nil {
		return true
	}
	return e.FlightID == t.FlightID
}

// ErrDuplicateFlightNumber indicates flight number uniqueness violation
type ErrDuplicateFlightNumber struct {
	FlightNumber string
}

func (e ErrDuplicateFlightNumber) Error() string {
	return "flight number already exists: " + e.FlightNumber
}
