package booking

import (
	"errors"
	"strings"
	"time"

	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrAlreadyCancelled    = errors.New("booking is already cancelled")
	ErrIncompletePassenger = errors.New("passenger name, email and phone are required")
	ErrInvalidPrice        = errors.New("booking price must be positive")
	ErrEmptyTicketNumber   = errors.New("ticket number cannot be empty")
)

// Status of a booking. CONFIRMED moves to CANCELLED once and never back.
type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

// Passenger holds the traveller contact details printed on the ticket
type Passenger struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Validate requires every field
func (p Passenger) Validate() error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Email) == "" || strings.TrimSpace(p.Phone) == "" {
		return ErrIncompletePassenger
	}
	return nil
}

// Booking is a confirmed or cancelled seat purchase.
// Exactly one of FlightID and FlightSnapshot is set. Price never changes after creation.
type Booking struct {
	ID             uuid.UUID        `json:"id"`
	UserID         uuid.UUID        `json:"user_id"`
	UserEmail      string           `json:"user_email"`
	FlightID       *uuid.UUID       `json:"flight_id,omitempty"`
	FlightSnapshot *flight.Snapshot `json:"flight_details,omitempty"`
	Passenger      Passenger        `json:"passenger"`
	Price          decimal.Decimal  `json:"price"`
	TicketNumber   string           `json:"ticket_number"`
	Status         Status           `json:"status"`
	IdempotencyKey string           `json:"-"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// NewBooking creates a CONFIRMED booking for the referenced flight at the captured price
func NewBooking(userID uuid.UUID, userEmail string, ref flight.Ref, passenger Passenger, price decimal.Decimal, ticketNumber string) (*Booking, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if err := passenger.Validate(); err != nil {
		return nil, err
	}
	if !price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if ticketNumber == "" {
		return nil, ErrEmptyTicketNumber
	}

	now := time.Now().UTC()
	b := &Booking{
		ID:           uuid.New(),
		UserID:       userID,
		UserEmail:    userEmail,
		Passenger:    passenger,
		Price:        price,
		TicketNumber: ticketNumber,
		Status:       StatusConfirmed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	switch ref.Kind() {
	case flight.RefPersisted:
		id, _ := ref.ID()
		b.FlightID = &id
	case flight.RefSynthetic:
		snap, _ := ref.Snapshot()
		snap.Price = price
		b.FlightSnapshot = &snap
	}
	return b, nil
}

// FlightRef rebuilds the tagged flight reference from the stored columns
func (b *Booking) FlightRef() flight.Ref {
	if b.FlightID != nil {
		return flight.PersistedRef(*b.FlightID)
	}
	if b.FlightSnapshot != nil {
		return flight.SyntheticRef(*b.FlightSnapshot)
	}
	return flight.Ref{}
}

// Cancel moves the booking to CANCELLED
func (b *Booking) Cancel() error {
	if b.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	b.Status = StatusCancelled
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// IsCancelled reports whether the booking reached its terminal state
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}
