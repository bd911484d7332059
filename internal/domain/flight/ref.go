package flight

import (
	"errors"
	"time"

	"github.com/flight-booking-engine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidRef = errors.New("exactly one of flight id or flight details is required")

// Snapshot is a denormalized copy of the flight a booking was made on.
// For synthetic flights it is the only record of the flight.
type Snapshot struct {
	Airline       Airline         `json:"airline"`
	FlightNumber  string          `json:"flight_number"`
	Origin        Airport         `json:"origin"`
	Destination   Airport         `json:"destination"`
	DepartureTime time.Time       `json:"departure_time"`
	ArrivalTime   time.Time       `json:"arrival_time"`
	Price         decimal.Decimal `json:"price"`
}

// Validate checks the caller-supplied details of a synthetic flight
func (s Snapshot) Validate() error {
	if !s.Airline.Valid() {
		return ErrInvalidAirline
	}
	if s.FlightNumber == "" {
		return ErrEmptyFlightNumber
	}
	if s.Origin.Code == "" || s.Destination.Code == "" {
		return ErrInvalidAirport
	}
	if !s.ArrivalTime.After(s.DepartureTime) {
		return ErrInvalidSchedule
	}
	if !shared.ValidAmount(s.Price) {
		return ErrBasePriceOutOfRange
	}
	return nil
}

// Materialize builds an ephemeral flight at a fixed price and nominal capacity
func (s Snapshot) Materialize(seats int) *Flight {
	return &Flight{
		Airline:        s.Airline,
		FlightNumber:   s.FlightNumber,
		Origin:         s.Origin,
		Destination:    s.Destination,
		DepartureTime:  s.DepartureTime,
		ArrivalTime:    s.ArrivalTime,
		BasePrice:      s.Price,
		CurrentPrice:   s.Price,
		TotalSeats:     seats,
		AvailableSeats: seats,
		Synthetic:      true,
	}
}

// RefKind distinguishes the two flight reference variants
type RefKind int

const (
	RefPersisted RefKind = iota + 1
	RefSynthetic
)

func (k RefKind) String() string {
	switch k {
	case RefPersisted:
		return "persisted"
	case RefSynthetic:
		return "synthetic"
	}
	return "invalid"
}

// Ref points a booking at either a stored flight or an inline synthetic snapshot.
// The zero value is invalid.
type Ref struct {
	kind     RefKind
	id       uuid.UUID
	snapshot Snapshot
}

// PersistedRef references a stored flight by id
func PersistedRef(id uuid.UUID) Ref {
	return Ref{kind: RefPersisted, id: id}
}

// SyntheticRef carries the details of a flight that only exists in search results
func SyntheticRef(s Snapshot) Ref {
	return Ref{kind: RefSynthetic, snapshot: s}
}

func (r Ref) Kind() RefKind { return r.kind }

// ID returns the flight id of a persisted reference
func (r Ref) ID() (uuid.UUID, bool) {
	return r.id, r.kind == RefPersisted
}

// Snapshot returns the details of a synthetic reference
func (r Ref) Snapshot() (Snapshot, bool) {
	return r.snapshot, r.kind == RefSynthetic
}

// Validate rejects the zero value, nil ids and malformed snapshots
func (r Ref) Validate() error {
	switch r.kind {
	case RefPersisted:
		if r.id == uuid.Nil {
			return ErrInvalidRef
		}
		return nil
	case RefSynthetic:
		return r.snapshot.Validate()
	}
	return ErrInvalidRef
}
