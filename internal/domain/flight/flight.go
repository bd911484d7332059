package flight

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNoSeatsAvailable    = errors.New("no seats available on this flight")
	ErrInvalidAirline      = errors.New("airline must be one of Indigo, SpiceJet, Air India, Vistara")
	ErrEmptyFlightNumber   = errors.New("flight number cannot be empty")
	ErrInvalidAirport      = errors.New("origin and destination need a code and a name, and must differ")
	ErrInvalidSchedule     = errors.New("arrival must be after departure")
	ErrBasePriceOutOfRange = errors.New("base price is outside the allowed range")
	ErrInvalidSeatCount    = errors.New("seat capacity must be positive")
)

// DefaultSeatCapacity is used when a flight is created without an explicit capacity
const DefaultSeatCapacity = 60

// Airline is one of the carriers the booking engine sells
type Airline string

const (
	AirlineIndigo   Airline = "Indigo"
	AirlineSpiceJet Airline = "SpiceJet"
	AirlineAirIndia Airline = "Air India"
	AirlineVistara  Airline = "Vistara"
)

// Airlines lists carriers in the order used for synthetic flight rotation
var Airlines = []Airline{AirlineIndigo, AirlineSpiceJet, AirlineAirIndia, AirlineVistara}

var airlinePrefixes = map[Airline]string{
	AirlineIndigo:   "6E",
	AirlineSpiceJet: "SG",
	AirlineAirIndia: "AI",
	AirlineVistara:  "UK",
}

// Valid reports whether a is a known carrier
func (a Airline) Valid() bool {
	_, ok := airlinePrefixes[a]
	return ok
}

// Prefix returns the IATA-style flight number prefix, "FL" for unknown carriers
func (a Airline) Prefix() string {
	if p, ok := airlinePrefixes[a]; ok {
		return p
	}
	return "FL"
}

// Airport identifies one end of a route
type Airport struct {
	Code string `json:"code"`
	Name string `json:"name"`
	City string `json:"city"`
}

// Attempt is one entry of the booking-attempt log used for surge pricing
type Attempt struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
}

// Flight is a scheduled flight with live price and seat inventory.
// Synthetic flights pad search results; they have no ID and are never persisted.
type Flight struct {
	ID             uuid.UUID       `json:"id"`
	Airline        Airline         `json:"airline"`
	FlightNumber   string          `json:"flight_number"`
	Origin         Airport         `json:"origin"`
	Destination    Airport         `json:"destination"`
	DepartureTime  time.Time       `json:"departure_time"`
	ArrivalTime    time.Time       `json:"arrival_time"`
	BasePrice      decimal.Decimal `json:"base_price"`
	CurrentPrice   decimal.Decimal `json:"current_price"`
	TotalSeats     int             `json:"total_seats"`
	AvailableSeats int             `json:"available_seats"`
	Attempts       []Attempt       `json:"-"`
	Synthetic      bool            `json:"synthetic"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// PriceBounds is the inclusive range a base price must fall in
type PriceBounds struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Contains reports whether p lies within the bounds
func (b PriceBounds) Contains(p decimal.Decimal) bool {
	return !p.LessThan(b.Min) && !p.GreaterThan(b.Max)
}

// NewFlight validates the schedule and creates a flight priced at its base price
func NewFlight(airline Airline, flightNumber string, origin, destination Airport, departure, arrival time.Time,
	basePrice decimal.Decimal, seats int, bounds PriceBounds) (*Flight, error) {
	if !airline.Valid() {
		return nil, ErrInvalidAirline
	}
	if strings.TrimSpace(flightNumber) == "" {
		return nil, ErrEmptyFlightNumber
	}
	if origin.Code == "" || origin.Name == "" || destination.Code == "" || destination.Name == "" || origin.Code == destination.Code {
		return nil, ErrInvalidAirport
	}
	if !arrival.After(departure) {
		return nil, ErrInvalidSchedule
	}
	if !bounds.Contains(basePrice) {
		return nil, ErrBasePriceOutOfRange
	}
	if seats == 0 {
		seats = DefaultSeatCapacity
	}
	if seats < 0 {
		return nil, ErrInvalidSeatCount
	}

	now := time.Now().UTC()
	return &Flight{
		ID:             uuid.New(),
		Airline:        airline,
		FlightNumber:   flightNumber,
		Origin:         origin,
		Destination:    destination,
		DepartureTime:  departure.UTC(),
		ArrivalTime:    arrival.UTC(),
		BasePrice:      basePrice,
		CurrentPrice:   basePrice,
		TotalSeats:     seats,
		AvailableSeats: seats,
		Attempts:       []Attempt{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// HasSeats reports whether at least one seat is left
func (f *Flight) HasSeats() bool {
	return f.AvailableSeats > 0
}

// ReserveSeat takes one seat from the inventory
func (f *Flight) ReserveSeat() error {
	if f.AvailableSeats <= 0 {
		return ErrNoSeatsAvailable
	}
	f.AvailableSeats--
	f.UpdatedAt = time.Now().UTC()
	return nil
}

// ReleaseSeat returns one seat, never exceeding the original capacity.
// It reports whether the count changed.
func (f *Flight) ReleaseSeat() bool {
	if f.AvailableSeats >= f.TotalSeats {
		return false
	}
	f.AvailableSeats++
	f.UpdatedAt = time.Now().UTC()
	return true
}

// Duration is the scheduled block time
func (f *Flight) Duration() time.Duration {
	return f.ArrivalTime.Sub(f.DepartureTime)
}

// Snapshot captures the flight details a booking keeps for its ticket
func (f *Flight) Snapshot() Snapshot {
	return Snapshot{
		Airline:       f.Airline,
		FlightNumber:  f.FlightNumber,
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureTime: f.DepartureTime,
		ArrivalTime:   f.ArrivalTime,
		Price:         f.CurrentPrice,
	}
}
