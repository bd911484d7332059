package service

import (
	"context"
	"time"

	"github.com/flight-booking-engine/internal/domain/booking"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/flight-booking-engine/internal/domain/ledger"
	"github.com/flight-booking-engine/internal/domain/user"
	"github.com/flight-booking-engine/internal/ticket"
	"github.com/google/uuid"
)

// FlightService defines the read side of the flight catalog
type FlightService interface {
	// Search returns the flights of a route departing on one UTC day, padded with
	// synthetic flights and narrowed by the optional filters
	Search(ctx context.Context, q SearchQuery) (*SearchResult, error)

	// GetFlight retrieves a persisted flight by its ID
	// Returns ErrFlightNotFound if the flight doesn't exist
	GetFlight(ctx context.Context, id uuid.UUID) (*flight.Flight, error)

	// AvailableRoutes groups persisted flights by route and departure date
	AvailableRoutes(ctx context.Context) ([]Route, error)
}

// UserService defines the interface for user and wallet reads
type UserService interface {
	// CreateOrGetUser returns the existing user for the email, or registers a new one
	// with the initial wallet balance. created reports which happened.
	CreateOrGetUser(ctx context.Context, email, name string) (u *user.User, created bool, err error)

	// GetUser returns ErrUserNotFound if the email is not registered
	GetUser(ctx context.Context, email string) (*user.User, error)

	// ListTransactions returns the wallet ledger newest first
	ListTransactions(ctx context.Context, email string) ([]*user.Transaction, error)

	// GetStatement retrieves a page of the projected wallet ledger
	// Returns entries, total count of all entries, and any error
	GetStatement(ctx context.Context, email string, page, perPage int) ([]*ledger.Entry, int64, error)
}

// BookingQueryService defines booking reads and ticket rendering
type BookingQueryService interface {
	GetBooking(ctx context.Context, id uuid.UUID) (*BookingView, error)

	// ListUserBookings returns the user's bookings newest first
	ListUserBookings(ctx context.Context, email string) ([]*BookingView, error)

	RenderTicket(ctx context.Context, id uuid.UUID) (*TicketFile, error)
}

// FlightCache is the read-through cache in front of the flight repository
type FlightCache interface {
	GetFlight(ctx context.Context, id uuid.UUID) (*flight.Flight, error)
	SetFlight(ctx context.Context, f *flight.Flight) error
	GetRoutes(ctx context.Context) ([]flight.RouteDate, error)
	SetRoutes(ctx context.Context, routes []flight.RouteDate) error
}

// FlightReader resolves the flight a booking references
type FlightReader interface {
	GetFlight(ctx context.Context, id uuid.UUID) (*flight.Flight, error)
}

// TicketRenderer turns a ticket document into a printable file
type TicketRenderer interface {
	Render(doc ticket.Document) ([]byte, error)
}

// SearchQuery is a parsed flight search
type SearchQuery struct {
	Origin      string
	Destination string
	Date        time.Time
	Airlines    []flight.Airline
	TimeRange   TimeRange
	PriceRange  *PriceRange
}

// SearchResult carries the matching flights, or a message with hints when there are none.
// AvailableDates is filled when the route exists but nothing departs on the requested day.
// TotalFlights is the unfiltered count when the filters removed every flight.
type SearchResult struct {
	Flights        []*flight.Flight
	Message        string
	AvailableDates []flight.DateCount
	TotalFlights   int
	FilterApplied  bool
}

// Route is one origin/destination pair with the days it is served
type Route struct {
	FromCity string
	ToCity   string
	FromCode string
	ToCode   string
	Dates    []flight.DateCount
}

// BookingView is a booking with the details of the flight it was made on.
// Flight is nil when a persisted flight no longer exists.
type BookingView struct {
	Booking *booking.Booking
	Flight  *flight.Snapshot
}

// TicketFile is a rendered e-ticket
type TicketFile struct {
	FileName string
	Content  []byte
}
