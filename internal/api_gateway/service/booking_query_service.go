package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/flight-booking-engine/internal/domain/booking"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/flight-booking-engine/internal/domain/user"
	"github.com/flight-booking-engine/internal/ticket"
	"github.com/google/uuid"
)

// ErrFlightDetailsUnavailable is returned when a ticket is requested for a booking whose
// persisted flight no longer exists
var ErrFlightDetailsUnavailable = errors.New("flight details not available for this booking")

// BookingQueryServiceImpl implements the BookingQueryService interface
type BookingQueryServiceImpl struct {
	bookingRepo booking.Repository
	flights     FlightReader
	renderer    TicketRenderer
	logger      *slog.Logger
}

// NewBookingQueryService creates a new booking query service
func NewBookingQueryService(logger *slog.Logger, bookingRepo booking.Repository, flights FlightReader, renderer TicketRenderer) BookingQueryService {
	return &BookingQueryServiceImpl{
		bookingRepo: bookingRepo,
		flights:     flights,
		renderer:    renderer,
		logger:      logger,
	}
}

// GetBooking returns ErrBookingNotFound if the booking doesn't exist
func (s *BookingQueryServiceImpl) GetBooking(ctx context.Context, id uuid.UUID) (*BookingView, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, b, map[uuid.UUID]*flight.Snapshot{})
}

// ListUserBookings returns the user's bookings newest first, each persisted flight resolved once
func (s *BookingQueryServiceImpl) ListUserBookings(ctx context.Context, email string) ([]*BookingView, error) {
	bookings, err := s.bookingRepo.ListByUserEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]*flight.Snapshot)
	views := make([]*BookingView, 0, len(bookings))
	for _, b := range bookings {
		v, err := s.view(ctx, b, seen)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// RenderTicket prints the booking as a PDF e-ticket
func (s *BookingQueryServiceImpl) RenderTicket(ctx context.Context, id uuid.UUID) (*TicketFile, error) {
	v, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Flight == nil {
		return nil, ErrFlightDetailsUnavailable
	}

	doc := ticket.FromBooking(v.Booking, *v.Flight)
	content, err := s.renderer.Render(doc)
	if err != nil {
		s.logger.Error("Failed to render ticket",
			"booking_id", id.String(),
			"ticket_number", v.Booking.TicketNumber,
			"error", err,
		)
		return nil, err
	}

	return &TicketFile{FileName: doc.FileName(), Content: content}, nil
}

// view attaches flight details. Persisted flights are looked up through seen first.
func (s *BookingQueryServiceImpl) view(ctx context.Context, b *booking.Booking, seen map[uuid.UUID]*flight.Snapshot) (*BookingView, error) {
	if b.FlightID == nil {
		return &BookingView{Booking: b, Flight: b.FlightSnapshot}, nil
	}

	id := *b.FlightID
	if snap, ok := seen[id]; ok {
		return &BookingView{Booking: b, Flight: snap}, nil
	}

	f, err := s.flights.GetFlight(ctx, id)
	switch {
	case err == nil:
		snap := f.Snapshot()
		seen[id] = &snap
	case errors.Is(err, flight.ErrFlightNotFound{}):
		s.logger.Warn("Booking references a missing flight",
			"booking_id", b.ID.String(),
			"flight_id", id.String(),
		)
		seen[id] = nil
	default:
		return nil, err
	}
	return &BookingView{Booking: b, Flight: seen[id]}, nil
}
