package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/flight-booking-engine/internal/api_gateway/middleware"
	"github.com/flight-booking-engine/internal/api_gateway/service"
	bookingsvc "github.com/flight-booking-engine/internal/booking_engine/service"
	"github.com/flight-booking-engine/internal/domain/booking"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IdempotencyKeyHeader lets clients retry create-booking safely
const IdempotencyKeyHeader = "Idempotency-Key"

// IdempotencyGuard rejects a request while another one with the same key is in flight
type IdempotencyGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// BookingHandler handles HTTP requests for booking operations
type BookingHandler struct {
	bookingService bookingsvc.BookingService
	queries        service.BookingQueryService
	guard          IdempotencyGuard
	logger         *slog.Logger
}

// NewBookingHandler creates a new booking handler. guard may be nil.
func NewBookingHandler(logger *slog.Logger, bookingService bookingsvc.BookingService, queries service.BookingQueryService, guard IdempotencyGuard) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		queries:        queries,
		guard:          guard,
		logger:         logger,
	}
}

// Create books a persisted or synthetic flight against the user's wallet.
// A replayed Idempotency-Key answers 200 with the original booking.
func (h *BookingHandler) Create(c *gin.Context) {
	logger := middleware.RequestLogger(c, h.logger)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ref, err := buildFlightRef(req)
	if err != nil {
		respondError(c, logger, "Invalid flight reference", err)
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = correlationID
	}

	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if key != "" && h.guard != nil {
		acquired, err := h.guard.Acquire(c.Request.Context(), key)
		switch {
		case err != nil:
			logger.Warn("Idempotency guard unavailable, relying on the database key", "error", err)
		case !acquired:
			RespondConflict(c, "A request with this Idempotency-Key is already in progress")
			return
		default:
			defer func() {
				_ = h.guard.Release(context.WithoutCancel(c.Request.Context()), key)
			}()
		}
	}

	res, err := h.bookingService.CreateBooking(c.Request.Context(), &bookingsvc.CreateBookingRequest{
		UserEmail: req.UserEmail,
		Flight:    ref,
		Passenger: booking.Passenger{
			Name:  req.Passenger.Name,
			Email: req.Passenger.Email,
			Phone: req.Passenger.Phone,
		},
		SessionID:      sessionID,
		IdempotencyKey: key,
		CorrelationID:  correlationID,
	})
	if err != nil {
		respondError(c, logger, "Failed to create booking", err)
		return
	}

	response := CreateBookingResponse{
		Message:          "Booking created successfully",
		Booking:          mapBookingToResponse(res.Booking, bookedFlightDetails(res)),
		RemainingBalance: res.RemainingBalance,
	}
	if res.Replayed {
		RespondOK(c, response)
		return
	}
	RespondCreated(c, response)
}

// bookedFlightDetails prefers the live flight and falls back to the snapshot stored on the booking
func bookedFlightDetails(res *bookingsvc.BookingResult) *flight.Snapshot {
	if res.Flight != nil {
		details := res.Flight.Snapshot()
		return &details
	}
	return res.Booking.FlightSnapshot
}

// buildFlightRef turns the request's flight id or inline details into a flight reference
func buildFlightRef(req CreateBookingRequest) (flight.Ref, error) {
	hasID := strings.TrimSpace(req.FlightID) != ""
	if hasID == (req.FlightDetails != nil) {
		return flight.Ref{}, flight.ErrInvalidRef
	}

	if hasID {
		id, err := uuid.Parse(req.FlightID)
		if err != nil {
			return flight.Ref{}, flight.ErrInvalidRef
		}
		return flight.PersistedRef(id), nil
	}

	d := req.FlightDetails
	return flight.SyntheticRef(flight.Snapshot{
		Airline:       flight.Airline(d.Airline),
		FlightNumber:  d.FlightNumber,
		Origin:        flight.Airport{Code: d.Origin.Code, Name: d.Origin.Name, City: d.Origin.City},
		Destination:   flight.Airport{Code: d.Destination.Code, Name: d.Destination.Name, City: d.Destination.City},
		DepartureTime: d.DepartureTime.UTC(),
		ArrivalTime:   d.ArrivalTime.UTC(),
		Price:         d.Price,
	}), nil
}

// GetByID retrieves a booking with its flight details, returning 404 if not found
func (h *BookingHandler) GetByID(c *gin.Context) {
	id, ok := h.parseBookingID(c)
	if !ok {
		return
	}

	v, err := h.queries.GetBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, middleware.RequestLogger(c, h.logger), "Failed to get booking", err)
		return
	}

	RespondOK(c, mapBookingToResponse(v.Booking, v.Flight))
}

// ListByUser returns the user's bookings newest first
func (h *BookingHandler) ListByUser(c *gin.Context) {
	views, err := h.queries.ListUserBookings(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, middleware.RequestLogger(c, h.logger), "Failed to list bookings", err)
		return
	}

	RespondOK(c, mapBookingViewsToResponse(views))
}

// Cancel cancels a confirmed booking and refunds the captured price
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := h.parseBookingID(c)
	if !ok {
		return
	}

	res, err := h.bookingService.CancelBooking(c.Request.Context(), id, middleware.GetCorrelationID(c))
	if err != nil {
		respondError(c, middleware.RequestLogger(c, h.logger), "Failed to cancel booking", err)
		return
	}

	RespondOK(c, CancelBookingResponse{
		Message:          "Booking cancelled successfully",
		Booking:          mapBookingToResponse(res.Booking, res.Booking.FlightSnapshot),
		RefundedAmount:   res.RefundedAmount,
		NewWalletBalance: res.NewBalance,
	})
}

// Ticket downloads the booking's e-ticket as a PDF
func (h *BookingHandler) Ticket(c *gin.Context) {
	id, ok := h.parseBookingID(c)
	if !ok {
		return
	}

	file, err := h.queries.RenderTicket(c.Request.Context(), id)
	if err != nil {
		respondError(c, middleware.RequestLogger(c, h.logger), "Failed to render ticket", err)
		return
	}

	RespondAttachment(c, file.FileName, "application/pdf", file.Content)
}

func (h *BookingHandler) parseBookingID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		middleware.RequestLogger(c, h.logger).Warn("Invalid booking ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid booking ID")
		return uuid.Nil, false
	}
	return id, true
}
