package handler

import (
	"log/slog"

	"github.com/flight-booking-engine/internal/api_gateway/middleware"
	"github.com/flight-booking-engine/internal/api_gateway/service"
	bookingsvc "github.com/flight-booking-engine/internal/booking_engine/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const routesMessage = "Every search is padded to a full page of flights"

// FlightHandler handles HTTP requests for flight search and price probes
type FlightHandler struct {
	flightService  service.FlightService
	bookingService bookingsvc.BookingService
	logger         *slog.Logger
}

// NewFlightHandler creates a new flight handler
func NewFlightHandler(logger *slog.Logger, flightService service.FlightService, bookingService bookingsvc.BookingService) *FlightHandler {
	return &FlightHandler{
		flightService:  flightService,
		bookingService: bookingService,
		logger:         logger,
	}
}

// Search finds the flights of a route on one day. Empty outcomes are 200 with a message.
func (h *FlightHandler) Search(c *gin.Context) {
	logger := middleware.RequestLogger(c, h.logger)

	var params SearchFlightsQuery
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid search parameters", "error", err)
		RespondBadRequest(c, "from, to and date are required")
		return
	}

	query, err := buildSearchQuery(params)
	if err != nil {
		respondError(c, logger, "Invalid search parameters", err)
		return
	}

	res, err := h.flightService.Search(c.Request.Context(), query)
	if err != nil {
		respondError(c, logger, "Failed to search flights", err)
		return
	}

	RespondOK(c, mapSearchResultToResponse(res))
}

func buildSearchQuery(params SearchFlightsQuery) (service.SearchQuery, error) {
	date, err := service.ParseSearchDate(params.Date)
	if err != nil {
		return service.SearchQuery{}, err
	}
	timeRange, err := service.ParseTimeRange(params.TimeRange)
	if err != nil {
		return service.SearchQuery{}, err
	}
	priceRange, err := service.ParsePriceRange(params.PriceRange)
	if err != nil {
		return service.SearchQuery{}, err
	}
	return service.SearchQuery{
		Origin:      params.From,
		Destination: params.To,
		Date:        date,
		Airlines:    service.ParseAirlines(params.Airlines),
		TimeRange:   timeRange,
		PriceRange:  priceRange,
	}, nil
}

// AvailableRoutes lists every route with the days it is served
func (h *FlightHandler) AvailableRoutes(c *gin.Context) {
	routes, err := h.flightService.AvailableRoutes(c.Request.Context())
	if err != nil {
		respondError(c, middleware.RequestLogger(c, h.logger), "Failed to list routes", err)
		return
	}

	RespondOK(c, RoutesResponse{
		Routes:  mapRoutesToResponse(routes),
		Message: routesMessage,
	})
}

// GetByID retrieves a persisted flight, returning 404 if not found.
// Synthetic flights have no id and are never found.
func (h *FlightHandler) GetByID(c *gin.Context) {
	id, ok := h.parseFlightID(c)
	if !ok {
		return
	}

	f, err := h.flightService.GetFlight(c.Request.Context(), id)
	if err != nil {
		respondError(c, middleware.RequestLogger(c, h.logger), "Failed to get flight", err)
		return
	}

	RespondOK(c, mapFlightToResponse(f))
}

// RecordAttempt logs a booking attempt for the flight and returns the recomputed price
func (h *FlightHandler) RecordAttempt(c *gin.Context) {
	id, ok := h.parseFlightID(c)
	if !ok {
		return
	}

	var req RecordAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	f, err := h.bookingService.RecordAttempt(c.Request.Context(), id, req.SessionID)
	if err != nil {
		respondError(c, middleware.RequestLogger(c, h.logger), "Failed to record booking attempt", err)
		return
	}

	RespondOK(c, RecordAttemptResponse{
		Message:      "Booking attempt recorded",
		CurrentPrice: f.CurrentPrice,
	})
}

func (h *FlightHandler) parseFlightID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		middleware.RequestLogger(c, h.logger).Warn("Invalid flight ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid flight ID")
		return uuid.Nil, false
	}
	return id, true
}
