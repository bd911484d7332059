package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/flight-booking-engine/internal/api_gateway/service"
	bookingsvc "github.com/flight-booking-engine/internal/booking_engine/service"
	"github.com/flight-booking-engine/internal/domain/booking"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/flight-booking-engine/internal/domain/shared"
	"github.com/flight-booking-engine/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// apiError is the HTTP rendering of a service error
type apiError struct {
	status  int
	code    string
	message string
}

// badInput lists caller mistakes that are not covered by the booking engine's own classification
var badInput = []error{
	user.ErrInvalidEmail,
	user.ErrEmptyName,
	service.ErrMissingRoute,
	service.ErrInvalidSearchDate,
	service.ErrInvalidTimeRange,
	service.ErrInvalidPriceRange,
	service.ErrFlightDetailsUnavailable,
}

// classifyError maps not-found errors to 404, rule violations and invalid input to 400,
// and everything else to 500
func classifyError(err error) apiError {
	switch {
	case errors.Is(err, flight.ErrFlightNotFound{}):
		return apiError{http.StatusNotFound, string(shared.FailureReasonFlightNotFound), "Flight not found"}
	case errors.Is(err, user.ErrUserNotFound{}):
		return apiError{http.StatusNotFound, string(shared.FailureReasonUserNotFound), "User not found"}
	case errors.Is(err, booking.ErrBookingNotFound{}):
		return apiError{http.StatusNotFound, string(shared.FailureReasonBookingNotFound), "Booking not found"}
	case errors.Is(err, flight.ErrNoSeatsAvailable):
		return apiError{http.StatusBadRequest, string(shared.FailureReasonNoSeats), err.Error()}
	case errors.Is(err, user.ErrInsufficientFunds):
		return apiError{http.StatusBadRequest, string(shared.FailureReasonInsufficientFunds), err.Error()}
	case errors.Is(err, booking.ErrAlreadyCancelled):
		return apiError{http.StatusBadRequest, string(shared.FailureReasonAlreadyCancelled), err.Error()}
	case bookingsvc.IsInvalidInput(err):
		return apiError{http.StatusBadRequest, string(shared.FailureReasonInvalidInput), err.Error()}
	}
	for _, target := range badInput {
		if errors.Is(err, target) {
			return apiError{http.StatusBadRequest, string(shared.FailureReasonInvalidInput), err.Error()}
		}
	}
	return apiError{http.StatusInternalServerError, codeInternal, "An internal server error occurred"}
}

// respondError writes err in the API envelope. Only server errors are logged here;
// rejected requests are already counted and logged by the services.
func respondError(c *gin.Context, logger *slog.Logger, msg string, err error) {
	e := classifyError(err)
	if e.status >= http.StatusInternalServerError {
		logger.Error(msg, "error", err)
		RespondInternalError(c)
		return
	}
	RespondWithError(c, e.status, e.code, e.message)
}
