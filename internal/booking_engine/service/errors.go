package service

import (
	"errors"

	"github.com/flight-booking-engine/internal/domain/booking"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/flight-booking-engine/internal/domain/shared"
	"github.com/flight-booking-engine/internal/domain/user"
)

// ErrIdempotencyKeyReused is returned when a key is replayed by a different user
var ErrIdempotencyKeyReused = errors.New("idempotency key was used by another request")

// classifyFailure maps a workflow error onto its failure reason label
func classifyFailure(err error) shared.FailureReason {
	switch {
	case errors.Is(err, flight.ErrFlightNotFound{}):
		return shared.FailureReasonFlightNotFound
	case errors.Is(err, user.ErrUserNotFound{}):
		return shared.FailureReasonUserNotFound
	case errors.Is(err, booking.ErrBookingNotFound{}):
		return shared.FailureReasonBookingNotFound
	case errors.Is(err, flight.ErrNoSeatsAvailable):
		return shared.FailureReasonNoSeats
	case errors.Is(err, user.ErrInsufficientFunds):
		return shared.FailureReasonInsufficientFunds
	case errors.Is(err, booking.ErrAlreadyCancelled):
		return shared.FailureReasonAlreadyCancelled
	case IsInvalidInput(err):
		return shared.FailureReasonInvalidInput
	}
	return shared.FailureReasonPersistence
}

// IsInvalidInput reports whether err is a caller mistake rather than a state conflict
func IsInvalidInput(err error) bool {
	for _, target := range []error{
		flight.ErrInvalidRef,
		flight.ErrEmptyFlightNumber,
		flight.ErrInvalidAirport,
		flight.ErrInvalidSchedule,
		flight.ErrBasePriceOutOfRange,
		booking.ErrIncompletePassenger,
		booking.ErrInvalidPrice,
		user.ErrInvalidAmount,
		ErrIdempotencyKeyReused,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
