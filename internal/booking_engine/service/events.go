package service

import (
	"github.com/flight-booking-engine/internal/domain/booking"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/flight-booking-engine/internal/domain/shared"
	"github.com/flight-booking-engine/internal/domain/user"
)

func walletEvent(u *user.User, tx *user.Transaction, correlationID string) (*shared.Event, error) {
	eventType := shared.EventWalletCredited
	if tx.Type == shared.TransactionTypeDebit {
		eventType = shared.EventWalletDebited
	}

	return shared.NewEvent(eventType, u.ID, correlationID, shared.WalletMovement{
		TransactionID: tx.ID,
		UserID:        u.ID,
		UserEmail:     u.Email,
		Type:          tx.Type,
		Amount:        tx.Amount,
		BalanceAfter:  u.WalletBalance,
		Description:   tx.Description,
		BookingID:     tx.BookingID,
		CreatedAt:     tx.CreatedAt,
	})
}

// bookingEvent describes b; details is the flight as printed on the ticket
func bookingEvent(eventType shared.EventType, b *booking.Booking, details flight.Snapshot, correlationID string) (*shared.Event, error) {
	return shared.NewEvent(eventType, b.ID, correlationID, shared.BookingNotice{
		BookingID:      b.ID,
		TicketNumber:   b.TicketNumber,
		Status:         string(b.Status),
		UserEmail:      b.UserEmail,
		PassengerName:  b.Passenger.Name,
		PassengerEmail: b.Passenger.Email,
		Airline:        string(details.Airline),
		FlightNumber:   details.FlightNumber,
		OriginCode:     details.Origin.Code,
		DestCode:       details.Destination.Code,
		DepartureTime:  details.DepartureTime,
		Price:          b.Price,
	})
}
