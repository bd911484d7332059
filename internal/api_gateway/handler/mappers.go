package handler

import (
	"fmt"
	"time"

	"github.com/flight-booking-engine/internal/api_gateway/service"
	"github.com/flight-booking-engine/internal/domain/booking"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/flight-booking-engine/internal/domain/ledger"
	"github.com/flight-booking-engine/internal/domain/user"
)

func mapAirport(a flight.Airport) AirportResponse {
	return AirportResponse{Code: a.Code, Name: a.Name, City: a.City}
}

// mapFlightToResponse maps a flight entity to a flight response DTO
func mapFlightToResponse(f *flight.Flight) FlightResponse {
	resp := FlightResponse{
		Airline:        string(f.Airline),
		FlightNumber:   f.FlightNumber,
		Origin:         mapAirport(f.Origin),
		Destination:    mapAirport(f.Destination),
		DepartureTime:  f.DepartureTime.Format(time.RFC3339),
		ArrivalTime:    f.ArrivalTime.Format(time.RFC3339),
		Duration:       formatDuration(f.Duration()),
		BasePrice:      f.BasePrice,
		CurrentPrice:   f.CurrentPrice,
		TotalSeats:     f.TotalSeats,
		AvailableSeats: f.AvailableSeats,
		Synthetic:      f.Synthetic,
	}
	if !f.Synthetic {
		resp.ID = f.ID.String()
	}
	return resp
}

func mapFlightsToResponse(flights []*flight.Flight) []FlightResponse {
	resp := make([]FlightResponse, 0, len(flights))
	for _, f := range flights {
		resp = append(resp, mapFlightToResponse(f))
	}
	return resp
}

func mapSnapshotToResponse(s *flight.Snapshot) *FlightDetailsResponse {
	if s == nil {
		return nil
	}
	return &FlightDetailsResponse{
		Airline:       string(s.Airline),
		FlightNumber:  s.FlightNumber,
		Origin:        mapAirport(s.Origin),
		Destination:   mapAirport(s.Destination),
		DepartureTime: s.DepartureTime.Format(time.RFC3339),
		ArrivalTime:   s.ArrivalTime.Format(time.RFC3339),
	}
}

func mapDateCounts(dates []flight.DateCount) []DateCountResponse {
	resp := make([]DateCountResponse, 0, len(dates))
	for _, d := range dates {
		resp = append(resp, DateCountResponse{Date: d.Date, Count: d.Count})
	}
	return resp
}

func mapSearchResultToResponse(res *service.SearchResult) SearchFlightsResponse {
	return SearchFlightsResponse{
		Flights:        mapFlightsToResponse(res.Flights),
		Message:        res.Message,
		AvailableDates: mapDateCounts(res.AvailableDates),
		TotalFlights:   res.TotalFlights,
		FilterApplied:  res.FilterApplied,
	}
}

func mapRoutesToResponse(routes []service.Route) []RouteResponse {
	resp := make([]RouteResponse, 0, len(routes))
	for _, r := range routes {
		resp = append(resp, RouteResponse{
			From:     r.FromCity,
			To:       r.ToCity,
			FromCode: r.FromCode,
			ToCode:   r.ToCode,
			Dates:    mapDateCounts(r.Dates),
		})
	}
	return resp
}

// mapBookingToResponse maps a booking and the flight it was made on to a booking response DTO
func mapBookingToResponse(b *booking.Booking, details *flight.Snapshot) BookingResponse {
	resp := BookingResponse{
		ID:            b.ID.String(),
		UserEmail:     b.UserEmail,
		FlightDetails: mapSnapshotToResponse(details),
		Passenger: PassengerResponse{
			Name:  b.Passenger.Name,
			Email: b.Passenger.Email,
			Phone: b.Passenger.Phone,
		},
		Price:        b.Price,
		TicketNumber: b.TicketNumber,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    b.UpdatedAt.Format(time.RFC3339),
	}
	if b.FlightID != nil {
		resp.FlightID = b.FlightID.String()
	}
	return resp
}

func mapBookingViewsToResponse(views []*service.BookingView) []BookingResponse {
	resp := make([]BookingResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, mapBookingToResponse(v.Booking, v.Flight))
	}
	return resp
}

func mapUserToResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:            u.ID.String(),
		Email:         u.Email,
		Name:          u.Name,
		WalletBalance: u.WalletBalance,
		CreatedAt:     u.CreatedAt.Format(time.RFC3339),
	}
}

func mapTransactionsToResponse(txs []*user.Transaction) []WalletTransactionResponse {
	resp := make([]WalletTransactionResponse, 0, len(txs))
	for _, tx := range txs {
		r := WalletTransactionResponse{
			ID:          tx.ID.String(),
			Type:        string(tx.Type),
			Amount:      tx.Amount,
			Description: tx.Description,
			CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
		}
		if tx.BookingID != nil {
			r.BookingID = tx.BookingID.String()
		}
		resp = append(resp, r)
	}
	return resp
}

func mapLedgerEntriesToResponse(entries []*ledger.Entry) []StatementEntryResponse {
	resp := make([]StatementEntryResponse, 0, len(entries))
	for _, e := range entries {
		r := StatementEntryResponse{
			TransactionID: e.TransactionID.String(),
			Type:          string(e.Type),
			Amount:        e.Amount,
			BalanceAfter:  e.BalanceAfter,
			Description:   e.Description,
			CreatedAt:     e.CreatedAt.Format(time.RFC3339),
		}
		if e.BookingID != nil {
			r.BookingID = e.BookingID.String()
		}
		resp = append(resp, r)
	}
	return resp
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
