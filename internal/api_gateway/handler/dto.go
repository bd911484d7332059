package handler

import (
	"time"

	"github.com/shopspring/decimal"
)

// AirportRequest identifies one end of a synthetic flight
type AirportRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
	City string `json:"city"`
}

// FlightDetailsRequest carries a synthetic flight taken from search results
type FlightDetailsRequest struct {
	Airline       string          `json:"airline" binding:"required"`
	FlightNumber  string          `json:"flight_number" binding:"required"`
	Origin        AirportRequest  `json:"origin"`
	Destination   AirportRequest  `json:"destination"`
	DepartureTime time.Time       `json:"departure_time" binding:"required"`
	ArrivalTime   time.Time       `json:"arrival_time" binding:"required"`
	Price         decimal.Decimal `json:"price"`
}

// PassengerRequest holds the traveller printed on the ticket
type PassengerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required"`
}

// CreateBookingRequest represents a request to book a flight.
// Exactly one of FlightID and FlightDetails must be set.
type CreateBookingRequest struct {
	UserEmail     string                `json:"user_email" binding:"required,email"`
	FlightID      string                `json:"flight_id,omitempty"`
	FlightDetails *FlightDetailsRequest `json:"flight_details,omitempty"`
	Passenger     PassengerRequest      `json:"passenger"`
	SessionID     string                `json:"session_id,omitempty"`
}

// RecordAttemptRequest represents a price probe for a flight
type RecordAttemptRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// CreateUserRequest registers a user or fetches the existing one
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// AddFundsRequest tops up a wallet
type AddFundsRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// SearchFlightsQuery holds the raw search parameters
type SearchFlightsQuery struct {
	From       string `form:"from" binding:"required"`
	To         string `form:"to" binding:"required"`
	Date       string `form:"date" binding:"required"`
	Airlines   string `form:"airlines"`
	TimeRange  string `form:"time_range"`
	PriceRange string `form:"price_range"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

// AirportResponse represents an airport in API responses
type AirportResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
	City string `json:"city"`
}

// FlightResponse represents a flight in API responses. Synthetic flights have no id.
type FlightResponse struct {
	ID             string          `json:"id,omitempty"`
	Airline        string          `json:"airline"`
	FlightNumber   string          `json:"flight_number"`
	Origin         AirportResponse `json:"origin"`
	Destination    AirportResponse `json:"destination"`
	DepartureTime  string          `json:"departure_time"`
	ArrivalTime    string          `json:"arrival_time"`
	Duration       string          `json:"duration"`
	BasePrice      decimal.Decimal `json:"base_price"`
	CurrentPrice   decimal.Decimal `json:"current_price"`
	TotalSeats     int             `json:"total_seats"`
	AvailableSeats int             `json:"available_seats"`
	Synthetic      bool            `json:"synthetic"`
}

// FlightDetailsResponse is the flight a booking was made on
type FlightDetailsResponse struct {
	Airline       string          `json:"airline"`
	FlightNumber  string          `json:"flight_number"`
	Origin        AirportResponse `json:"origin"`
	Destination   AirportResponse `json:"destination"`
	DepartureTime string          `json:"departure_time"`
	ArrivalTime   string          `json:"arrival_time"`
}

// DateCountResponse is the number of flights on one day
type DateCountResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// SearchFlightsResponse represents a search result
type SearchFlightsResponse struct {
	Flights        []FlightResponse    `json:"flights"`
	Message        string              `json:"message,omitempty"`
	AvailableDates []DateCountResponse `json:"available_dates,omitempty"`
	TotalFlights   int                 `json:"total_flights,omitempty"`
	FilterApplied  bool                `json:"filter_applied,omitempty"`
}

// RouteResponse represents a served route with its departure days
type RouteResponse struct {
	From     string              `json:"from"`
	To       string              `json:"to"`
	FromCode string              `json:"from_code"`
	ToCode   string              `json:"to_code"`
	Dates    []DateCountResponse `json:"dates"`
}

// RoutesResponse lists the available routes
type RoutesResponse struct {
	Routes  []RouteResponse `json:"routes"`
	Message string          `json:"message"`
}

// RecordAttemptResponse reports the price after a probe
type RecordAttemptResponse struct {
	Message      string          `json:"message"`
	CurrentPrice decimal.Decimal `json:"current_price"`
}

// PassengerResponse represents a passenger in API responses
type PassengerResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID            string                 `json:"id"`
	UserEmail     string                 `json:"user_email"`
	FlightID      string                 `json:"flight_id,omitempty"`
	FlightDetails *FlightDetailsResponse `json:"flight_details,omitempty"`
	Passenger     PassengerResponse      `json:"passenger"`
	Price         decimal.Decimal        `json:"price"`
	TicketNumber  string                 `json:"ticket_number"`
	Status        string                 `json:"status"`
	CreatedAt     string                 `json:"created_at"`
	UpdatedAt     string                 `json:"updated_at"`
}

// CreateBookingResponse is returned by a successful booking
type CreateBookingResponse struct {
	Message          string          `json:"message"`
	Booking          BookingResponse `json:"booking"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// CancelBookingResponse is returned by a successful cancellation
type CancelBookingResponse struct {
	Message          string          `json:"message"`
	Booking          BookingResponse `json:"booking"`
	RefundedAmount   decimal.Decimal `json:"refunded_amount"`
	NewWalletBalance decimal.Decimal `json:"new_wallet_balance"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID            string          `json:"id"`
	Email         string          `json:"email"`
	Name          string          `json:"name"`
	WalletBalance decimal.Decimal `json:"wallet_balance"`
	CreatedAt     string          `json:"created_at"`
}

// WalletResponse reports a wallet balance
type WalletResponse struct {
	WalletBalance decimal.Decimal `json:"wallet_balance"`
}

// AddFundsResponse is returned by a successful top-up
type AddFundsResponse struct {
	Message    string          `json:"message"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

// WalletTransactionResponse represents one wallet ledger record
type WalletTransactionResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	BookingID   string          `json:"booking_id,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

// StatementEntryResponse represents a projected ledger entry
type StatementEntryResponse struct {
	TransactionID string          `json:"transaction_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Description   string          `json:"description"`
	BookingID     string          `json:"booking_id,omitempty"`
	CreatedAt     string          `json:"created_at"`
}
