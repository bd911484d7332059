package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flight-booking-engine/internal/api_gateway/service"
	bookingsvc "github.com/flight-booking-engine/internal/booking_engine/service"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/flight-booking-engine/internal/domain/ledger"
	"github.com/flight-booking-engine/internal/domain/user"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlightService struct {
	mock.Mock
}

func (m *MockFlightService) Search(ctx context.Context, q service.SearchQuery) (*service.SearchResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SearchResult), args.Error(1)
}

func (m *MockFlightService) GetFlight(ctx context.Context, id uuid.UUID) (*flight.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flight.Flight), args.Error(1)
}

func (m *MockFlightService) AvailableRoutes(ctx context.Context) ([]service.Route, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.Route), args.Error(1)
}

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, req *bookingsvc.CreateBookingRequest) (*bookingsvc.BookingResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookingsvc.BookingResult), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID uuid.UUID, correlationID string) (*bookingsvc.CancelResult, error) {
	args := m.Called(ctx, bookingID, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookingsvc.CancelResult), args.Error(1)
}

func (m *MockBookingService) RecordAttempt(ctx context.Context, flightID uuid.UUID, sessionID string) (*flight.Flight, error) {
	args := m.Called(ctx, flightID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flight.Flight), args.Error(1)
}

func (m *MockBookingService) AddFunds(ctx context.Context, req *bookingsvc.AddFundsRequest) (*bookingsvc.WalletResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookingsvc.WalletResult), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateOrGetUser(ctx context.Context, email, name string) (*user.User, bool, error) {
	args := m.Called(ctx, email, name)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*user.User), args.Bool(1), args.Error(2)
}

func (m *MockUserService) GetUser(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) ListTransactions(ctx context.Context, email string) ([]*user.Transaction, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.Transaction), args.Error(1)
}

func (m *MockUserService) GetStatement(ctx context.Context, email string, page, perPage int) ([]*ledger.Entry, int64, error) {
	args := m.Called(ctx, email, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*ledger.Entry), args.Get(1).(int64), args.Error(2)
}

type MockBookingQueryService struct {
	mock.Mock
}

func (m *MockBookingQueryService) GetBooking(ctx context.Context, id uuid.UUID) (*service.BookingView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BookingView), args.Error(1)
}

func (m *MockBookingQueryService) ListUserBookings(ctx context.Context, email string) ([]*service.BookingView, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.BookingView), args.Error(1)
}

func (m *MockBookingQueryService) RenderTicket(ctx context.Context, id uuid.UUID) (*service.TicketFile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TicketFile), args.Error(1)
}

type MockIdempotencyGuard struct {
	mock.Mock
}

func (m *MockIdempotencyGuard) Acquire(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyGuard) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// envelope decodes the standard response with Data kept raw for a typed second pass
type envelope struct {
	Data          json.RawMessage `json:"data"`
	Error         *ErrorInfo      `json:"error"`
	CorrelationID string          `json:"correlation_id"`
	Meta          *MetaInfo       `json:"meta"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

var (
	delhi  = flight.Airport{Code: "DEL", Name: "Indira Gandhi International Airport", City: "Delhi"}
	mumbai = flight.Airport{Code: "BOM", Name: "Chhatrapati Shivaji International Airport", City: "Mumbai"}
)

func testFlight() *flight.Flight {
	departure := time.Date(2026, 11, 2, 7, 15, 0, 0, time.UTC)
	return &flight.Flight{
		ID:             uuid.New(),
		Airline:        flight.AirlineIndigo,
		FlightNumber:   "6E-2041",
		Origin:         delhi,
		Destination:    mumbai,
		DepartureTime:  departure,
		ArrivalTime:    departure.Add(2*time.Hour + 10*time.Minute),
		BasePrice:      decimal.NewFromInt(2500),
		CurrentPrice:   decimal.NewFromInt(2500),
		TotalSeats:     60,
		AvailableSeats: 42,
	}
}
