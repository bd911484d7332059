package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/flight-booking-engine/internal/domain/booking"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/flight-booking-engine/internal/domain/ledger"
	"github.com/flight-booking-engine/internal/domain/user"
	"github.com/flight-booking-engine/internal/ticket"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) Create(ctx context.Context, f *flight.Flight) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id uuid.UUID) (*flight.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flight.Flight), args.Error(1)
}

func (m *MockFlightRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*flight.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flight.Flight), args.Error(1)
}

func (m *MockFlightRepository) UpdatePricing(ctx context.Context, f *flight.Flight) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFlightRepository) ReserveSeat(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockFlightRepository) ReleaseSeat(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockFlightRepository) CountByRoute(ctx context.Context, origin, destination string) (int64, error) {
	args := m.Called(ctx, origin, destination)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFlightRepository) SearchByRoute(ctx context.Context, origin, destination string, from, to time.Time) ([]*flight.Flight, error) {
	args := m.Called(ctx, origin, destination, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*flight.Flight), args.Error(1)
}

func (m *MockFlightRepository) AvailableDates(ctx context.Context, origin, destination string) ([]flight.DateCount, error) {
	args := m.Called(ctx, origin, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]flight.DateCount), args.Error(1)
}

func (m *MockFlightRepository) ListRouteDates(ctx context.Context) ([]flight.RouteDate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]flight.RouteDate), args.Error(1)
}

func (m *MockFlightRepository) ListRepriceable(ctx context.Context, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockFlightRepository) WithTx(tx pgx.Tx) flight.Repository {
	return m
}

type MockFlightCache struct {
	mock.Mock
}

func (m *MockFlightCache) GetFlight(ctx context.Context, id uuid.UUID) (*flight.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flight.Flight), args.Error(1)
}

func (m *MockFlightCache) SetFlight(ctx context.Context, f *flight.Flight) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFlightCache) GetRoutes(ctx context.Context) ([]flight.RouteDate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]flight.RouteDate), args.Error(1)
}

func (m *MockFlightCache) SetRoutes(ctx context.Context, routes []flight.RouteDate) error {
	return m.Called(ctx, routes).Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) LockForUpdate(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) LockForUpdateByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) UpdateBalance(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) AppendTransaction(ctx context.Context, tx *user.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockUserRepository) ListTransactions(ctx context.Context, userID uuid.UUID) ([]*user.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.Transaction), args.Error(1)
}

func (m *MockUserRepository) WithTx(tx pgx.Tx) user.Repository {
	return m
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockLedgerRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*ledger.Entry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByIdempotencyKey(ctx context.Context, key string) (*booking.Booking, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, b *booking.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBookingRepository) ListByUserEmail(ctx context.Context, email string) ([]*booking.Booking, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) TicketNumberExists(ctx context.Context, ticketNumber string) (bool, error) {
	args := m.Called(ctx, ticketNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) WithTx(tx pgx.Tx) booking.Repository {
	return m
}

type MockFlightReader struct {
	mock.Mock
}

func (m *MockFlightReader) GetFlight(ctx context.Context, id uuid.UUID) (*flight.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flight.Flight), args.Error(1)
}

type MockTicketRenderer struct {
	mock.Mock
}

func (m *MockTicketRenderer) Render(doc ticket.Document) ([]byte, error) {
	args := m.Called(doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

var (
	delhi  = flight.Airport{Code: "DEL", Name: "Indira Gandhi International Airport", City: "Delhi"}
	mumbai = flight.Airport{Code: "BOM", Name: "Chhatrapati Shivaji International Airport", City: "Mumbai"}
)

func testFlight(airline flight.Airline, number string, departure time.Time, price int64) *flight.Flight {
	return &flight.Flight{
		ID:             uuid.New(),
		Airline:        airline,
		FlightNumber:   number,
		Origin:         delhi,
		Destination:    mumbai,
		DepartureTime:  departure,
		ArrivalTime:    departure.Add(2 * time.Hour),
		BasePrice:      decimal.NewFromInt(price),
		CurrentPrice:   decimal.NewFromInt(price),
		TotalSeats:     60,
		AvailableSeats: 60,
	}
}

func testBounds() flight.PriceBounds {
	return flight.PriceBounds{Min: decimal.NewFromInt(2000), Max: decimal.NewFromInt(3000)}
}
