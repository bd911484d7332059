package components

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/flight-booking-engine/internal/domain/booking"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/flight-booking-engine/internal/domain/outbox"
	"github.com/flight-booking-engine/internal/domain/shared"
	"github.com/flight-booking-engine/internal/domain/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockFlightRepo struct {
	mock.Mock
}

func (m *MockFlightRepo) Create(ctx context.Context, f *flight.Flight) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFlightRepo) GetByID(ctx context.Context, id uuid.UUID) (*flight.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flight.Flight), args.Error(1)
}

func (m *MockFlightRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*flight.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flight.Flight), args.Error(1)
}

func (m *MockFlightRepo) UpdatePricing(ctx context.Context, f *flight.Flight) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFlightRepo) ReserveSeat(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockFlightRepo) ReleaseSeat(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockFlightRepo) CountByRoute(ctx context.Context, originCode, destinationCode string) (int64, error) {
	args := m.Called(ctx, originCode, destinationCode)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFlightRepo) SearchByRoute(ctx context.Context, originCode, destinationCode string, from, to time.Time) ([]*flight.Flight, error) {
	args := m.Called(ctx, originCode, destinationCode, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*flight.Flight), args.Error(1)
}

func (m *MockFlightRepo) AvailableDates(ctx context.Context, originCode, destinationCode string) ([]flight.DateCount, error) {
	args := m.Called(ctx, originCode, destinationCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]flight.DateCount), args.Error(1)
}

func (m *MockFlightRepo) ListRouteDates(ctx context.Context) ([]flight.RouteDate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]flight.RouteDate), args.Error(1)
}

func (m *MockFlightRepo) ListRepriceable(ctx context.Context, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockFlightRepo) WithTx(tx pgx.Tx) flight.Repository {
	args := m.Called(tx)
	return args.Get(0).(flight.Repository)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) LockForUpdate(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) LockForUpdateByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) UpdateBalance(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepo) AppendTransaction(ctx context.Context, tx *user.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockUserRepo) ListTransactions(ctx context.Context, userID uuid.UUID) ([]*user.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.Transaction), args.Error(1)
}

func (m *MockUserRepo) WithTx(tx pgx.Tx) user.Repository {
	args := m.Called(tx)
	return args.Get(0).(user.Repository)
}

type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *booking.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepo) GetByIdempotencyKey(ctx context.Context, key string) (*booking.Booking, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepo) UpdateStatus(ctx context.Context, b *booking.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBookingRepo) ListByUserEmail(ctx context.Context, email string) ([]*booking.Booking, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingRepo) TicketNumberExists(ctx context.Context, ticketNumber string) (bool, error) {
	args := m.Called(ctx, ticketNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepo) WithTx(tx pgx.Tx) booking.Repository {
	args := m.Called(tx)
	return args.Get(0).(booking.Repository)
}

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	args := m.Called(tx)
	return args.Get(0).(outbox.Repository)
}

func testFlight(seats, available int) *flight.Flight {
	departure := time.Date(2026, 11, 20, 6, 30, 0, 0, time.UTC)
	return &flight.Flight{
		ID:             uuid.New(),
		Airline:        flight.AirlineIndigo,
		FlightNumber:   "6E2041",
		Origin:         flight.Airport{Code: "DEL", Name: "Indira Gandhi International", City: "Delhi"},
		Destination:    flight.Airport{Code: "BOM", Name: "Chhatrapati Shivaji Maharaj International", City: "Mumbai"},
		DepartureTime:  departure,
		ArrivalTime:    departure.Add(2*time.Hour + 10*time.Minute),
		BasePrice:      decimal.NewFromInt(2500),
		CurrentPrice:   decimal.NewFromInt(2500),
		TotalSeats:     seats,
		AvailableSeats: available,
		Attempts:       []flight.Attempt{},
	}
}

func testUser(balance int64) *user.User {
	return &user.User{
		ID:            uuid.New(),
		Email:         "asha@example.com",
		Name:          "Asha Rao",
		WalletBalance: decimal.NewFromInt(balance),
	}
}

