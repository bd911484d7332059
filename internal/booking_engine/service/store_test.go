package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/flight-booking-engine/internal/domain/booking"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/flight-booking-engine/internal/domain/shared"
	"github.com/flight-booking-engine/internal/domain/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// memStore stands in for Postgres. ExecuteTx snapshots every table and
// restores the snapshot when the callback fails.
type memStore struct {
	mu       sync.Mutex
	policy   flight.PricingPolicy
	tickets  *booking.TicketNumberGenerator
	flights  map[uuid.UUID]flight.Flight
	users    map[string]user.User
	bookings map[uuid.UUID]booking.Booking
	ledger   []user.Transaction
	events   []*shared.Event

	failEnqueue error
	commits     int
}

func newMemStore() *memStore {
	return &memStore{
		policy:   flight.DefaultPricingPolicy(),
		tickets:  booking.NewTicketNumberGenerator(),
		flights:  map[uuid.UUID]flight.Flight{},
		users:    map[string]user.User{},
		bookings: map[uuid.UUID]booking.Booking{},
	}
}

type memSnapshot struct {
	flights  map[uuid.UUID]flight.Flight
	users    map[string]user.User
	bookings map[uuid.UUID]booking.Booking
	ledger   []user.Transaction
	events   []*shared.Event
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		flights:  make(map[uuid.UUID]flight.Flight, len(s.flights)),
		users:    make(map[string]user.User, len(s.users)),
		bookings: make(map[uuid.UUID]booking.Booking, len(s.bookings)),
		ledger:   append([]user.Transaction(nil), s.ledger...),
		events:   append([]*shared.Event(nil), s.events...),
	}
	for id, f := range s.flights {
		f.Attempts = append([]flight.Attempt(nil), f.Attempts...)
		snap.flights[id] = f
	}
	for email, u := range s.users {
		snap.users[email] = u
	}
	for id, b := range s.bookings {
		snap.bookings[id] = b
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.flights = snap.flights
	s.users = snap.users
	s.bookings = snap.bookings
	s.ledger = snap.ledger
	s.events = snap.events
}

// memTx marks calls made inside ExecuteTx
type memTx struct {
	pgx.Tx
}

// ExecuteTx serializes transactions, which is stronger than the row locks it replaces
func (s *memStore) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := s.snapshot()
	if err := fn(memTx{}); err != nil {
		s.restore(saved)
		return err
	}
	s.commits++
	return nil
}

func (s *memStore) addFlight(total, available int, basePrice int64) *flight.Flight {
	departure := time.Date(2026, 11, 20, 6, 30, 0, 0, time.UTC)
	f := flight.Flight{
		ID:             uuid.New(),
		Airline:        flight.AirlineIndigo,
		FlightNumber:   "6E2041",
		Origin:         flight.Airport{Code: "DEL", Name: "Indira Gandhi International", City: "Delhi"},
		Destination:    flight.Airport{Code: "BOM", Name: "Chhatrapati Shivaji Maharaj International", City: "Mumbai"},
		DepartureTime:  departure,
		ArrivalTime:    departure.Add(2*time.Hour + 10*time.Minute),
		BasePrice:      decimal.NewFromInt(basePrice),
		CurrentPrice:   decimal.NewFromInt(basePrice),
		TotalSeats:     total,
		AvailableSeats: available,
	}
	s.flights[f.ID] = f
	return &f
}

func (s *memStore) addUser(email string, balance int64) *user.User {
	u, err := user.NewUser(email, "Asha Rao", decimal.NewFromInt(balance))
	if err != nil {
		panic(err)
	}
	s.users[u.Email] = *u
	return u
}

func (s *memStore) flight(id uuid.UUID) flight.Flight { return s.flights[id] }

func (s *memStore) user(email string) user.User { return s.users[email] }

// InventoryManager

func (s *memStore) GetFlight(ctx context.Context, flightID uuid.UUID) (*flight.Flight, error) {
	return s.LockFlight(ctx, nil, flightID)
}

func (s *memStore) LockFlight(ctx context.Context, tx pgx.Tx, flightID uuid.UUID) (*flight.Flight, error) {
	f, ok := s.flights[flightID]
	if !ok {
		return nil, flight.ErrFlightNotFound{FlightID: flightID}
	}
	f.Attempts = append([]flight.Attempt(nil), f.Attempts...)
	return &f, nil
}

func (s *memStore) ReserveSeat(ctx context.Context, tx pgx.Tx, f *flight.Flight) error {
	if err := f.ReserveSeat(); err != nil {
		return err
	}
	stored := s.flights[f.ID]
	stored.AvailableSeats = f.AvailableSeats
	s.flights[f.ID] = stored
	return nil
}

func (s *memStore) ReleaseSeat(ctx context.Context, tx pgx.Tx, f *flight.Flight) (bool, error) {
	stored := s.flights[f.ID]
	if stored.AvailableSeats >= stored.TotalSeats {
		return false, nil
	}
	stored.AvailableSeats++
	s.flights[f.ID] = stored
	f.ReleaseSeat()
	return true, nil
}

// PricingManager

func (s *memStore) RecordAttempt(ctx context.Context, tx pgx.Tx, f *flight.Flight, sessionID string, now time.Time) (bool, error) {
	surged := s.policy.RecordAttempt(f, sessionID, now)
	s.storePricing(f)
	return surged, nil
}

func (s *memStore) Reprice(ctx context.Context, tx pgx.Tx, f *flight.Flight, now time.Time) (bool, error) {
	surged := s.policy.Recompute(f, now)
	s.storePricing(f)
	return surged, nil
}

func (s *memStore) storePricing(f *flight.Flight) {
	stored := s.flights[f.ID]
	stored.CurrentPrice = f.CurrentPrice
	stored.Attempts = append([]flight.Attempt(nil), f.Attempts...)
	s.flights[f.ID] = stored
}

// WalletManager

func (s *memStore) GetUser(ctx context.Context, tx pgx.Tx, email string) (*user.User, error) {
	if tx == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return s.getUser(email)
}

func (s *memStore) getUser(email string) (*user.User, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, user.ErrUserNotFound{Email: email}
	}
	return &u, nil
}

func (s *memStore) LockUser(ctx context.Context, tx pgx.Tx, email string) (*user.User, error) {
	return s.getUser(email)
}

func (s *memStore) LockUserByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*user.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, user.ErrUserNotFound{Email: id.String()}
}

func (s *memStore) Debit(ctx context.Context, tx pgx.Tx, u *user.User, amount decimal.Decimal, description string, bookingID *uuid.UUID) (*user.Transaction, error) {
	record, err := u.Debit(amount, description, bookingID)
	if err != nil {
		return nil, err
	}
	s.users[u.Email] = *u
	s.ledger = append(s.ledger, *record)
	return record, nil
}

func (s *memStore) Credit(ctx context.Context, tx pgx.Tx, u *user.User, amount decimal.Decimal, description string, bookingID *uuid.UUID) (*user.Transaction, error) {
	record, err := u.Credit(amount, description, bookingID)
	if err != nil {
		return nil, err
	}
	s.users[u.Email] = *u
	s.ledger = append(s.ledger, *record)
	return record, nil
}

// BookingManager

func (s *memStore) IssueTicketNumber(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickets.GenerateUnique(ctx, func(ctx context.Context, ticketNumber string) (bool, error) {
		for _, b := range s.bookings {
			if b.TicketNumber == ticketNumber {
				return true, nil
			}
		}
		return false, nil
	})
}

func (s *memStore) FindByIdempotencyKey(ctx context.Context, key string) (*booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.IdempotencyKey == key {
			return &b, nil
		}
	}
	return nil, booking.ErrBookingNotFound{}
}

func (s *memStore) Create(ctx context.Context, tx pgx.Tx, b *booking.Booking) error {
	if b.IdempotencyKey != "" {
		for _, existing := range s.bookings {
			if existing.IdempotencyKey == b.IdempotencyKey {
				return booking.ErrDuplicateIdempotencyKey{Key: b.IdempotencyKey}
			}
		}
	}
	s.bookings[b.ID] = *b
	return nil
}

func (s *memStore) LockBooking(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*booking.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound{BookingID: id}
	}
	return &b, nil
}

func (s *memStore) MarkCancelled(ctx context.Context, tx pgx.Tx, b *booking.Booking) error {
	s.bookings[b.ID] = *b
	return nil
}

// OutboxManager

func (s *memStore) Enqueue(ctx context.Context, tx pgx.Tx, events ...*shared.Event) error {
	if s.failEnqueue != nil {
		return s.failEnqueue
	}
	s.events = append(s.events, events...)
	return nil
}

type recordingCache struct {
	invalidated []uuid.UUID
	err         error
}

func (c *recordingCache) InvalidateFlight(ctx context.Context, flightID uuid.UUID) error {
	c.invalidated = append(c.invalidated, flightID)
	return c.err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errOutboxDown = errors.New("outbox table unavailable")

// FlightLister

func (s *memStore) ListRepriceable(ctx context.Context, limit int) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for id, f := range s.flights {
		if !f.CurrentPrice.Equal(f.BasePrice) && len(ids) < limit {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
