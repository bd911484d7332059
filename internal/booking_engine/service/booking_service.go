package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flight-booking-engine/internal/domain/booking"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/flight-booking-engine/internal/domain/shared"
	"github.com/flight-booking-engine/internal/domain/user"
	"github.com/flight-booking-engine/internal/platform/metrics"
	"github.com/flight-booking-engine/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const defaultTopUpDescription = "Wallet top-up"

type BookingServiceImpl struct {
	txRunner       persistence.TxRunner
	inventory      InventoryManager
	pricing        PricingManager
	wallet         WalletManager
	bookings       BookingManager
	outbox         OutboxManager
	cache          FlightCacheInvalidator
	syntheticSeats int
	now            func() time.Time
	logger         *slog.Logger
}

// NewBookingService wires the booking workflows. cache may be nil.
func NewBookingService(
	txRunner persistence.TxRunner,
	inventory InventoryManager,
	pricing PricingManager,
	wallet WalletManager,
	bookings BookingManager,
	outbox OutboxManager,
	cache FlightCacheInvalidator,
	syntheticSeats int,
	logger *slog.Logger,
) *BookingServiceImpl {
	return &BookingServiceImpl{
		txRunner:       txRunner,
		inventory:      inventory,
		pricing:        pricing,
		wallet:         wallet,
		bookings:       bookings,
		outbox:         outbox,
		cache:          cache,
		syntheticSeats: syntheticSeats,
		now:            time.Now,
		logger:         logger,
	}
}

var _ BookingService = (*BookingServiceImpl)(nil)

// CreateBooking books one seat for the user.
//
// For a stored flight the attempt is recorded and committed first, so a failed
// booking still counts toward surge pricing. Seat, wallet, booking and outbox
// changes then commit together in a second transaction. Synthetic flights skip
// the attempt log and the seat inventory.
func (s *BookingServiceImpl) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*BookingResult, error) {
	logger := s.requestLogger(req.CorrelationID)

	if err := req.Flight.Validate(); err != nil {
		return nil, s.fail(logger, "Rejected booking request", err)
	}
	if err := req.Passenger.Validate(); err != nil {
		return nil, s.fail(logger, "Rejected booking request", err)
	}
	req.UserEmail = user.NormalizeEmail(req.UserEmail)

	if req.IdempotencyKey != "" {
		replayed, err := s.replay(ctx, req)
		if err != nil {
			return nil, s.fail(logger, "Idempotent replay failed", err)
		}
		if replayed != nil {
			logger.Info("Replayed booking for idempotency key", "booking_id", replayed.Booking.ID.String())
			return replayed, nil
		}
	}

	var (
		result *BookingResult
		err    error
	)
	kind := metrics.FlightKindPersisted
	switch req.Flight.Kind() {
	case flight.RefSynthetic:
		kind = metrics.FlightKindSynthetic
		result, err = s.bookSynthetic(ctx, req)
	default:
		result, err = s.bookPersisted(ctx, logger, req)
	}

	if err != nil {
		var dup booking.ErrDuplicateIdempotencyKey
		if errors.As(err, &dup) {
			// lost the race against a concurrent request with the same key
			if replayed, rErr := s.replay(ctx, req); rErr == nil && replayed != nil {
				return replayed, nil
			}
		}
		return nil, s.fail(logger, "Booking failed", err)
	}

	metrics.BookingCreated(kind)
	metrics.WalletOperation(string(shared.TransactionTypeDebit))
	logger.Info("Booking confirmed",
		"booking_id", result.Booking.ID.String(),
		"ticket_number", result.Booking.TicketNumber,
		"flight_kind", kind,
		"price", result.Booking.Price.String(),
	)
	return result, nil
}

func (s *BookingServiceImpl) bookPersisted(ctx context.Context, logger *slog.Logger, req *CreateBookingRequest) (*BookingResult, error) {
	flightID, _ := req.Flight.ID()
	now := s.now()

	var surged bool
	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		f, err := s.inventory.LockFlight(ctx, tx, flightID)
		if err != nil {
			return err
		}
		if _, err := s.wallet.GetUser(ctx, tx, req.UserEmail); err != nil {
			return err
		}
		if !f.HasSeats() {
			return flight.ErrNoSeatsAvailable
		}
		surged, err = s.pricing.RecordAttempt(ctx, tx, f, req.SessionID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	if surged {
		metrics.SurgePricingApplied()
	}
	s.invalidate(ctx, logger, flightID)

	ticket, err := s.bookings.IssueTicketNumber(ctx)
	if err != nil {
		return nil, err
	}

	var result *BookingResult
	err = s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		f, err := s.inventory.LockFlight(ctx, tx, flightID)
		if err != nil {
			return err
		}
		if !f.HasSeats() {
			return flight.ErrNoSeatsAvailable
		}
		u, err := s.wallet.LockUser(ctx, tx, req.UserEmail)
		if err != nil {
			return err
		}

		price := f.CurrentPrice
		if !u.CanAfford(price) {
			return user.ErrInsufficientFunds
		}

		b, err := booking.NewBooking(u.ID, u.Email, req.Flight, req.Passenger, price, ticket)
		if err != nil {
			return err
		}
		b.IdempotencyKey = req.IdempotencyKey
		if err := s.bookings.Create(ctx, tx, b); err != nil {
			return err
		}

		debit, err := s.wallet.Debit(ctx, tx, u, price, fmt.Sprintf("Flight booking: %s %s", f.Airline, f.FlightNumber), &b.ID)
		if err != nil {
			return err
		}
		if err := s.inventory.ReserveSeat(ctx, tx, f); err != nil {
			return err
		}
		if err := s.enqueueBookingEvents(ctx, tx, shared.EventBookingConfirmed, b, f.Snapshot(), u, debit, req.CorrelationID); err != nil {
			return err
		}

		result = &BookingResult{Booking: b, Flight: f, RemainingBalance: u.WalletBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, logger, flightID)
	return result, nil
}

func (s *BookingServiceImpl) bookSynthetic(ctx context.Context, req *CreateBookingRequest) (*BookingResult, error) {
	snap, _ := req.Flight.Snapshot()
	f := snap.Materialize(s.syntheticSeats)

	ticket, err := s.bookings.IssueTicketNumber(ctx)
	if err != nil {
		return nil, err
	}

	var result *BookingResult
	err = s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		u, err := s.wallet.LockUser(ctx, tx, req.UserEmail)
		if err != nil {
			return err
		}
		if !u.CanAfford(snap.Price) {
			return user.ErrInsufficientFunds
		}

		b, err := booking.NewBooking(u.ID, u.Email, req.Flight, req.Passenger, snap.Price, ticket)
		if err != nil {
			return err
		}
		b.IdempotencyKey = req.IdempotencyKey
		if err := s.bookings.Create(ctx, tx, b); err != nil {
			return err
		}

		debit, err := s.wallet.Debit(ctx, tx, u, snap.Price, fmt.Sprintf("Flight booking: %s %s", snap.Airline, snap.FlightNumber), &b.ID)
		if err != nil {
			return err
		}
		if err := s.enqueueBookingEvents(ctx, tx, shared.EventBookingConfirmed, b, snap, u, debit, req.CorrelationID); err != nil {
			return err
		}

		result = &BookingResult{Booking: b, Flight: f, RemainingBalance: u.WalletBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// replay returns the booking an earlier request created under the same idempotency key, or nil
func (s *BookingServiceImpl) replay(ctx context.Context, req *CreateBookingRequest) (*BookingResult, error) {
	b, err := s.bookings.FindByIdempotencyKey(ctx, req.IdempotencyKey)
	if errors.Is(err, booking.ErrBookingNotFound{}) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if b.UserEmail != req.UserEmail {
		return nil, ErrIdempotencyKeyReused
	}

	f, err := s.bookedFlight(ctx, b)
	if err != nil {
		return nil, err
	}
	u, err := s.wallet.GetUser(ctx, nil, req.UserEmail)
	if err != nil {
		return nil, err
	}
	return &BookingResult{Booking: b, Flight: f, RemainingBalance: u.WalletBalance, Replayed: true}, nil
}

// bookedFlight returns the flight a stored booking refers to. Synthetic flights are
// rebuilt from the snapshot captured at booking time.
func (s *BookingServiceImpl) bookedFlight(ctx context.Context, b *booking.Booking) (*flight.Flight, error) {
	if b.FlightSnapshot != nil {
		return b.FlightSnapshot.Materialize(s.syntheticSeats), nil
	}
	if b.FlightID == nil {
		return nil, fmt.Errorf("booking %s has no flight reference", b.ID)
	}
	return s.inventory.GetFlight(ctx, *b.FlightID)
}

// CancelBooking cancels a confirmed booking, returns its seat and refunds the captured price.
// Locks are taken in booking, flight, user order.
func (s *BookingServiceImpl) CancelBooking(ctx context.Context, bookingID uuid.UUID, correlationID string) (*CancelResult, error) {
	logger := s.requestLogger(correlationID)

	var result *CancelResult
	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		b, err := s.bookings.LockBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if err := b.Cancel(); err != nil {
			return err
		}

		var details flight.Snapshot
		if b.FlightID != nil {
			f, err := s.inventory.LockFlight(ctx, tx, *b.FlightID)
			if err != nil {
				return err
			}
			released, err := s.inventory.ReleaseSeat(ctx, tx, f)
			if err != nil {
				return err
			}
			if !released {
				logger.Warn("Seat count already at capacity, not released", "flight_id", f.ID.String(), "booking_id", b.ID.String())
			}
			details = f.Snapshot()
		} else if b.FlightSnapshot != nil {
			details = *b.FlightSnapshot
		}

		u, err := s.wallet.LockUserByID(ctx, tx, b.UserID)
		if err != nil {
			return err
		}
		credit, err := s.wallet.Credit(ctx, tx, u, b.Price, "Refund for cancelled booking: "+b.TicketNumber, &b.ID)
		if err != nil {
			return err
		}
		if err := s.bookings.MarkCancelled(ctx, tx, b); err != nil {
			return err
		}
		if err := s.enqueueBookingEvents(ctx, tx, shared.EventBookingCancelled, b, details, u, credit, correlationID); err != nil {
			return err
		}

		result = &CancelResult{Booking: b, RefundedAmount: b.Price, NewBalance: u.WalletBalance}
		return nil
	})
	if err != nil {
		return nil, s.fail(logger, "Cancellation failed", err, "booking_id", bookingID.String())
	}

	if result.Booking.FlightID != nil {
		s.invalidate(ctx, logger, *result.Booking.FlightID)
	}
	metrics.BookingCancelled()
	metrics.WalletOperation(string(shared.TransactionTypeCredit))
	logger.Info("Booking cancelled", "booking_id", bookingID.String(), "refund", result.RefundedAmount.String())
	return result, nil
}

// RecordAttempt logs a booking attempt on a stored flight without booking it
func (s *BookingServiceImpl) RecordAttempt(ctx context.Context, flightID uuid.UUID, sessionID string) (*flight.Flight, error) {
	var (
		f      *flight.Flight
		surged bool
	)
	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		var err error
		f, err = s.inventory.LockFlight(ctx, tx, flightID)
		if err != nil {
			return err
		}
		surged, err = s.pricing.RecordAttempt(ctx, tx, f, sessionID, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	if surged {
		metrics.SurgePricingApplied()
	}
	s.invalidate(ctx, s.logger, flightID)
	return f, nil
}

// AddFunds credits a wallet and records the movement
func (s *BookingServiceImpl) AddFunds(ctx context.Context, req *AddFundsRequest) (*WalletResult, error) {
	logger := s.requestLogger(req.CorrelationID)
	if !shared.ValidAmount(req.Amount) {
		return nil, user.ErrInvalidAmount
	}
	description := req.Description
	if description == "" {
		description = defaultTopUpDescription
	}

	var result *WalletResult
	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		u, err := s.wallet.LockUser(ctx, tx, user.NormalizeEmail(req.UserEmail))
		if err != nil {
			return err
		}
		credit, err := s.wallet.Credit(ctx, tx, u, req.Amount, description, nil)
		if err != nil {
			return err
		}
		event, err := walletEvent(u, credit, req.CorrelationID)
		if err != nil {
			return err
		}
		if err := s.outbox.Enqueue(ctx, tx, event); err != nil {
			return err
		}
		result = &WalletResult{User: u, Transaction: credit}
		return nil
	})
	if err != nil {
		logger.Error("Failed to add funds", "user_email", req.UserEmail, "error", err)
		return nil, err
	}

	metrics.WalletOperation(string(shared.TransactionTypeCredit))
	logger.Info("Wallet credited", "user_id", result.User.ID.String(), "amount", req.Amount.String())
	return result, nil
}

func (s *BookingServiceImpl) enqueueBookingEvents(ctx context.Context, tx pgx.Tx, eventType shared.EventType,
	b *booking.Booking, details flight.Snapshot, u *user.User, movement *user.Transaction, correlationID string) error {
	notice, err := bookingEvent(eventType, b, details, correlationID)
	if err != nil {
		return err
	}
	wallet, err := walletEvent(u, movement, correlationID)
	if err != nil {
		return err
	}
	return s.outbox.Enqueue(ctx, tx, notice, wallet)
}

func (s *BookingServiceImpl) invalidate(ctx context.Context, logger *slog.Logger, flightID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlight(ctx, flightID); err != nil {
		logger.Warn("Failed to invalidate cached flight", "flight_id", flightID.String(), "error", err)
	}
}

// fail counts and logs a failed workflow. Business rejections log at warn level.
func (s *BookingServiceImpl) fail(logger *slog.Logger, msg string, err error, args ...any) error {
	reason := classifyFailure(err)
	metrics.BookingFailed(string(reason))

	args = append(args, "reason", string(reason), "error", err)
	if reason == shared.FailureReasonPersistence {
		logger.Error(msg, args...)
	} else {
		logger.Warn(msg, args...)
	}
	return err
}

func (s *BookingServiceImpl) requestLogger(correlationID string) *slog.Logger {
	if correlationID == "" {
		return s.logger
	}
	return s.logger.With("correlation_id", correlationID)
}
