package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flight-booking-engine/internal/domain/booking"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/flight-booking-engine/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = `id, user_id, user_email, flight_id, flight_snapshot,
	passenger_name, passenger_email, passenger_phone,
	price, ticket_number, status, idempotency_key, created_at, updated_at`

// BookingRepository implements the booking.Repository interface for PostgreSQL
type BookingRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewBookingRepository creates a new PostgreSQL booking repository
func NewBookingRepository(logger *slog.Logger, db *persistence.PostgresDB) booking.Repository {
	return &BookingRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *BookingRepository) WithTx(tx pgx.Tx) booking.Repository {
	return &BookingRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts a booking. Synthetic flights are stored as a JSONB snapshot
// in place of the flight_id foreign key.
func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	var snapshot []byte
	if b.FlightSnapshot != nil {
		raw, err := json.Marshal(b.FlightSnapshot)
		if err != nil {
			return fmt.Errorf("failed to marshal flight snapshot: %w", err)
		}
		snapshot = raw
	}

	var idempotencyKey *string
	if b.IdempotencyKey != "" {
		idempotencyKey = &b.IdempotencyKey
	}

	_, err := r.querier.Exec(ctx, query,
		b.ID,
		b.UserID,
		b.UserEmail,
		b.FlightID,
		snapshot,
		b.Passenger.Name,
		b.Passenger.Email,
		b.Passenger.Phone,
		b.Price,
		b.TicketNumber,
		string(b.Status),
		idempotencyKey,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "bookings_idempotency_key_key") {
			return booking.ErrDuplicateIdempotencyKey{Key: b.IdempotencyKey}
		}
		r.logger.Error("Failed to create booking",
			"booking_id", b.ID.String(),
			"ticket_number", b.TicketNumber,
			"error", err,
		)
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByID retrieves a booking by id
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, booking.ErrBookingNotFound{BookingID: id}
		}
		r.logger.Error("Failed to get booking", "booking_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return b, nil
}

// GetByIdempotencyKey finds the booking created by an earlier request carrying key
func (r *BookingRepository) GetByIdempotencyKey(ctx context.Context, key string) (*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE idempotency_key = $1`

	b, err := scanBooking(r.querier.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, booking.ErrBookingNotFound{}
		}
		r.logger.Error("Failed to get booking by idempotency key", "error", err)
		return nil, fmt.Errorf("failed to get booking by idempotency key: %w", err)
	}

	return b, nil
}

// LockForUpdate obtains a row lock on the booking
func (r *BookingRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	b, err := scanBooking(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, booking.ErrBookingNotFound{BookingID: id}
		}
		r.logger.Error("Failed to lock booking for update", "booking_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock booking for update: %w", err)
	}

	return b, nil
}

// UpdateStatus persists a status transition
func (r *BookingRepository) UpdateStatus(ctx context.Context, b *booking.Booking) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, string(b.Status), b.UpdatedAt, b.ID)
	if err != nil {
		r.logger.Error("Failed to update booking status",
			"booking_id", b.ID.String(),
			"status", string(b.Status),
			"error", err,
		)
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return booking.ErrBookingNotFound{BookingID: b.ID}
	}

	return nil
}

// ListByUserEmail returns the user's bookings newest first
func (r *BookingRepository) ListByUserEmail(ctx context.Context, email string) ([]*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_email = $1 ORDER BY created_at DESC`

	rows, err := r.querier.Query(ctx, query, email)
	if err != nil {
		r.logger.Error("Failed to list bookings", "email", email, "error", err)
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*booking.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			r.logger.Error("Failed to scan booking", "error", err)
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over bookings", "error", err)
		return nil, fmt.Errorf("error iterating over bookings: %w", err)
	}

	return bookings, nil
}

// TicketNumberExists reports whether a ticket number is already taken
func (r *BookingRepository) TicketNumberExists(ctx context.Context, ticketNumber string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bookings WHERE ticket_number = $1)`

	var exists bool
	if err := r.querier.QueryRow(ctx, query, ticketNumber).Scan(&exists); err != nil {
		r.logger.Error("Failed to check ticket number", "ticket_number", ticketNumber, "error", err)
		return false, fmt.Errorf("failed to check ticket number: %w", err)
	}

	return exists, nil
}

func scanBooking(row rowScanner) (*booking.Booking, error) {
	var (
		b              booking.Booking
		snapshot       []byte
		status         string
		idempotencyKey *string
	)

	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.UserEmail,
		&b.FlightID,
		&snapshot,
		&b.Passenger.Name,
		&b.Passenger.Email,
		&b.Passenger.Phone,
		&b.Price,
		&b.TicketNumber,
		&status,
		&idempotencyKey,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Status = booking.Status(status)
	if idempotencyKey != nil {
		b.IdempotencyKey = *idempotencyKey
	}
	if len(snapshot) > 0 {
		var s flight.Snapshot
		if err := json.Unmarshal(snapshot, &s); err != nil {
			return nil, fmt.Errorf("failed to decode flight snapshot: %w", err)
		}
		b.FlightSnapshot = &s
	}

	return &b, nil
}
