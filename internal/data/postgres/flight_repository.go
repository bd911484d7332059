package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/flight-booking-engine/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const flightColumns = `id, airline, flight_number, origin_code, origin_name, origin_city,
		destination_code, destination_name, destination_city, departure_time, arrival_time,
		base_price, current_price, total_seats, available_seats, booking_attempts, created_at, updated_at`

// searchLimit caps the flights loaded for one route and day
const searchLimit = 100

// FlightRepository implements the flight.Repository interface for PostgreSQL
type FlightRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewFlightRepository creates a new PostgreSQL flight repository
func NewFlightRepository(logger *slog.Logger, db *persistence.PostgresDB) flight.Repository {
	return &FlightRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *FlightRepository) WithTx(tx pgx.Tx) flight.Repository {
	return &FlightRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new flight. A taken flight number yields ErrDuplicateFlightNumber.
func (r *FlightRepository) Create(ctx context.Context, f *flight.Flight) error {
	query := `
		INSERT INTO flights (` + flightColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	attempts, err := marshalAttempts(f.Attempts)
	if err != nil {
		return err
	}

	_, err = r.querier.Exec(ctx, query,
		f.ID,
		string(f.Airline),
		f.FlightNumber,
		f.Origin.Code,
		f.Origin.Name,
		f.Origin.City,
		f.Destination.Code,
		f.Destination.Name,
		f.Destination.City,
		f.DepartureTime,
		f.ArrivalTime,
		f.BasePrice,
		f.CurrentPrice,
		f.TotalSeats,
		f.AvailableSeats,
		attempts,
		f.CreatedAt,
		f.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "flights_flight_number_key") {
			return flight.ErrDuplicateFlightNumber{FlightNumber: f.FlightNumber}
		}
		r.logger.Error("Failed to create flight", "flight_number", f.FlightNumber, "error", err)
		return fmt.Errorf("failed to create flight: %w", err)
	}

	return nil
}

// GetByID retrieves a flight by its ID
func (r *FlightRepository) GetByID(ctx context.Context, id uuid.UUID) (*flight.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights WHERE id = $1`

	f, err := scanFlight(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, flight.ErrFlightNotFound{FlightID: id}
		}
		r.logger.Error("Failed to get flight", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}

	return f, nil
}

// LockForUpdate obtains a row lock on the flight and returns its current state.
// Only meaningful inside a transaction.
func (r *FlightRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*flight.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights WHERE id = $1 FOR UPDATE`

	f, err := scanFlight(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, flight.ErrFlightNotFound{FlightID: id}
		}
		r.logger.Error("Failed to lock flight for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock flight for update: %w", err)
	}

	return f, nil
}

// UpdatePricing persists the recomputed price and the pruned attempt log
func (r *FlightRepository) UpdatePricing(ctx context.Context, f *flight.Flight) error {
	query := `
		UPDATE flights
		SET current_price = $1, booking_attempts = $2, updated_at = $3
		WHERE id = $4
	`

	attempts, err := marshalAttempts(f.Attempts)
	if err != nil {
		return err
	}

	result, err := r.querier.Exec(ctx, query, f.CurrentPrice, attempts, f.UpdatedAt, f.ID)
	if err != nil {
		r.logger.Error("Failed to update flight pricing", "id", f.ID.String(), "error", err)
		return fmt.Errorf("failed to update flight pricing: %w", err)
	}

	if result.RowsAffected() == 0 {
		return flight.ErrFlightNotFound{FlightID: f.ID}
	}

	return nil
}

// ReserveSeat decrements the seat count with a conditional update, so the
// count can never go below zero even without a prior row lock.
func (r *FlightRepository) ReserveSeat(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE flights
		SET available_seats = available_seats - 1, updated_at = NOW()
		WHERE id = $1 AND available_seats > 0
	`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to reserve seat", "id", id.String(), "error", err)
		return fmt.Errorf("failed to reserve seat: %w", err)
	}

	if result.RowsAffected() == 0 {
		return flight.ErrNoSeatsAvailable
	}

	return nil
}

// ReleaseSeat gives a seat back without exceeding total_seats
func (r *FlightRepository) ReleaseSeat(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE flights
		SET available_seats = available_seats + 1, updated_at = NOW()
		WHERE id = $1 AND available_seats < total_seats
	`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to release seat", "id", id.String(), "error", err)
		return false, fmt.Errorf("failed to release seat: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

// CountByRoute counts every flight on a route regardless of date
func (r *FlightRepository) CountByRoute(ctx context.Context, originCode, destinationCode string) (int64, error) {
	query := `SELECT COUNT(*) FROM flights WHERE origin_code = $1 AND destination_code = $2`

	var count int64
	if err := r.querier.QueryRow(ctx, query, originCode, destinationCode).Scan(&count); err != nil {
		r.logger.Error("Failed to count route flights", "origin", originCode, "destination", destinationCode, "error", err)
		return 0, fmt.Errorf("failed to count route flights: %w", err)
	}

	return count, nil
}

// SearchByRoute lists flights on a route departing in [from, to), earliest first
func (r *FlightRepository) SearchByRoute(ctx context.Context, originCode, destinationCode string, from, to time.Time) ([]*flight.Flight, error) {
	query := `
		SELECT ` + flightColumns + `
		FROM flights
		WHERE origin_code = $1 AND destination_code = $2
			AND departure_time >= $3 AND departure_time < $4
		ORDER BY departure_time ASC
		LIMIT $5
	`

	rows, err := r.querier.Query(ctx, query, originCode, destinationCode, from, to, searchLimit)
	if err != nil {
		r.logger.Error("Failed to search flights", "origin", originCode, "destination", destinationCode, "error", err)
		return nil, fmt.Errorf("failed to search flights: %w", err)
	}
	defer rows.Close()

	flights := make([]*flight.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			r.logger.Error("Failed to scan flight", "error", err)
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}
		flights = append(flights, f)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over flights", "error", err)
		return nil, fmt.Errorf("error iterating over flights: %w", err)
	}

	return flights, nil
}

// AvailableDates groups a route's flights by UTC departure day, ascending
func (r *FlightRepository) AvailableDates(ctx context.Context, originCode, destinationCode string) ([]flight.DateCount, error) {
	query := `
		SELECT to_char(departure_time AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM flights
		WHERE origin_code = $1 AND destination_code = $2
		GROUP BY day
		ORDER BY day ASC
	`

	rows, err := r.querier.Query(ctx, query, originCode, destinationCode)
	if err != nil {
		r.logger.Error("Failed to get available dates", "origin", originCode, "destination", destinationCode, "error", err)
		return nil, fmt.Errorf("failed to get available dates: %w", err)
	}
	defer rows.Close()

	dates := make([]flight.DateCount, 0)
	for rows.Next() {
		var dc flight.DateCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan available date: %w", err)
		}
		dates = append(dates, dc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over available dates: %w", err)
	}

	return dates, nil
}

// ListRouteDates groups all flights by route and UTC departure day,
// sorted by origin city, destination city and date.
func (r *FlightRepository) ListRouteDates(ctx context.Context) ([]flight.RouteDate, error) {
	query := `
		SELECT origin_code, origin_city, destination_code, destination_city,
			to_char(departure_time AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM flights
		GROUP BY origin_code, origin_city, destination_code, destination_city, day
		ORDER BY origin_city ASC, destination_city ASC, day ASC
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list route dates", "error", err)
		return nil, fmt.Errorf("failed to list route dates: %w", err)
	}
	defer rows.Close()

	routes := make([]flight.RouteDate, 0)
	for rows.Next() {
		var rd flight.RouteDate
		if err := rows.Scan(&rd.OriginCode, &rd.OriginCity, &rd.DestinationCode, &rd.DestinationCity, &rd.Date, &rd.Count); err != nil {
			return nil, fmt.Errorf("failed to scan route date: %w", err)
		}
		routes = append(routes, rd)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over route dates: %w", err)
	}

	return routes, nil
}

// ListRepriceable returns flights still priced away from their base price, least recently touched first
func (r *FlightRepository) ListRepriceable(ctx context.Context, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM flights
		WHERE current_price <> base_price
		ORDER BY updated_at ASC
		LIMIT $1
	`

	rows, err := r.querier.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list repriceable flights", "error", err)
		return nil, fmt.Errorf("failed to list repriceable flights: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan flight id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over flight ids: %w", err)
	}

	return ids, nil
}

func scanFlight(row rowScanner) (*flight.Flight, error) {
	var (
		f        flight.Flight
		airline  string
		attempts []byte
	)
	err := row.Scan(
		&f.ID,
		&airline,
		&f.FlightNumber,
		&f.Origin.Code,
		&f.Origin.Name,
		&f.Origin.City,
		&f.Destination.Code,
		&f.Destination.Name,
		&f.Destination.City,
		&f.DepartureTime,
		&f.ArrivalTime,
		&f.BasePrice,
		&f.CurrentPrice,
		&f.TotalSeats,
		&f.AvailableSeats,
		&attempts,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	f.Airline = flight.Airline(airline)
	f.Attempts = []flight.Attempt{}
	if len(attempts) > 0 {
		if err := json.Unmarshal(attempts, &f.Attempts); err != nil {
			return nil, fmt.Errorf("failed to decode booking attempts: %w", err)
		}
	}
	return &f, nil
}

func marshalAttempts(attempts []flight.Attempt) ([]byte, error) {
	if attempts == nil {
		attempts = []flight.Attempt{}
	}
	b, err := json.Marshal(attempts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode booking attempts: %w", err)
	}
	return b, nil
}
