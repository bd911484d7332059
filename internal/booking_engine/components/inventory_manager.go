package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flight-booking-engine/internal/booking_engine/service"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InventoryManagerImpl implements the InventoryManager interface
type InventoryManagerImpl struct {
	flightRepo flight.Repository
	logger     *slog.Logger
}

// NewInventoryManager creates a new InventoryManagerImpl
func NewInventoryManager(flightRepo flight.Repository, logger *slog.Logger) service.InventoryManager {
	return &InventoryManagerImpl{
		flightRepo: flightRepo,
		logger:     logger,
	}
}

// LockFlight loads the flight under a row lock held until tx ends
func (m *InventoryManagerImpl) LockFlight(ctx context.Context, tx pgx.Tx, flightID uuid.UUID) (*flight.Flight, error) {
	f, err := m.flightRepo.WithTx(tx).LockForUpdate(ctx, flightID)
	if err != nil {
		if errors.Is(err, flight.ErrFlightNotFound{FlightID: flightID}) {
			m.logger.Warn("Flight not found for lock", "flight_id", flightID.String())
			return nil, err
		}
		m.logger.Error("Failed to lock flight", "flight_id", flightID.String(), "error", err)
		return nil, fmt.Errorf("failed to lock flight %s: %w", flightID.String(), err)
	}
	return f, nil
}

// GetFlight reads the flight without locking it
func (m *InventoryManagerImpl) GetFlight(ctx context.Context, flightID uuid.UUID) (*flight.Flight, error) {
	f, err := m.flightRepo.GetByID(ctx, flightID)
	if err != nil {
		if errors.Is(err, flight.ErrFlightNotFound{FlightID: flightID}) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read flight %s: %w", flightID.String(), err)
	}
	return f, nil
}

// ReserveSeat takes one seat. The row must already be locked by tx.
func (m *InventoryManagerImpl) ReserveSeat(ctx context.Context, tx pgx.Tx, f *flight.Flight) error {
	if err := f.ReserveSeat(); err != nil {
		return err
	}
	if err := m.flightRepo.WithTx(tx).ReserveSeat(ctx, f.ID); err != nil {
		if errors.Is(err, flight.ErrNoSeatsAvailable) {
			return err
		}
		m.logger.Error("Failed to reserve seat", "flight_id", f.ID.String(), "error", err)
		return fmt.Errorf("failed to reserve seat on flight %s: %w", f.ID.String(), err)
	}
	m.logger.Debug("Seat reserved", "flight_id", f.ID.String(), "available_seats", f.AvailableSeats)
	return nil
}

// ReleaseSeat returns one seat unless the flight is already at capacity
func (m *InventoryManagerImpl) ReleaseSeat(ctx context.Context, tx pgx.Tx, f *flight.Flight) (bool, error) {
	released, err := m.flightRepo.WithTx(tx).ReleaseSeat(ctx, f.ID)
	if err != nil {
		m.logger.Error("Failed to release seat", "flight_id", f.ID.String(), "error", err)
		return false, fmt.Errorf("failed to release seat on flight %s: %w", f.ID.String(), err)
	}
	if released {
		f.ReleaseSeat()
	}
	return released, nil
}
