package components

import (
	"context"
	"errors"
	"testing"

	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestInventoryManager_LockFlight(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the locked flight", func(t *testing.T) {
		repo := &MockFlightRepo{}
		f := testFlight(60, 12)
		repo.On("WithTx", mock.Anything).Return(repo)
		repo.On("LockForUpdate", ctx, f.ID).Return(f, nil)

		got, err := NewInventoryManager(repo, newTestLogger()).LockFlight(ctx, nil, f.ID)

		require.NoError(t, err)
		assert.Same(t, f, got)
		repo.AssertExpectations(t)
	})

	t.Run("passes not found through unwrapped", func(t *testing.T) {
		repo := &MockFlightRepo{}
		id := uuid.New()
		repo.On("WithTx", mock.Anything).Return(repo)
		repo.On("LockForUpdate", ctx, id).Return(nil, flight.ErrFlightNotFound{FlightID: id})

		_, err := NewInventoryManager(repo, newTestLogger()).LockFlight(ctx, nil, id)

		assert.Equal(t, flight.ErrFlightNotFound{FlightID: id}, err)
	})

	t.Run("wraps database errors", func(t *testing.T) {
		repo := &MockFlightRepo{}
		id := uuid.New()
		dbErr := errors.New("connection reset")
		repo.On("WithTx", mock.Anything).Return(repo)
		repo.On("LockForUpdate", ctx, id).Return(nil, dbErr)

		_, err := NewInventoryManager(repo, newTestLogger()).LockFlight(ctx, nil, id)

		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to lock flight")
	})
}

func TestInventoryManager_GetFlight(t *testing.T) {
	ctx := context.Background()

	t.Run("reads without a transaction", func(t *testing.T) {
		repo := &MockFlightRepo{}
		f := testFlight(60, 12)
		repo.On("GetByID", ctx, f.ID).Return(f, nil)

		got, err := NewInventoryManager(repo, newTestLogger()).GetFlight(ctx, f.ID)

		require.NoError(t, err)
		assert.Same(t, f, got)
		repo.AssertNotCalled(t, "WithTx", mock.Anything)
	})

	t.Run("passes not found through unwrapped", func(t *testing.T) {
		repo := &MockFlightRepo{}
		id := uuid.New()
		repo.On("GetByID", ctx, id).Return(nil, flight.ErrFlightNotFound{FlightID: id})

		_, err := NewInventoryManager(repo, newTestLogger()).GetFlight(ctx, id)

		assert.Equal(t, flight.ErrFlightNotFound{FlightID: id}, err)
	})

	t.Run("wraps database errors", func(t *testing.T) {
		repo := &MockFlightRepo{}
		id := uuid.New()
		dbErr := errors.New("too many connections")
		repo.On("GetByID", ctx, id).Return(nil, dbErr)

		_, err := NewInventoryManager(repo, newTestLogger()).GetFlight(ctx, id)

		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to read flight")
	})
}

func TestInventoryManager_ReserveSeat(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements memory and database", func(t *testing.T) {
		repo := &MockFlightRepo{}
		f := testFlight(60, 5)
		repo.On("WithTx", mock.Anything).Return(repo)
		repo.On("ReserveSeat", ctx, f.ID).Return(nil)

		err := NewInventoryManager(repo, newTestLogger()).ReserveSeat(ctx, nil, f)

		require.NoError(t, err)
		assert.Equal(t, 4, f.AvailableSeats)
		repo.AssertExpectations(t)
	})

	t.Run("sold out flight never reaches the database", func(t *testing.T) {
		repo := &MockFlightRepo{}
		f := testFlight(60, 0)

		err := NewInventoryManager(repo, newTestLogger()).ReserveSeat(ctx, nil, f)

		assert.ErrorIs(t, err, flight.ErrNoSeatsAvailable)
		assert.Equal(t, 0, f.AvailableSeats)
		repo.AssertNotCalled(t, "ReserveSeat", mock.Anything, mock.Anything)
	})

	t.Run("database guard rejects the last seat", func(t *testing.T) {
		repo := &MockFlightRepo{}
		f := testFlight(60, 1)
		repo.On("WithTx", mock.Anything).Return(repo)
		repo.On("ReserveSeat", ctx, f.ID).Return(flight.ErrNoSeatsAvailable)

		err := NewInventoryManager(repo, newTestLogger()).ReserveSeat(ctx, nil, f)

		assert.ErrorIs(t, err, flight.ErrNoSeatsAvailable)
	})
}

func TestInventoryManager_ReleaseSeat(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a seat", func(t *testing.T) {
		repo := &MockFlightRepo{}
		f := testFlight(60, 4)
		repo.On("WithTx", mock.Anything).Return(repo)
		repo.On("ReleaseSeat", ctx, f.ID).Return(true, nil)

		released, err := NewInventoryManager(repo, newTestLogger()).ReleaseSeat(ctx, nil, f)

		require.NoError(t, err)
		assert.True(t, released)
		assert.Equal(t, 5, f.AvailableSeats)
	})

	t.Run("full flight stays at capacity", func(t *testing.T) {
		repo := &MockFlightRepo{}
		f := testFlight(60, 60)
		repo.On("WithTx", mock.Anything).Return(repo)
		repo.On("ReleaseSeat", ctx, f.ID).Return(false, nil)

		released, err := NewInventoryManager(repo, newTestLogger()).ReleaseSeat(ctx, nil, f)

		require.NoError(t, err)
		assert.False(t, released)
		assert.Equal(t, 60, f.AvailableSeats)
	})

	t.Run("database error", func(t *testing.T) {
		repo := &MockFlightRepo{}
		f := testFlight(60, 4)
		repo.On("WithTx", mock.Anything).Return(repo)
		repo.On("ReleaseSeat", ctx, f.ID).Return(false, errors.New("timeout"))

		_, err := NewInventoryManager(repo, newTestLogger()).ReleaseSeat(ctx, nil, f)

		assert.Error(t, err)
		assert.Equal(t, 4, f.AvailableSeats)
	})
}
