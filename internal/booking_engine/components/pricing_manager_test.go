package components

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flight-booking-engine/internal/config"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPricingPolicyFromConfig(t *testing.T) {
	policy := PricingPolicyFromConfig(config.BookingConfig{
		SurgeWindow:      5 * time.Minute,
		AttemptRetention: 10 * time.Minute,
		SurgeThreshold:   3,
		SurgeMultiplier:  decimal.RequireFromString("1.1"),
	})

	assert.Equal(t, flight.DefaultPricingPolicy(), policy)
}

func TestPricingManager_RecordAttempt(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 11, 1, 12, 0, 0, 0, time.UTC)

	t.Run("third attempt in the window surges the price", func(t *testing.T) {
		repo := &MockFlightRepo{}
		f := testFlight(60, 10)
		f.Attempts = []flight.Attempt{
			{Timestamp: now.Add(-4 * time.Minute), SessionID: "a"},
			{Timestamp: now.Add(-time.Minute), SessionID: "b"},
		}
		repo.On("WithTx", mock.Anything).Return(repo)
		repo.On("UpdatePricing", ctx, f).Return(nil)

		surged, err := NewPricingManager(repo, flight.DefaultPricingPolicy(), newTestLogger()).RecordAttempt(ctx, nil, f, "c", now)

		require.NoError(t, err)
		assert.True(t, surged)
		assert.True(t, f.CurrentPrice.Equal(decimal.NewFromInt(2750)))
		assert.Len(t, f.Attempts, 3)
		assert.Equal(t, now, f.UpdatedAt)
		repo.AssertExpectations(t)
	})

	t.Run("first attempt keeps the base price", func(t *testing.T) {
		repo := &MockFlightRepo{}
		f := testFlight(60, 10)
		repo.On("WithTx", mock.Anything).Return(repo)
		repo.On("UpdatePricing", ctx, f).Return(nil)

		surged, err := NewPricingManager(repo, flight.DefaultPricingPolicy(), newTestLogger()).RecordAttempt(ctx, nil, f, "a", now)

		require.NoError(t, err)
		assert.False(t, surged)
		assert.True(t, f.CurrentPrice.Equal(f.BasePrice))
	})

	t.Run("persist failure is returned", func(t *testing.T) {
		repo := &MockFlightRepo{}
		f := testFlight(60, 10)
		repo.On("WithTx", mock.Anything).Return(repo)
		repo.On("UpdatePricing", ctx, f).Return(errors.New("disk full"))

		_, err := NewPricingManager(repo, flight.DefaultPricingPolicy(), newTestLogger()).RecordAttempt(ctx, nil, f, "a", now)

		assert.ErrorContains(t, err, "failed to update pricing")
	})
}

func TestPricingManager_Reprice(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 11, 1, 12, 0, 0, 0, time.UTC)

	repo := &MockFlightRepo{}
	f := testFlight(60, 10)
	f.CurrentPrice = decimal.NewFromInt(2750)
	f.Attempts = []flight.Attempt{
		{Timestamp: now.Add(-12 * time.Minute), SessionID: "a"},
		{Timestamp: now.Add(-7 * time.Minute), SessionID: "b"},
		{Timestamp: now.Add(-6 * time.Minute), SessionID: "c"},
	}
	repo.On("WithTx", mock.Anything).Return(repo)
	repo.On("UpdatePricing", ctx, f).Return(nil)

	surged, err := NewPricingManager(repo, flight.DefaultPricingPolicy(), newTestLogger()).Reprice(ctx, nil, f, now)

	require.NoError(t, err)
	assert.False(t, surged)
	assert.True(t, f.CurrentPrice.Equal(f.BasePrice))
	assert.Len(t, f.Attempts, 2, "attempts past retention are pruned")
}
