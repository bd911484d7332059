package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flight-booking-engine/internal/booking_engine/service"
	"github.com/flight-booking-engine/internal/config"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PricingManagerImpl applies the surge policy and persists the result
type PricingManagerImpl struct {
	flightRepo flight.Repository
	policy     flight.PricingPolicy
	logger     *slog.Logger
}

func NewPricingManager(flightRepo flight.Repository, policy flight.PricingPolicy, logger *slog.Logger) service.PricingManager {
	return &PricingManagerImpl{
		flightRepo: flightRepo,
		policy:     policy,
		logger:     logger,
	}
}

// PricingPolicyFromConfig builds the surge policy from the booking rules
func PricingPolicyFromConfig(cfg config.BookingConfig) flight.PricingPolicy {
	return flight.PricingPolicy{
		SurgeWindow: cfg.SurgeWindow,
		Retention:   cfg.AttemptRetention,
		Threshold:   cfg.SurgeThreshold,
		Multiplier:  cfg.SurgeMultiplier,
	}
}

// RecordAttempt appends an attempt to the locked flight and persists the new price
func (m *PricingManagerImpl) RecordAttempt(ctx context.Context, tx pgx.Tx, f *flight.Flight, sessionID string, now time.Time) (bool, error) {
	before := f.CurrentPrice
	surged := m.policy.RecordAttempt(f, sessionID, now)
	return surged, m.persist(ctx, tx, f, before)
}

// Reprice drops stale attempts from the locked flight and persists the new price
func (m *PricingManagerImpl) Reprice(ctx context.Context, tx pgx.Tx, f *flight.Flight, now time.Time) (bool, error) {
	before := f.CurrentPrice
	surged := m.policy.Recompute(f, now)
	return surged, m.persist(ctx, tx, f, before)
}

func (m *PricingManagerImpl) persist(ctx context.Context, tx pgx.Tx, f *flight.Flight, before decimal.Decimal) error {
	if err := m.flightRepo.WithTx(tx).UpdatePricing(ctx, f); err != nil {
		m.logger.Error("Failed to persist flight pricing", "flight_id", f.ID.String(), "error", err)
		return fmt.Errorf("failed to update pricing for flight %s: %w", f.ID.String(), err)
	}
	if !before.Equal(f.CurrentPrice) {
		m.logger.Info("Flight repriced",
			"flight_id", f.ID.String(),
			"previous_price", before.String(),
			"current_price", f.CurrentPrice.String(),
			"attempts", len(f.Attempts),
		)
	}
	return nil
}
