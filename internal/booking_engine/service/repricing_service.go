package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/flight-booking-engine/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FlightLister finds flights whose price may have decayed back toward base
type FlightLister interface {
	ListRepriceable(ctx context.Context, limit int) ([]uuid.UUID, error)
}

// RepricingService recomputes surge prices of flights nobody has tried to book
// recently, so an expired surge does not wait for the next attempt.
type RepricingService struct {
	txRunner  persistence.TxRunner
	flights   FlightLister
	inventory InventoryManager
	pricing   PricingManager
	cache     FlightCacheInvalidator
	now       func() time.Time
	logger    *slog.Logger
}

func NewRepricingService(
	txRunner persistence.TxRunner,
	flights FlightLister,
	inventory InventoryManager,
	pricing PricingManager,
	cache FlightCacheInvalidator,
	logger *slog.Logger,
) *RepricingService {
	return &RepricingService{
		txRunner:  txRunner,
		flights:   flights,
		inventory: inventory,
		pricing:   pricing,
		cache:     cache,
		now:       time.Now,
		logger:    logger,
	}
}

// Sweep reprices up to limit flights and returns how many dropped back to base price.
// A flight that fails is logged and skipped.
func (s *RepricingService) Sweep(ctx context.Context, limit int) (int, error) {
	ids, err := s.flights.ListRepriceable(ctx, limit)
	if err != nil {
		return 0, err
	}

	reset := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return reset, ctx.Err()
		}

		var surged bool
		err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
			f, err := s.inventory.LockFlight(ctx, tx, id)
			if err != nil {
				return err
			}
			surged, err = s.pricing.Reprice(ctx, tx, f, s.now())
			return err
		})
		if err != nil {
			if !errors.Is(err, flight.ErrFlightNotFound{}) {
				s.logger.Error("Failed to reprice flight", "flight_id", id.String(), "error", err)
			}
			continue
		}
		if surged {
			continue
		}

		reset++
		if s.cache != nil {
			if err := s.cache.InvalidateFlight(ctx, id); err != nil {
				s.logger.Warn("Failed to invalidate cached flight", "flight_id", id.String(), "error", err)
			}
		}
	}

	if len(ids) > 0 {
		s.logger.Info("Repricing sweep finished", "checked", len(ids), "reset", reset)
	}
	return reset, nil
}
