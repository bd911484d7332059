// Package repricer schedules the sweep that returns expired surge prices to base.
package repricer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flight-booking-engine/internal/config"
	"github.com/flight-booking-engine/internal/platform/metrics"
	"github.com/robfig/cron/v3"
)

// Sweeper reprices up to limit flights and reports how many went back to base price
type Sweeper interface {
	Sweep(ctx context.Context, limit int) (int, error)
}

// Repricer runs the sweep on a cron schedule. A run still in progress when the next
// one is due causes that next run to be skipped.
type Repricer struct {
	cron      *cron.Cron
	sweeper   Sweeper
	schedule  string
	batchSize int
	logger    *slog.Logger
}

func NewRepricer(cfg *config.RepricerConfig, sweeper Sweeper, logger *slog.Logger) *Repricer {
	cronLogger := cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))
	return &Repricer{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		)),
		sweeper:   sweeper,
		schedule:  cfg.Schedule,
		batchSize: cfg.BatchSize,
		logger:    logger,
	}
}

// Start registers the sweep and starts the scheduler. Runs use ctx, so cancelling it
// aborts a sweep in progress.
func (r *Repricer) Start(ctx context.Context) error {
	if _, err := r.cron.AddFunc(r.schedule, func() { r.run(ctx) }); err != nil {
		return fmt.Errorf("invalid repricer schedule %q: %w", r.schedule, err)
	}
	r.cron.Start()
	r.logger.Info("Repricer started", "schedule", r.schedule, "batch_size", r.batchSize)
	return nil
}

// Stop stops scheduling and waits for a running sweep, bounded by ctx
func (r *Repricer) Stop(ctx context.Context) error {
	select {
	case <-r.cron.Stop().Done():
		r.logger.Info("Repricer stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("repricer did not stop in time: %w", ctx.Err())
	}
}

func (r *Repricer) run(ctx context.Context) {
	started := time.Now()
	reset, err := r.sweeper.Sweep(ctx, r.batchSize)
	metrics.FlightsRepriced(reset)
	if err != nil {
		r.logger.Error("Repricing sweep failed", "reset", reset, "error", err)
		return
	}
	if reset > 0 {
		r.logger.Info("Repricing sweep finished", "reset", reset, "elapsed", time.Since(started).String())
		return
	}
	r.logger.Debug("Repricing sweep found nothing to reset", "elapsed", time.Since(started).String())
}
