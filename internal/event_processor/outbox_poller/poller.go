package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flight-booking-engine/internal/config"
	"github.com/flight-booking-engine/internal/domain/outbox"
	"github.com/flight-booking-engine/internal/domain/shared"
	"github.com/flight-booking-engine/internal/platform/metrics"
)

// Poller drains pending outbox rows into the event publisher. Each message gets
// maxRetryAttempts publish attempts before it is parked as FAILED_TO_PUBLISH.
type Poller struct {
	outboxRepo       outbox.Repository
	publisher        EventPublisher
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	publisher EventPublisher,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		publisher:        publisher,
		logger:           logger.With("component", "outbox_poller"),
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start polls on every tick and returns when ctx is cancelled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Outbox poller running",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox poller stopped")
			return
		case <-ticker.C:
			if err := p.processPendingMessages(ctx); err != nil {
				p.logger.Error("Outbox batch failed", "error", err)
			}
		}
	}
}

// processPendingMessages publishes one batch in id order. A failing message never
// blocks the rest of the batch.
func (p *Poller) processPendingMessages(ctx context.Context) error {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	if len(messages) == 0 {
		return nil
	}

	p.logger.Debug("Publishing outbox batch", "count", len(messages))

	published := 0
	for _, msg := range messages {
		err := p.publisher.Publish(ctx, msg)
		if err == nil {
			published++
			metrics.OutboxMessage(string(msg.EventType), metrics.OutboxPublished)
			continue
		}
		p.handleFailure(ctx, msg, err)
	}

	if published < len(messages) {
		p.logger.Warn("Outbox batch partially published", "published", published, "total", len(messages))
	}
	return nil
}

func (p *Poller) handleFailure(ctx context.Context, msg *outbox.Message, publishErr error) {
	logger := p.logger.With("outbox_id", msg.ID, "event_id", msg.EventID.String(), "event_type", msg.EventType)

	// the publisher already parked it
	if errors.Is(publishErr, ErrUndeliverable) {
		logger.Error("Outbox message parked", "error", publishErr)
		metrics.OutboxMessage(string(msg.EventType), metrics.OutboxParked)
		return
	}

	attempts := msg.Attempts + 1
	logger.Error("Failed to publish outbox message", "attempt", attempts, "error", publishErr)

	if err := p.outboxRepo.IncrementAttempts(ctx, msg.ID); err != nil {
		logger.Error("Failed to record publish attempt", "error", err)
		return
	}

	if attempts < p.maxRetryAttempts {
		metrics.OutboxMessage(string(msg.EventType), metrics.OutboxRetried)
		return
	}

	logger.Warn("Retry budget exhausted, parking outbox message", "attempts", attempts)
	if err := p.outboxRepo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish); err != nil {
		logger.Error("Failed to park outbox message", "error", err)
		return
	}
	metrics.OutboxMessage(string(msg.EventType), metrics.OutboxParked)
}
