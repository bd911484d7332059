package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyKeyPrefix = "booking:idempotency:"

// IdempotencyGuard marks an Idempotency-Key as in flight so a concurrent retry
// of the same create-booking request is rejected instead of racing the first.
type IdempotencyGuard struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewIdempotencyGuard creates a guard whose marks expire after ttl
func NewIdempotencyGuard(logger *slog.Logger, client *redis.Client, ttl time.Duration) *IdempotencyGuard {
	return &IdempotencyGuard{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Acquire returns false when another request already holds key
func (g *IdempotencyGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, idempotencyKeyPrefix+key, time.Now().UTC().Format(time.RFC3339Nano), g.ttl).Result()
	if err != nil {
		g.logger.Error("Failed to acquire idempotency key", "idempotency_key", key, "error", err)
		return false, fmt.Errorf("failed to acquire idempotency key: %w", err)
	}
	return ok, nil
}

// Release frees key once the request finished
func (g *IdempotencyGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, idempotencyKeyPrefix+key).Err(); err != nil {
		g.logger.Warn("Failed to release idempotency key", "idempotency_key", key, "error", err)
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
