// Package redis holds the Redis-backed read cache and request guards of the api gateway.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when the key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

const (
	flightKeyPrefix = "flight:"
	routesKey       = "flight:routes"
)

// FlightCache is a read-through cache for flight views and the route catalog.
// Entries are short-lived; every write path invalidates the flight it touched.
type FlightCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewFlightCache creates a flight cache with the given entry lifetime
func NewFlightCache(logger *slog.Logger, client *redis.Client, ttl time.Duration) *FlightCache {
	return &FlightCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// GetFlight returns the cached flight or ErrCacheMiss
func (c *FlightCache) GetFlight(ctx context.Context, id uuid.UUID) (*flight.Flight, error) {
	var f flight.Flight
	if err := c.get(ctx, flightKeyPrefix+id.String(), &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// SetFlight stores a flight view
func (c *FlightCache) SetFlight(ctx context.Context, f *flight.Flight) error {
	return c.set(ctx, flightKeyPrefix+f.ID.String(), f)
}

// InvalidateFlight drops the cached flight and the route catalog
func (c *FlightCache) InvalidateFlight(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, flightKeyPrefix+id.String(), routesKey).Err(); err != nil {
		c.logger.Warn("Failed to invalidate cached flight", "flight_id", id.String(), "error", err)
		return fmt.Errorf("failed to invalidate cached flight: %w", err)
	}
	return nil
}

// GetRoutes returns the cached route/date catalog or ErrCacheMiss
func (c *FlightCache) GetRoutes(ctx context.Context) ([]flight.RouteDate, error) {
	var routes []flight.RouteDate
	if err := c.get(ctx, routesKey, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// SetRoutes stores the route/date catalog
func (c *FlightCache) SetRoutes(ctx context.Context, routes []flight.RouteDate) error {
	return c.set(ctx, routesKey, routes)
}

func (c *FlightCache) get(ctx context.Context, key string, dest any) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		c.logger.Warn("Failed to read cache entry", "key", key, "error", err)
		return fmt.Errorf("failed to read cache entry: %w", err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("Discarding undecodable cache entry", "key", key, "error", err)
		_ = c.client.Del(ctx, key).Err()
		return ErrCacheMiss
	}
	return nil
}

func (c *FlightCache) set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write cache entry", "key", key, "error", err)
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}
