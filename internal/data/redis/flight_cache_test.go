package redis

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func TestFlightCache_Flight(t *testing.T) {
	ctx := context.Background()
	srv, client := newTestClient(t)
	cache := NewFlightCache(newTestLogger(), client, 30*time.Second)

	f := &flight.Flight{
		ID:             uuid.New(),
		Airline:        flight.AirlineVistara,
		FlightNumber:   "UK-2210",
		Origin:         flight.Airport{Code: "BLR", Name: "Kempegowda International Airport", City: "Bengaluru"},
		Destination:    flight.Airport{Code: "HYD", Name: "Rajiv Gandhi International Airport", City: "Hyderabad"},
		DepartureTime:  time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		ArrivalTime:    time.Date(2025, 6, 1, 10, 15, 0, 0, time.UTC),
		BasePrice:      decimal.NewFromInt(2400),
		CurrentPrice:   decimal.NewFromInt(2640),
		TotalSeats:     60,
		AvailableSeats: 41,
	}

	_, err := cache.GetFlight(ctx, f.ID)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.SetFlight(ctx, f))
	got, err := cache.GetFlight(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.FlightNumber, got.FlightNumber)
	assert.True(t, got.CurrentPrice.Equal(f.CurrentPrice))
	assert.Equal(t, 41, got.AvailableSeats)

	srv.FastForward(31 * time.Second)
	_, err = cache.GetFlight(ctx, f.ID)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestFlightCache_InvalidateDropsRoutes(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	cache := NewFlightCache(newTestLogger(), client, time.Minute)

	routes := []flight.RouteDate{
		{OriginCode: "DEL", OriginCity: "Delhi", DestinationCode: "BOM", DestinationCity: "Mumbai", Date: "2025-05-15", Count: 3},
	}
	require.NoError(t, cache.SetRoutes(ctx, routes))

	got, err := cache.GetRoutes(ctx)
	require.NoError(t, err)
	assert.Equal(t, routes, got)

	id := uuid.New()
	require.NoError(t, cache.SetFlight(ctx, &flight.Flight{ID: id}))
	require.NoError(t, cache.InvalidateFlight(ctx, id))

	_, err = cache.GetRoutes(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = cache.GetFlight(ctx, id)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestFlightCache_CorruptEntryIsAMiss(t *testing.T) {
	ctx := context.Background()
	srv, client := newTestClient(t)
	cache := NewFlightCache(newTestLogger(), client, time.Minute)

	id := uuid.New()
	require.NoError(t, srv.Set(flightKeyPrefix+id.String(), "{not json"))

	_, err := cache.GetFlight(ctx, id)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.False(t, srv.Exists(flightKeyPrefix+id.String()))
}

func TestFlightCache_ServerDown(t *testing.T) {
	ctx := context.Background()
	srv, client := newTestClient(t)
	cache := NewFlightCache(newTestLogger(), client, time.Minute)
	srv.Close()

	_, err := cache.GetFlight(ctx, uuid.New())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
