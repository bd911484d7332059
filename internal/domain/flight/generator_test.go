package flight

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Pad(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(42)), bounds)
	template := &Flight{Origin: del, Destination: bom}
	day := time.Date(2025, 5, 15, 17, 45, 0, 0, time.UTC)

	padded := g.Pad(template, 8, day)
	require.Len(t, padded, 8)

	for i, f := range padded {
		assert.True(t, f.Synthetic)
		assert.Equal(t, Airlines[i%len(Airlines)], f.Airline)
		assert.Regexp(t, `^(6E|SG|AI|UK)-\d{4}-\d{4}$`, f.FlightNumber)
		assert.Equal(t, "DEL", f.Origin.Code)
		assert.Equal(t, "BOM", f.Destination.Code)
		assert.Equal(t, i*24/8, f.DepartureTime.Hour())
		assert.Equal(t, 15, f.DepartureTime.Day())
		assert.GreaterOrEqual(t, f.Duration(), time.Hour)
		assert.Less(t, f.Duration(), 3*time.Hour)
		assert.True(t, bounds.Contains(f.BasePrice))
		assert.True(t, f.CurrentPrice.Equal(f.BasePrice))
		assert.GreaterOrEqual(t, f.AvailableSeats, 10)
		assert.Less(t, f.AvailableSeats, 60)
	}

	assert.Nil(t, g.Pad(template, 0, day))
	assert.Nil(t, g.Pad(nil, 3, day))
}

func TestGenerator_Seed(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(7)), bounds)

	flights, err := g.Seed(Airports, 50)
	require.NoError(t, err)
	require.Len(t, flights, 50)

	seen := map[string]bool{}
	for _, f := range flights {
		assert.False(t, seen[f.FlightNumber], "duplicate %s", f.FlightNumber)
		seen[f.FlightNumber] = true
		assert.NotEqual(t, f.Origin.Code, f.Destination.Code)
		assert.True(t, f.DepartureTime.After(time.Now()))
		assert.False(t, f.Synthetic)
	}

	_, err = g.Seed(Airports[:1], 1)
	assert.ErrorIs(t, err, ErrInvalidAirport)
}
