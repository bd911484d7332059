package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyGuard(t *testing.T) {
	ctx := context.Background()
	srv, client := newTestClient(t)
	guard := NewIdempotencyGuard(newTestLogger(), client, 30*time.Second)

	ok, err := guard.Acquire(ctx, "req-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = guard.Acquire(ctx, "req-1")
	require.NoError(t, err)
	assert.False(t, ok, "second acquire while in flight")

	ok, err = guard.Acquire(ctx, "req-2")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, guard.Release(ctx, "req-1"))
	ok, err = guard.Acquire(ctx, "req-1")
	require.NoError(t, err)
	assert.True(t, ok)

	srv.FastForward(31 * time.Second)
	ok, err = guard.Acquire(ctx, "req-2")
	require.NoError(t, err)
	assert.True(t, ok, "abandoned keys expire")
}
