package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, func() {
		client.Close()
		mr.Close()
	}
}

func TestCounters_IncrAndGet(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	c := NewCounters(client)
	ctx := context.Background()
	d := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, c.IncrClick(ctx, "capital-trust", d))
	}

	n, err := c.GetClicks(ctx, "capital-trust", d)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCounters_MissingKeyIsZero(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	c := NewCounters(client)
	n, err := c.GetClicks(context.Background(), "never-clicked", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCounters_KeysAreDayScoped(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	c := NewCounters(client)
	ctx := context.Background()
	d1 := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	require.NoError(t, c.IncrClick(ctx, "capital-trust", d1))
	require.NoError(t, c.IncrClick(ctx, "capital-trust", d2))
	require.NoError(t, c.IncrClick(ctx, "capital-trust", d2))

	n1, err := c.GetClicks(ctx, "capital-trust", d1)
	require.NoError(t, err)
	n2, err := c.GetClicks(ctx, "capital-trust", d2)
	require.NoError(t, err)

	assert.Equal(t, 1, n1)
	assert.Equal(t, 2, n2)
}
