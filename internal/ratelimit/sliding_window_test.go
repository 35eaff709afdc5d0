package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	t.Cleanup(func() { client.Close() })

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skip("Redis not available, skipping integration test")
	}
	return client
}

func TestSlidingWindowLimiter_Allow(t *testing.T) {
	client := newRedisClient(t)
	ctx := context.Background()

	prefix := "test:focusflow:ratelimit:"
	t.Cleanup(func() { client.Del(ctx, prefix+"user-1", prefix+"user-1:counter") })

	limiter := NewSlidingWindowLimiter(client, Config{RequestsPerWindow: 3, WindowSize: time.Minute}, prefix)

	for i := 0; i < 3; i++ {
		result, err := limiter.Allow(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d", i+1)
		assert.Equal(t, 3-i-1, result.Remaining)
	}

	result, err := limiter.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Positive(t, result.RetryAfter)
}

func TestSlidingWindowLimiter_SeparateKeys(t *testing.T) {
	client := newRedisClient(t)
	ctx := context.Background()

	prefix := "test:focusflow:ratelimit:keys:"
	t.Cleanup(func() {
		client.Del(ctx, prefix+"a", prefix+"a:counter", prefix+"b", prefix+"b:counter")
	})

	limiter := NewSlidingWindowLimiter(client, Config{RequestsPerWindow: 1, WindowSize: time.Minute}, prefix)

	first, err := limiter.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, first.Allowed)

	other, err := limiter.Allow(ctx, "b")
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	again, err := limiter.Allow(ctx, "a")
	require.NoError(t, err)
	assert.False(t, again.Allowed)
}
