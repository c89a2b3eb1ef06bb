package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupCache_MarkAndSeen(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewDedupCache(client)
	ctx := context.Background()

	key := "merchant-123:ORDER-001"

	// Seen before mark => false
	seen, err := cache.Seen(ctx, key)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, cache.Mark(ctx, key, 24*time.Hour))

	seen, err = cache.Seen(ctx, key)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestDedupCache_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewDedupCache(client)
	ctx := context.Background()

	key := "merchant-456:ORDER-002"

	require.NoError(t, cache.Mark(ctx, key, 1*time.Second))

	// Fast-forward time in miniredis
	s.FastForward(2 * time.Second)

	seen, err := cache.Seen(ctx, key)
	require.NoError(t, err)
	assert.False(t, seen, "expired key should not count as seen")
}

func TestDedupCache_KeysAreIndependent(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewDedupCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Mark(ctx, "merchant-789:ORDER-003", time.Hour))

	seen, err := cache.Seen(ctx, "merchant-789:ORDER-004")
	require.NoError(t, err)
	assert.False(t, seen)
}
