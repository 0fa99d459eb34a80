package redisstore_test

import (
	"context"
	"testing"
	"time"

	redisstore "fxconvert/internal/infrastructure/redis"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRateCache_GetSet(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redisstore.New(client, time.Hour)

	ctx := context.Background()
	_, ok, err := cache.Get(ctx, "EURUSD")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Set(ctx, "EURUSD", 1.0837))
	rate, ok, err := cache.Get(ctx, "EURUSD")
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 1.0837, rate, 1e-12)
	require.True(t, mr.Exists("fx:rate:EURUSD"))
	require.NoError(t, cache.Ping(ctx))
}

func TestRateCache_TTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redisstore.New(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "USDEUR", 0.92))
	mr.FastForward(2 * time.Minute)
	_, ok, err := cache.Get(ctx, "USDEUR")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRateCache_CorruptValue(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	require.NoError(t, mr.Set("fx:rate:EURGBP", "not-a-number"))
	cache := redisstore.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 0)
	_, _, err = cache.Get(context.Background(), "EURGBP")
	require.Error(t, err)
}
