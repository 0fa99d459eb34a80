package redisstore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"fxconvert/internal/application"
	infraconfig "fxconvert/internal/infrastructure/config"

	"github.com/redis/go-redis/v9"
)

var _ application.RateCache = (*RateCache)(nil)

// RateCache shares memoized rates between processes. A zero TTL keeps keys
// until they are overwritten.
type RateCache struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
}

func New(client *redis.Client, ttl time.Duration) *RateCache {
	return &RateCache{Client: client, TTL: ttl, Prefix: infraconfig.RedisKeyPrefix}
}

func (c *RateCache) Get(ctx context.Context, key string) (float64, bool, error) {
	v, err := c.Client.Get(ctx, c.Prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	rate, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, err
	}
	return rate, true, nil
}

func (c *RateCache) Set(ctx context.Context, key string, rate float64) error {
	return c.Client.Set(ctx, c.Prefix+key, strconv.FormatFloat(rate, 'g', -1, 64), c.TTL).Err()
}

func (c *RateCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}
