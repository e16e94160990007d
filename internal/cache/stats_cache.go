package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const statsQueryTimeout = 2 * time.Second

// StatsCache is a best-effort redis cache for the dashboard stat queries.
// A nil client disables it entirely; read and write failures are treated
// as cache misses so redis outages never break the API.
type StatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStatsCache(rdb *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{rdb: rdb, ttl: ttl}
}

func (c *StatsCache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, statsQueryTimeout)
	defer cancel()

	raw, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

func (c *StatsCache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil || c.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, statsQueryTimeout)
	defer cancel()

	b, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
}

func (c *StatsCache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, statsQueryTimeout)
	defer cancel()

	_ = c.rdb.Del(ctx, keys...).Err()
}
