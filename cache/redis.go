// Package cache keeps the statistics aggregate in Redis between requests.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"localchef-api/models"

	"github.com/go-redis/redis/v8"
)

const statsKey = "localchef:statistics"

type RedisStats struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStats(addr, password string, ttl time.Duration) *RedisStats {
	return &RedisStats{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       0,
		}),
		ttl: ttl,
	}
}

// Ping checks the connection at startup
func (c *RedisStats) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Get returns the cached aggregate; ok is false on a miss
func (c *RedisStats) Get(ctx context.Context) (*models.Statistics, bool, error) {
	raw, err := c.rdb.Get(ctx, statsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var s models.Statistics
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, err
	}
	return &s, true, nil
}

func (c *RedisStats) Put(ctx context.Context, s *models.Statistics) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, statsKey, raw, c.ttl).Err()
}

func (c *RedisStats) Close() error {
	return c.rdb.Close()
}
