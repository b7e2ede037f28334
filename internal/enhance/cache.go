package enhance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedResult is the JSON value stored per (caller, fingerprint).
type CachedResult struct {
	Enhanced     string   `json:"enhanced"`
	Improvements []string `json:"improvements"`
	Metadata     Metadata `json:"metadata"`
}

// Cache stores enhancement results keyed by caller and fingerprint. Get
// returns (nil, nil) on a miss; errors are advisory and the pipeline treats
// them as misses.
type Cache interface {
	Get(ctx context.Context, callerID, fingerprint string) (*CachedResult, error)
	Set(ctx context.Context, callerID, fingerprint string, res *CachedResult, ttl time.Duration) error
}

// RedisCache stores results in the shared Redis instance.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, callerID, fingerprint string) (*CachedResult, error) {
	if c.rdb == nil {
		return nil, fmt.Errorf("cache not connected")
	}
	data, err := c.rdb.Get(ctx, CacheKey(callerID, fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached result: %w", err)
	}
	var res CachedResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode cached result: %w", err)
	}
	return &res, nil
}

func (c *RedisCache) Set(ctx context.Context, callerID, fingerprint string, res *CachedResult, ttl time.Duration) error {
	if c.rdb == nil {
		return fmt.Errorf("cache not connected")
	}
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := c.rdb.Set(ctx, CacheKey(callerID, fingerprint), data, ttl).Err(); err != nil {
		return fmt.Errorf("store result: %w", err)
	}
	return nil
}
