package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter performs sliding-window admission backed by Redis sorted sets.
// The window store is shared with the upstream session system, so the key
// shape rate_limit:{caller_id}:{path} and float-second scores are fixed.
type Limiter struct {
	store redis.Scripter
	now   func() time.Time
}

// NewLimiter creates a limiter. A nil store means every check admits
// (fail open), matching behavior when Redis is down.
func NewLimiter(store redis.Scripter) *Limiter {
	return &Limiter{store: store, now: time.Now}
}

// slidingWindowScript atomically purges, counts and conditionally records an
// admission so a concurrent burst cannot overshoot the limit.
// KEYS[1] = window key
// ARGV[1] = window start (seconds, float)
// ARGV[2] = now (seconds, float)
// ARGV[3] = limit
// ARGV[4] = key TTL seconds
// Returns: [count_after, 1=admitted/0=rejected]
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local window_start = tonumber(ARGV[1])
local now = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
local count = redis.call('ZCARD', key)

if count < limit then
    redis.call('ZADD', key, now, now .. ':' .. math.random(1000000))
    redis.call('EXPIRE', key, ttl)
    return {count + 1, 1}
end

redis.call('EXPIRE', key, ttl)
return {count, 0}
`)

// Admit checks whether the caller may make another request to path within
// the sliding window. Store errors admit the request and are only logged.
func (l *Limiter) Admit(ctx context.Context, callerID, path string, limit int, period time.Duration) Decision {
	open := Decision{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - 1,
		ResetAt:   l.now().Add(period),
	}
	if l.store == nil {
		return open
	}

	now := l.now()
	nowSecs := float64(now.UnixMicro()) / 1e6
	windowStart := nowSecs - period.Seconds()
	ttlSecs := int64(period.Seconds()) + 10

	key := WindowKey(callerID, path)

	result, err := slidingWindowScript.Run(ctx, l.store, []string{key},
		formatSeconds(windowStart), formatSeconds(nowSecs), limit, ttlSecs,
	).Int64Slice()
	if err != nil || len(result) != 2 {
		slog.Warn("rate limit check failed, admitting", "error", err, "key", key)
		open.Remaining = limit
		return open
	}

	count := result[0]
	allowed := result[1] == 1
	remaining := int64(limit) - count
	if remaining < 0 {
		remaining = 0
	}

	var retryAfter time.Duration
	if !allowed {
		retryAfter = period / 2 // conservative estimate
	}

	return Decision{
		Allowed:    allowed,
		Limit:      limit,
		Remaining:  int(remaining),
		ResetAt:    now.Add(period),
		RetryAfter: retryAfter,
	}
}

// WindowKey builds the shared-store key for one caller and canonical path.
func WindowKey(callerID, path string) string {
	return fmt.Sprintf("rate_limit:%s:%s", callerID, CanonicalPath(path))
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
