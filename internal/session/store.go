package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// The session-issuing upstream writes caller records under this prefix.
// It must not change without coordinating with that system.
const recordKeyPrefix = "user:"

// Record is the caller record stored by the upstream session system.
type Record struct {
	ID        string    `json:"id"`
	Username  string    `json:"username,omitempty"`
	Guest     bool      `json:"is_guest"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Store looks up caller records by session identifier.
type Store interface {
	Lookup(ctx context.Context, id string) (*Record, error)
}

// RedisStore reads caller records from the shared Redis instance.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Lookup returns the record for id, or nil when no session exists.
func (s *RedisStore) Lookup(ctx context.Context, id string) (*Record, error) {
	if s.rdb == nil {
		return nil, fmt.Errorf("session store not connected")
	}
	data, err := s.rdb.Get(ctx, recordKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get caller record %s: %w", id, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode caller record %s: %w", id, err)
	}
	if rec.ID == "" {
		rec.ID = id
	}
	return &rec, nil
}

// ParseTTL parses a duration, additionally accepting a day suffix
// (e.g. "7d") since session lifetimes are usually quoted in days.
func ParseTTL(s string) (time.Duration, error) {
	if len(s) == 0 {
		return 0, fmt.Errorf("empty duration")
	}
	if s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err != nil {
			return 0, fmt.Errorf("parse days: %w", err)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// Save writes a caller record. Production records come from the upstream
// session system; this exists for local development tooling.
func Save(ctx context.Context, rdb *redis.Client, rec *Record, ttl time.Duration) error {
	if rec.ID == "" {
		return fmt.Errorf("caller record needs an id")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode caller record: %w", err)
	}
	if err := rdb.Set(ctx, recordKeyPrefix+rec.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("store caller record %s: %w", rec.ID, err)
	}
	return nil
}
