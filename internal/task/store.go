package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned for task ids with no record: unknown, or expired
// past the retention window.
var ErrNotFound = errors.New("task not found")

// Store persists task records with a retention TTL. Save overwrites the
// whole record and refreshes the TTL.
type Store interface {
	Save(ctx context.Context, t *Task, ttl time.Duration) error
	Get(ctx context.Context, taskID string) (*Task, error)
	Delete(ctx context.Context, taskID string) error
}

const recordKeyPrefix = "enhance:task:"

// RedisStore keeps task records in the shared Redis instance.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func recordKey(taskID string) string { return recordKeyPrefix + taskID }

func (s *RedisStore) Save(ctx context.Context, t *Task, ttl time.Duration) error {
	if s.rdb == nil {
		return fmt.Errorf("task store not connected")
	}
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode task %s: %w", t.TaskID, err)
	}
	if err := s.rdb.Set(ctx, recordKey(t.TaskID), data, ttl).Err(); err != nil {
		return fmt.Errorf("store task %s: %w", t.TaskID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, taskID string) (*Task, error) {
	if s.rdb == nil {
		return nil, fmt.Errorf("task store not connected")
	}
	data, err := s.rdb.Get(ctx, recordKey(taskID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load task %s: %w", taskID, err)
	}
	var t Task
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode task %s: %w", taskID, err)
	}
	return &t, nil
}

func (s *RedisStore) Delete(ctx context.Context, taskID string) error {
	if s.rdb == nil {
		return nil
	}
	if err := s.rdb.Del(ctx, recordKey(taskID)).Err(); err != nil {
		return fmt.Errorf("delete task %s: %w", taskID, err)
	}
	return nil
}
