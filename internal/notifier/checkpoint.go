package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCheckpointKey stores the poller boundary in Redis.
const DefaultCheckpointKey = "fire:notifier:last_check"

// CheckpointStore persists the instant up to which detections were scanned.
type CheckpointStore interface {
	Load(ctx context.Context) (time.Time, bool, error)
	Save(ctx context.Context, at time.Time) error
}

// MemoryCheckpoint keeps the boundary for the life of the process.
type MemoryCheckpoint struct {
	mu  sync.Mutex
	at  time.Time
	set bool
}

func NewMemoryCheckpoint() *MemoryCheckpoint {
	return &MemoryCheckpoint{}
}

func (m *MemoryCheckpoint) Load(context.Context) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.at, m.set, nil
}

func (m *MemoryCheckpoint) Save(_ context.Context, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.at, m.set = at, true
	return nil
}

// redisKV is the subset of the go-redis client used for checkpoints.
type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisCheckpoint survives restarts so alerts are neither replayed nor skipped.
type RedisCheckpoint struct {
	client redisKV
	key    string
}

func NewRedisCheckpoint(client redisKV, key string) *RedisCheckpoint {
	if key == "" {
		key = DefaultCheckpointKey
	}
	return &RedisCheckpoint{client: client, key: key}
}

func (r *RedisCheckpoint) Load(ctx context.Context) (time.Time, bool, error) {
	raw, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to load notifier checkpoint: %w", err)
	}

	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt notifier checkpoint %q: %w", raw, err)
	}
	return at.UTC(), true, nil
}

func (r *RedisCheckpoint) Save(ctx context.Context, at time.Time) error {
	if err := r.client.Set(ctx, r.key, at.UTC().Format(time.RFC3339Nano), 0).Err(); err != nil {
		return fmt.Errorf("failed to save notifier checkpoint: %w", err)
	}
	return nil
}
