package throttle

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix prefixes the Redis key holding a shop's throttle state.
const KeyPrefix = "feed:throttle:"

// Key returns the store key for a shop domain.
func Key(shop string) string {
	return KeyPrefix + shop
}

// Store persists throttle state by key.
type Store interface {
	// Get returns the stored state, or nil when none exists.
	Get(ctx context.Context, key string) (*State, error)

	// Set replaces the stored state.
	Set(ctx context.Context, key string, state *State) error
}

// MemoryStore keeps state in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]State
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.states[key]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, key string, state *State) error {
	if state == nil {
		return fmt.Errorf("throttle state cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[key] = *state
	return nil
}

// Redis hash fields for throttle state storage.
const (
	fieldMaximumAvailable   = "maximum_available"
	fieldCurrentlyAvailable = "currently_available"
	fieldRestoreRate        = "restore_rate"
	fieldLastUpdate         = "last_update"
)

// RedisStore keeps state in a Redis hash so several processes share it.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisStore creates a Redis-backed store. Keys expire after ttl;
// a ttl of 0 keeps them forever.
func NewRedisStore(redisClient *redis.Client, ttl time.Duration) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{redis: redisClient, ttl: ttl}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (*State, error) {
	fields, err := s.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("get throttle state: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	state := &State{}
	if state.MaximumAvailable, err = parseFloatField(fields, fieldMaximumAvailable); err != nil {
		return nil, err
	}
	if state.CurrentlyAvailable, err = parseFloatField(fields, fieldCurrentlyAvailable); err != nil {
		return nil, err
	}
	if state.RestoreRate, err = parseFloatField(fields, fieldRestoreRate); err != nil {
		return nil, err
	}

	nanos, err := strconv.ParseInt(fields[fieldLastUpdate], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", fieldLastUpdate, err)
	}
	state.LastUpdate = time.Unix(0, nanos)

	return state, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, state *State) error {
	if state == nil {
		return fmt.Errorf("throttle state cannot be nil")
	}

	pipe := s.redis.Pipeline()
	pipe.HSet(ctx, key,
		fieldMaximumAvailable, formatFloat(state.MaximumAvailable),
		fieldCurrentlyAvailable, formatFloat(state.CurrentlyAvailable),
		fieldRestoreRate, formatFloat(state.RestoreRate),
		fieldLastUpdate, strconv.FormatInt(state.LastUpdate.UnixNano(), 10),
	)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store throttle state in redis: %w", err)
	}
	return nil
}

func parseFloatField(fields map[string]string, name string) (float64, error) {
	v, err := strconv.ParseFloat(fields[name], 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
