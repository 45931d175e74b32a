package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSink stores documents in Redis, scoped to one shop.
type RedisSink struct {
	redis     *redis.Client
	shop      string
	ttl       time.Duration
	urlPrefix string
}

// DefaultURLPrefix is where the feed server serves Redis-stored documents.
const DefaultURLPrefix = "/feeds"

// NewRedisSink creates a Redis sink. A ttl of zero keeps documents until
// they are replaced.
func NewRedisSink(redisClient *redis.Client, shop string, ttl time.Duration) *RedisSink {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisSink{
		redis:     redisClient,
		shop:      shop,
		ttl:       ttl,
		urlPrefix: DefaultURLPrefix,
	}
}

// Store saves data under name and returns /feeds/{name}.
func (s *RedisSink) Store(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	entry := NewEntry(data, contentType, s.ttl)
	raw, err := json.Marshal(entry)
	if err != nil {
		SinkErrors.WithLabelValues("redis", "store").Inc()
		return "", fmt.Errorf("marshal document entry: %w", err)
	}

	if err := s.redis.Set(ctx, Key(s.shop, name), raw, s.ttl).Err(); err != nil {
		SinkErrors.WithLabelValues("redis", "store").Inc()
		return "", fmt.Errorf("redis set: %w", err)
	}

	DocumentsStored.WithLabelValues("redis").Inc()
	StoredBytes.WithLabelValues("redis").Set(float64(len(data)))

	return s.urlPrefix + "/" + name, nil
}

// Load retrieves the document stored under name.
// Returns ErrNotFound if the key doesn't exist or the entry is expired.
func (s *RedisSink) Load(ctx context.Context, name string) (*Entry, error) {
	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	raw, err := s.redis.Get(ctx, Key(s.shop, name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		SinkErrors.WithLabelValues("redis", "load").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		SinkErrors.WithLabelValues("redis", "load").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.IsExpired() {
		return nil, ErrNotFound
	}

	return &entry, nil
}

// Delete removes the document stored under name.
func (s *RedisSink) Delete(ctx context.Context, name string) error {
	if err := s.redis.Del(ctx, Key(s.shop, name)).Err(); err != nil {
		SinkErrors.WithLabelValues("redis", "delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
