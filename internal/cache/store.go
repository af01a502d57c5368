package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// SearchPrefix is the key prefix for cached search responses.
	SearchPrefix = "search:"

	// UserSyncedPrefix marks users whose row is known to exist.
	UserSyncedPrefix = "user:synced:"

	// UserSyncedTTL bounds how long a sync marker is trusted.
	UserSyncedTTL = 10 * time.Minute
)

// Store is the small key/value surface the services need from a cache.
// A miss is reported as found=false with a nil error.
type Store interface {
	GetJSON(ctx context.Context, key string, dst any) (found bool, err error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	// SetMarker stores a valueless flag under key for ttl.
	SetMarker(ctx context.Context, key string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisStore implements Store with plain string keys holding JSON.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		log.Printf("[Cache] Get FAILED: key=%s err=%v", key, err)
		return false, fmt.Errorf("get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		// A value we cannot decode is treated as a miss and dropped.
		log.Printf("[Cache] Get decode error: key=%s err=%v", key, err)
		s.client.Del(ctx, key)
		return false, nil
	}
	return true, nil
}

func (s *RedisStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("[Cache] Set FAILED: key=%s err=%v", key, err)
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		log.Printf("[Cache] Exists FAILED: key=%s err=%v", key, err)
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return n > 0, nil
}

func (s *RedisStore) SetMarker(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, 1, ttl).Err(); err != nil {
		log.Printf("[Cache] SetMarker FAILED: key=%s err=%v", key, err)
		return fmt.Errorf("set marker %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// Noop is used when no Redis URL is configured. Every read misses.
type Noop struct{}

func (Noop) GetJSON(context.Context, string, any) (bool, error)        { return false, nil }
func (Noop) SetJSON(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Exists(context.Context, string) (bool, error)              { return false, nil }
func (Noop) SetMarker(context.Context, string, time.Duration) error    { return nil }
func (Noop) Delete(context.Context, string) error                      { return nil }

// SearchKey builds the cache key for a search request.
func SearchKey(kind, query string) string {
	return fmt.Sprintf("%s%s:%s", SearchPrefix, kind, query)
}

func UserSyncedKey(userID string) string {
	return UserSyncedPrefix + userID
}
