package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gfe/pkg/platform/sentinel"
)

const keyPrefix = "gfe:session:"

// RedisStore persists browsing-context values in Redis so that several
// server instances can share them.
type RedisStore struct {
	client redis.Cmdable
}

// NewRedis constructs a Redis-backed store.
func NewRedis(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(sessionID, key string) string {
	return keyPrefix + sessionID + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	value, err := s.client.Get(ctx, redisKey(sessionID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("session key %q: %w", key, sentinel.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get session key %q: %w", key, errors.Join(sentinel.ErrUnavailable, err))
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, sessionID, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, redisKey(sessionID, key), value, ttl).Err(); err != nil {
		return fmt.Errorf("set session key %q: %w", key, errors.Join(sentinel.ErrUnavailable, err))
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID, key string) error {
	if err := s.client.Del(ctx, redisKey(sessionID, key)).Err(); err != nil {
		return fmt.Errorf("delete session key %q: %w", key, errors.Join(sentinel.ErrUnavailable, err))
	}
	return nil
}
