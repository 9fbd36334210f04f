package quota

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a go-redis client. An optional key
// prefix namespaces this deployment's keys inside a shared Redis.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore creates a Redis-backed counter store. keyPrefix may be
// empty; the scope key builder already namespaces keys under ratelimit:.
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (s *RedisStore) buildKey(key string) string {
	return s.keyPrefix + key
}

// Incr atomically increments the counter at key
func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, s.buildKey(key)).Result()
}

// TTL returns the key's remaining lifetime.
// Redis reports -1 for no expiry and -2 for a missing key; both map to
// TTLMissing so the engine re-arms the window.
func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, s.buildKey(key)).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return TTLMissing, nil
	}
	return ttl, nil
}

// Expire sets the key's remaining lifetime
func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Expire(ctx, s.buildKey(key), ttl).Err()
}

// Del deletes keys and returns how many existed
func (s *RedisStore) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	fullKeys := make([]string, len(keys))
	for i, key := range keys {
		fullKeys[i] = s.buildKey(key)
	}
	return s.client.Del(ctx, fullKeys...).Result()
}

// Exists reports whether key is present
func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Exists(ctx, s.buildKey(key)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SAdd adds members to the set at key
func (s *RedisStore) SAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return s.client.SAdd(ctx, s.buildKey(key), args...).Err()
}

// SMembers returns the full membership of the set at key
func (s *RedisStore) SMembers(ctx context.Context, key string) ([]string, error) {
	return s.client.SMembers(ctx, s.buildKey(key)).Result()
}

// SRem removes members from the set at key
func (s *RedisStore) SRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return s.client.SRem(ctx, s.buildKey(key), args...).Err()
}

// Close is a no-op; the client is owned by the redis.Manager
func (s *RedisStore) Close() error {
	return nil
}
