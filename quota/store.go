package quota

import (
	"context"
	"time"
)

// TTLMissing is returned by Store.TTL when the key exists without an
// expiry, or does not exist at all. The engine treats it as "re-arm the
// window", never as unlimited.
const TTLMissing = time.Duration(-1)

// Store is the shared counter store boundary. All mutation is via atomic
// single-key operations; the engine takes no locks and holds no state of
// its own.
type Store interface {
	// Incr atomically increments the counter at key, creating it at 1.
	// The store linearizes increments per key: no two callers observe
	// the same pre-increment value.
	Incr(ctx context.Context, key string) (int64, error)

	// TTL returns the remaining lifetime of key, or TTLMissing when the
	// key has no expiry or does not exist
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Expire sets the key's remaining lifetime
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Del deletes keys, returning how many existed. Deleting an absent
	// key is a no-op, not an error.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Exists reports whether key is present
	Exists(ctx context.Context, key string) (bool, error)

	// SAdd adds members to the set at key
	SAdd(ctx context.Context, key string, members ...string) error

	// SMembers returns the full membership of the set at key
	SMembers(ctx context.Context, key string) ([]string, error)

	// SRem removes members from the set at key
	SRem(ctx context.Context, key string, members ...string) error

	// Close releases store resources
	Close() error
}

// StoreType selects the counter store backend
type StoreType string

const (
	// StoreTypeMemory in-process store, for tests and redis-less setups
	StoreTypeMemory StoreType = "memory"

	// StoreTypeRedis shared Redis store
	StoreTypeRedis StoreType = "redis"
)
