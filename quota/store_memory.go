package quota

import (
	"context"
	"errors"
	"sync"
	"time"
)

// memoryStore is an in-process Store for tests and deployments without a
// shared Redis. Counters are process-local, so ceilings apply per replica.
type memoryStore struct {
	mu     sync.Mutex
	counts map[string]*memoryCounter
	sets   map[string]map[string]struct{}
	now    func() time.Time
	closed bool
	stop   chan struct{}
}

type memoryCounter struct {
	value    int64
	expireAt time.Time // zero means no expiry
}

// NewMemoryStore creates an in-process counter store
func NewMemoryStore() Store {
	s := &memoryStore{
		counts: make(map[string]*memoryCounter),
		sets:   make(map[string]map[string]struct{}),
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	go s.cleanupLoop(time.Minute)
	return s
}

// newMemoryStoreWithClock is used by tests to freeze and advance time
func newMemoryStoreWithClock(now func() time.Time) *memoryStore {
	return &memoryStore{
		counts: make(map[string]*memoryCounter),
		sets:   make(map[string]map[string]struct{}),
		now:    now,
		stop:   make(chan struct{}),
	}
}

func (s *memoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *memoryStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, c := range s.counts {
		if !c.expireAt.IsZero() && now.After(c.expireAt) {
			delete(s.counts, key)
		}
	}
}

// expired must be called with the lock held
func (s *memoryStore) expired(c *memoryCounter) bool {
	return !c.expireAt.IsZero() && s.now().After(c.expireAt)
}

// Incr atomically increments the counter at key
func (s *memoryStore) Incr(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, errors.New("store is closed")
	}

	c, ok := s.counts[key]
	if !ok || s.expired(c) {
		c = &memoryCounter{}
		s.counts[key] = c
	}
	c.value++
	return c.value, nil
}

// TTL returns the key's remaining lifetime, or TTLMissing
func (s *memoryStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counts[key]
	if !ok || s.expired(c) || c.expireAt.IsZero() {
		return TTLMissing, nil
	}
	return c.expireAt.Sub(s.now()), nil
}

// Expire sets the key's remaining lifetime
func (s *memoryStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counts[key]
	if !ok || s.expired(c) {
		return nil
	}
	c.expireAt = s.now().Add(ttl)
	return nil
}

// Del deletes keys and returns how many existed
func (s *memoryStore) Del(ctx context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for _, key := range keys {
		if c, ok := s.counts[key]; ok {
			if !s.expired(c) {
				deleted++
			}
			delete(s.counts, key)
		}
	}
	return deleted, nil
}

// Exists reports whether key is present
func (s *memoryStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counts[key]
	return ok && !s.expired(c), nil
}

// SAdd adds members to the set at key
func (s *memoryStore) SAdd(ctx context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("store is closed")
	}

	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{})
		s.sets[key] = set
	}
	for _, m := range members {
		set[m] = struct{}{}
	}
	return nil
}

// SMembers returns the full membership of the set at key
func (s *memoryStore) SMembers(ctx context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.sets[key]
	members := make([]string, 0, len(set))
	for m := range set {
		members = append(members, m)
	}
	return members, nil
}

// SRem removes members from the set at key
func (s *memoryStore) SRem(ctx context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[key]
	if !ok {
		return nil
	}
	for _, m := range members {
		delete(set, m)
	}
	if len(set) == 0 {
		delete(s.sets, key)
	}
	return nil
}

// Close stops the cleanup loop and rejects further writes
func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.stop)
	}
	return nil
}
