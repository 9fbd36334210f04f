package quota

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Incr(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	for want := int64(1); want <= 3; want++ {
		got, err := store.Incr(context.Background(), "k")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestMemoryStore_Incr_Concurrent(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	const callers = 100
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Incr(context.Background(), "k")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Incr(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, int64(callers+1), got)
}

func TestMemoryStore_TTLAndExpire(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := newMemoryStoreWithClock(clock.Now)

	// absent key and key without expiry both report TTLMissing
	ttl, err := store.TTL(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, TTLMissing, ttl)

	_, err = store.Incr(context.Background(), "k")
	require.NoError(t, err)

	ttl, err = store.TTL(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, TTLMissing, ttl)

	require.NoError(t, store.Expire(context.Background(), "k", time.Minute))

	ttl, err = store.TTL(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	clock.Advance(40 * time.Second)
	ttl, err = store.TTL(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, ttl)
}

func TestMemoryStore_ExpiredKeyRestartsAtOne(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := newMemoryStoreWithClock(clock.Now)

	_, err := store.Incr(context.Background(), "k")
	require.NoError(t, err)
	_, err = store.Incr(context.Background(), "k")
	require.NoError(t, err)
	require.NoError(t, store.Expire(context.Background(), "k", time.Minute))

	clock.Advance(61 * time.Second)

	exists, err := store.Exists(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, exists)

	got, err := store.Incr(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestMemoryStore_Del(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	_, err := store.Incr(context.Background(), "a")
	require.NoError(t, err)
	_, err = store.Incr(context.Background(), "b")
	require.NoError(t, err)

	deleted, err := store.Del(context.Background(), "a", "b", "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	deleted, err = store.Del(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

func TestMemoryStore_Sets(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	require.NoError(t, store.SAdd(context.Background(), "s", "a", "b"))
	require.NoError(t, store.SAdd(context.Background(), "s", "b", "c"))

	members, err := store.SMembers(context.Background(), "s")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, members)

	require.NoError(t, store.SRem(context.Background(), "s", "a", "c"))

	members, err = store.SMembers(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, members)

	// removing from an absent set is a no-op
	assert.NoError(t, store.SRem(context.Background(), "missing", "x"))
}

func TestMemoryStore_CleanupRemovesExpired(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := newMemoryStoreWithClock(clock.Now)

	_, err := store.Incr(context.Background(), "k")
	require.NoError(t, err)
	require.NoError(t, store.Expire(context.Background(), "k", time.Minute))

	clock.Advance(2 * time.Minute)
	store.removeExpired()

	store.mu.Lock()
	_, ok := store.counts["k"]
	store.mu.Unlock()
	assert.False(t, ok)
}

func TestMemoryStore_ClosedRejectsWrites(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Close())

	_, err := store.Incr(context.Background(), "k")
	assert.Error(t, err)

	assert.Error(t, store.SAdd(context.Background(), "s", "a"))

	// double close is safe
	assert.NoError(t, store.Close())
}
