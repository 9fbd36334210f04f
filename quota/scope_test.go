package quota

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	key, err := Key(ScopeIP, "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, "ratelimit:ip:203.0.113.7", key)

	key, err = Key(ScopeUser, "42")
	require.NoError(t, err)
	assert.Equal(t, "ratelimit:user:42", key)
}

func TestKey_EmptyIdentity(t *testing.T) {
	_, err := Key(ScopeIP, "")
	assert.ErrorIs(t, err, ErrEmptyIdentity)
}

func TestKey_DistinctScopesNeverCollide(t *testing.T) {
	ipKey, err := Key(ScopeIP, "42")
	require.NoError(t, err)
	userKey, err := Key(ScopeUser, "42")
	require.NoError(t, err)

	assert.NotEqual(t, ipKey, userKey)
}

func TestActionKey(t *testing.T) {
	day := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)

	key, err := ActionKey(ActionChatMessage, "42", day)
	require.NoError(t, err)
	assert.Equal(t, "ratelimit:action:chat_message:42:20250601", key)

	_, err = ActionKey(ActionChatMessage, "", day)
	assert.ErrorIs(t, err, ErrEmptyIdentity)
}

func TestActionKey_DayIsUTC(t *testing.T) {
	// 03:30 on June 2nd in UTC+5 is still June 1st in UTC
	loc := time.FixedZone("UTC+5", 5*60*60)
	local := time.Date(2025, 6, 2, 3, 30, 0, 0, loc)

	key, err := ActionKey(ActionDeckGenerate, "42", local)
	require.NoError(t, err)
	assert.Equal(t, "ratelimit:action:deck_generate:42:20250601", key)
}

func TestDayStamp(t *testing.T) {
	assert.Equal(t, "20250601", DayStamp(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "20251231", DayStamp(time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)))
}

func TestIdentityHelpers(t *testing.T) {
	assert.Equal(t, "42", IdentityFromInt64(42))
	assert.Equal(t, "-7", IdentityFromInt64(-7))

	u := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", IdentityFromUUID(u))
}

func TestScopeFromKey(t *testing.T) {
	assert.Equal(t, ScopeIP, ScopeFromKey("ratelimit:ip:10.0.0.1"))
	assert.Equal(t, ScopeUser, ScopeFromKey("ratelimit:user:42"))
	assert.Equal(t, ScopeAction, ScopeFromKey("ratelimit:action:chat_message:42:20250601"))

	assert.Equal(t, Scope(""), ScopeFromKey("other:ip:10.0.0.1"))
	assert.Equal(t, Scope(""), ScopeFromKey("ratelimit:bogus:42"))
	assert.Equal(t, Scope(""), ScopeFromKey("ratelimit"))
}
