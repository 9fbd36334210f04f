package quota

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Scope is the dimension being limited
type Scope string

const (
	// ScopeIP per client IP address
	ScopeIP Scope = "ip"

	// ScopeUser per authenticated user
	ScopeUser Scope = "user"

	// ScopeAction per metered action per user per calendar day
	ScopeAction Scope = "action"
)

// keyNamespace prefixes every counter key. Changing it orphans live
// counters until their TTLs elapse.
const keyNamespace = "ratelimit"

// DailyIndexKey is the set holding every live day-scoped counter key
const DailyIndexKey = keyNamespace + ":daily:index"

// Key builds the canonical counter key for an ip or user scope:
// ratelimit:{scope}:{identity}. Pure, no clock access. Identity must be
// non-empty; the builder rejects rather than normalizing so that a broken
// caller surfaces during development instead of sharing one sentinel
// bucket in production.
func Key(scope Scope, identity string) (string, error) {
	if identity == "" {
		return "", ErrEmptyIdentity
	}
	return fmt.Sprintf("%s:%s:%s", keyNamespace, scope, identity), nil
}

// ActionKey builds the canonical counter key for a calendar-day action
// scope: ratelimit:action:{action}:{identity}:{YYYYMMDD}. The day is
// derived from the supplied instant in UTC; callers own the clock so the
// builder stays pure and testable.
func ActionKey(action Action, identity string, day time.Time) (string, error) {
	if identity == "" {
		return "", ErrEmptyIdentity
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s",
		keyNamespace, ScopeAction, action, identity, DayStamp(day)), nil
}

// DayStamp formats an instant as the UTC calendar-day suffix YYYYMMDD
func DayStamp(t time.Time) string {
	return t.UTC().Format("20060102")
}

// IdentityFromInt64 converts a numeric identifier to its canonical
// decimal string form
func IdentityFromInt64(id int64) string {
	return strconv.FormatInt(id, 10)
}

// IdentityFromUUID converts a UUID to its canonical hyphenated form
func IdentityFromUUID(u uuid.UUID) string {
	return u.String()
}

// ScopeFromKey extracts the scope discriminator from a canonical key.
// Returns an empty scope for keys not produced by this package; used only
// to label metrics and events, never for admission decisions.
func ScopeFromKey(key string) Scope {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 3 || parts[0] != keyNamespace {
		return Scope("")
	}
	switch Scope(parts[1]) {
	case ScopeIP, ScopeUser, ScopeAction:
		return Scope(parts[1])
	}
	return Scope("")
}
