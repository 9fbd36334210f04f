package quota

import "time"

// Rule is one immutable ceiling: a maximum count inside a window.
// Limit <= 0 means unlimited; the engine short-circuits without touching
// the store for unlimited rules.
type Rule struct {
	// Limit maximum count within the window (<= 0 means unlimited)
	Limit int64

	// Window counting window length
	Window time.Duration
}

// Unlimited reports whether the rule imposes no ceiling
func (r Rule) Unlimited() bool {
	return r.Limit <= 0
}

// Validate checks rule invariants. Unlimited rules are always valid;
// limited rules need a positive window.
func (r Rule) Validate() error {
	if r.Unlimited() {
		return nil
	}
	if r.Window <= 0 {
		return &ValidationError{Field: "window", Message: "must be > 0 for limited rules"}
	}
	return nil
}

// Unlimited returns a rule with no ceiling
func Unlimited() Rule {
	return Rule{}
}

// PerMinute returns a rule of limit requests per minute window
func PerMinute(limit int64) Rule {
	return newRule(limit, time.Minute)
}

// PerHour returns a rule of limit requests per hour window
func PerHour(limit int64) Rule {
	return newRule(limit, time.Hour)
}

// PerDay returns a rule of limit requests per 24h window
func PerDay(limit int64) Rule {
	return newRule(limit, 24*time.Hour)
}

func newRule(limit int64, window time.Duration) Rule {
	if limit <= 0 {
		return Unlimited()
	}
	return Rule{Limit: limit, Window: window}
}

// Verdict is the result of one admission evaluation. Constructed fresh on
// every evaluation, never persisted; consumed by the transport adapter.
type Verdict struct {
	// Allowed whether the caller may proceed
	Allowed bool

	// Unlimited set when the rule imposed no ceiling (no store access)
	Unlimited bool

	// FailOpen set when the store failed and the engine degraded to allow
	FailOpen bool

	// Limit the rule's ceiling (0 when unlimited)
	Limit int64

	// Remaining budget left in the current window (never negative)
	Remaining int64

	// ResetAt when the current window's counter expires
	ResetAt time.Time

	// RetryAfter suggested wait before retrying (set only when rejected)
	RetryAfter time.Duration
}
