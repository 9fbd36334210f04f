package quota

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config is the admission-control engine configuration
type Config struct {
	// Enabled global enforcement switch. When false every evaluation
	// short-circuits to allowed without any store access.
	Enabled bool `mapstructure:"enabled"`

	// StoreType counter store backend: memory or redis
	StoreType string `mapstructure:"store_type"`

	// Redis counter store reference (required for redis store type)
	Redis RedisRefConfig `mapstructure:"redis"`

	// OpTimeout bound for each store round trip; on timeout the engine
	// fails open (default 2s)
	OpTimeout time.Duration `mapstructure:"op_timeout"`

	// EventBusBuffer event bus channel capacity (default 500)
	EventBusBuffer int `mapstructure:"event_bus_buffer"`

	// Limits numeric ceilings; zero or absent means unlimited
	Limits LimitsConfig `mapstructure:"limits"`

	// Reset UTC time of day for the daily bulk reset
	Reset ResetConfig `mapstructure:"reset"`
}

// RedisRefConfig points the engine at a named redis.Manager instance
type RedisRefConfig struct {
	// Instance redis instance name (configured under redis.instances)
	Instance string `mapstructure:"instance"`

	// KeyPrefix extra namespace prepended to every key (default empty)
	KeyPrefix string `mapstructure:"key_prefix"`
}

// LimitsConfig carries every configured ceiling. A ceiling of zero or an
// absent entry means unlimited for that scope or plan.
type LimitsConfig struct {
	// IPPerMinute requests allowed per client IP per minute
	IPPerMinute int64 `mapstructure:"ip_per_minute"`

	// UserPerHour requests allowed per authenticated user per hour
	UserPerHour int64 `mapstructure:"user_per_hour"`

	// Actions per-action daily ceilings keyed by action name
	Actions map[string]ActionLimits `mapstructure:"actions"`
}

// ActionLimits is the free/premium daily ceiling pair for one action
type ActionLimits struct {
	// FreeDaily daily ceiling for free-plan callers
	FreeDaily int64 `mapstructure:"free_daily"`

	// PremiumDaily daily ceiling for premium (and trial) callers
	PremiumDaily int64 `mapstructure:"premium_daily"`
}

// ResetConfig schedules the daily reset job
type ResetConfig struct {
	// Hour UTC hour of day (0-23, default 0)
	Hour int `mapstructure:"hour"`

	// Minute minute of hour (0-59, default 0)
	Minute int `mapstructure:"minute"`
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		StoreType:      string(StoreTypeMemory),
		OpTimeout:      2 * time.Second,
		EventBusBuffer: 500,
		Limits: LimitsConfig{
			Actions: make(map[string]ActionLimits),
		},
	}
}

// Validate checks the configuration and fills defaults. Unknown action
// names and negative ceilings fail here, at startup, never at request
// time.
func (c *Config) Validate() error {
	if c.OpTimeout <= 0 {
		c.OpTimeout = 2 * time.Second
	}
	if c.EventBusBuffer <= 0 {
		c.EventBusBuffer = 500
	}

	if !c.Enabled {
		return nil
	}

	if err := validation.ValidateStruct(c,
		validation.Field(&c.StoreType,
			validation.Required,
			validation.In(string(StoreTypeMemory), string(StoreTypeRedis))),
	); err != nil {
		return &ValidationError{Field: "store_type", Message: err.Error()}
	}

	if c.StoreType == string(StoreTypeRedis) && c.Redis.Instance == "" {
		return &ValidationError{Field: "redis.instance", Message: "redis instance name is required"}
	}

	if err := validation.ValidateStruct(&c.Reset,
		validation.Field(&c.Reset.Hour, validation.Min(0), validation.Max(23)),
		validation.Field(&c.Reset.Minute, validation.Min(0), validation.Max(59)),
	); err != nil {
		return &ValidationError{Field: "reset", Message: err.Error()}
	}

	if c.Limits.IPPerMinute < 0 {
		return &ValidationError{Field: "limits.ip_per_minute", Message: "must be >= 0"}
	}
	if c.Limits.UserPerHour < 0 {
		return &ValidationError{Field: "limits.user_per_hour", Message: "must be >= 0"}
	}

	for name, al := range c.Limits.Actions {
		if _, err := ParseAction(name); err != nil {
			return &ValidationError{
				Field:   "limits.actions." + name,
				Message: "not a known metered action",
			}
		}
		if al.FreeDaily < 0 || al.PremiumDaily < 0 {
			return &ValidationError{
				Field:   "limits.actions." + name,
				Message: "ceilings must be >= 0",
			}
		}
	}

	return nil
}

// IPRule derives the per-IP rule from configured ceilings
func (c *Config) IPRule() Rule {
	return PerMinute(c.Limits.IPPerMinute)
}

// UserRule derives the per-user rule from configured ceilings
func (c *Config) UserRule() Rule {
	return PerHour(c.Limits.UserPerHour)
}

// ProfilesFromConfig builds the exhaustive profile table from configured
// ceilings. Actions absent from config get unlimited rules for both
// plans. The result always passes Profiles.Validate for a valid Config.
func ProfilesFromConfig(c *Config) (Profiles, error) {
	profiles := make(Profiles, len(AllActions()))
	for _, action := range AllActions() {
		al := c.Limits.Actions[string(action)]
		profiles[action] = Profile{
			Free:    PerDay(al.FreeDaily),
			Premium: PerDay(al.PremiumDaily),
		}
	}
	if err := profiles.Validate(); err != nil {
		return nil, fmt.Errorf("build profiles: %w", err)
	}
	return profiles, nil
}
