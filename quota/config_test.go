package quota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, string(StoreTypeMemory), cfg.StoreType)
	assert.Equal(t, 2*time.Second, cfg.OpTimeout)
	assert.Equal(t, 500, cfg.EventBusBuffer)
	assert.NotNil(t, cfg.Limits.Actions)
}

func TestConfig_Validate_DisabledSkipsChecks(t *testing.T) {
	cfg := Config{Enabled: false, StoreType: "bogus"}
	assert.NoError(t, cfg.Validate())

	// defaults still get filled
	assert.Equal(t, 2*time.Second, cfg.OpTimeout)
	assert.Equal(t, 500, cfg.EventBusBuffer)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "memory store",
			mutate: func(c *Config) {},
		},
		{
			name: "redis store with instance",
			mutate: func(c *Config) {
				c.StoreType = string(StoreTypeRedis)
				c.Redis.Instance = "quota"
			},
		},
		{
			name: "unknown store type",
			mutate: func(c *Config) {
				c.StoreType = "mongodb"
			},
			wantErr: true,
		},
		{
			name: "redis store without instance",
			mutate: func(c *Config) {
				c.StoreType = string(StoreTypeRedis)
			},
			wantErr: true,
		},
		{
			name: "reset hour out of range",
			mutate: func(c *Config) {
				c.Reset.Hour = 24
			},
			wantErr: true,
		},
		{
			name: "reset minute out of range",
			mutate: func(c *Config) {
				c.Reset.Minute = 60
			},
			wantErr: true,
		},
		{
			name: "negative ip ceiling",
			mutate: func(c *Config) {
				c.Limits.IPPerMinute = -1
			},
			wantErr: true,
		},
		{
			name: "negative user ceiling",
			mutate: func(c *Config) {
				c.Limits.UserPerHour = -1
			},
			wantErr: true,
		},
		{
			name: "unknown action name",
			mutate: func(c *Config) {
				c.Limits.Actions["mine_bitcoin"] = ActionLimits{FreeDaily: 1}
			},
			wantErr: true,
		},
		{
			name: "negative action ceiling",
			mutate: func(c *Config) {
				c.Limits.Actions["chat_message"] = ActionLimits{FreeDaily: -1}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Enabled = true
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ScopeRules(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.IPPerMinute = 30
	cfg.Limits.UserPerHour = 200

	assert.Equal(t, Rule{Limit: 30, Window: time.Minute}, cfg.IPRule())
	assert.Equal(t, Rule{Limit: 200, Window: time.Hour}, cfg.UserRule())

	// zero ceiling means unlimited, not blocked
	cfg.Limits.IPPerMinute = 0
	assert.True(t, cfg.IPRule().Unlimited())
}

func TestProfilesFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.Actions["chat_message"] = ActionLimits{FreeDaily: 50, PremiumDaily: 500}

	profiles, err := ProfilesFromConfig(&cfg)
	require.NoError(t, err)
	require.NoError(t, profiles.Validate())

	rule, err := profiles.Resolve(ActionChatMessage, PlanFree)
	require.NoError(t, err)
	assert.Equal(t, Rule{Limit: 50, Window: 24 * time.Hour}, rule)

	rule, err = profiles.Resolve(ActionChatMessage, PlanPremium)
	require.NoError(t, err)
	assert.Equal(t, int64(500), rule.Limit)

	// actions absent from config default to unlimited for both plans
	rule, err = profiles.Resolve(ActionAudioTranscribe, PlanFree)
	require.NoError(t, err)
	assert.True(t, rule.Unlimited())
}
