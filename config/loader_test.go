package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_Load(t *testing.T) {
	path := writeConfigFile(t, `
quota:
  enabled: true
  store_type: redis
  ip_per_minute: 60
`)

	l := NewLoader(path, "")
	require.NoError(t, l.Load())

	var cfg struct {
		Enabled     bool   `mapstructure:"enabled"`
		StoreType   string `mapstructure:"store_type"`
		IPPerMinute int64  `mapstructure:"ip_per_minute"`
	}
	require.NoError(t, l.Unmarshal("quota", &cfg))

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "redis", cfg.StoreType)
	assert.Equal(t, int64(60), cfg.IPPerMinute)
}

func TestLoader_MissingFile(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "nope.yaml"), "")
	assert.Error(t, l.Load())
}

func TestLoader_EnvOverride(t *testing.T) {
	path := writeConfigFile(t, `
quota:
  store_type: memory
`)

	t.Setenv("QUOTAD_QUOTA_STORE_TYPE", "redis")

	l := NewLoader(path, "QUOTAD")
	require.NoError(t, l.Load())

	assert.Equal(t, "redis", l.GetString("quota.store_type"))
}

func TestLoader_IsSet(t *testing.T) {
	path := writeConfigFile(t, `
quota:
  enabled: false
`)

	l := NewLoader(path, "")
	require.NoError(t, l.Load())

	assert.True(t, l.IsSet("quota.enabled"))
	assert.False(t, l.IsSet("quota.reset"))
}
