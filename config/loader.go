// Package config loads application configuration from a YAML file with
// environment variable overrides.
//
// Precedence (low to high): file values, then environment variables with
// the configured prefix. Nested keys map to env vars with underscores,
// e.g. QUOTAD_QUOTA_ENABLED overrides quota.enabled.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Loader merges a config file with environment overrides
type Loader struct {
	v         *viper.Viper
	path      string
	envPrefix string
}

// NewLoader creates a loader for the given config file path.
// envPrefix may be empty to disable environment overrides.
func NewLoader(path, envPrefix string) *Loader {
	return &Loader{
		v:         viper.New(),
		path:      path,
		envPrefix: envPrefix,
	}
}

// Load reads and merges all sources. Missing file is an error; a config
// file is required so that startup validation can fail loudly instead of
// running on silent defaults.
func (l *Loader) Load() error {
	l.v.SetConfigFile(l.path)

	if l.envPrefix != "" {
		l.v.SetEnvPrefix(l.envPrefix)
		l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		l.v.AutomaticEnv()
	}

	if err := l.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", l.path, err)
	}
	return nil
}

// Unmarshal decodes the subtree at key into out
func (l *Loader) Unmarshal(key string, out interface{}) error {
	if key == "" {
		return l.v.Unmarshal(out)
	}
	return l.v.UnmarshalKey(key, out)
}

// IsSet reports whether the key is present in any source
func (l *Loader) IsSet(key string) bool {
	return l.v.IsSet(key)
}

// GetString returns the string value at key
func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}
