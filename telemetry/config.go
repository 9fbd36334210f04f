package telemetry

import "time"

// Config telemetry configuration
type Config struct {
	// Enabled master switch; when false no provider is installed and
	// every metric call is a no-op
	Enabled bool `mapstructure:"enabled"`

	// ServiceName reported as service.name on every export
	ServiceName string `mapstructure:"service_name"`

	// ExportInterval period between metric exports (default 60s)
	ExportInterval time.Duration `mapstructure:"export_interval"`
}

// DefaultConfig returns the default telemetry configuration
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "quotad",
		ExportInterval: 60 * time.Second,
	}
}

// ApplyDefaults fills zero-value fields with defaults
func (c *Config) ApplyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "quotad"
	}
	if c.ExportInterval <= 0 {
		c.ExportInterval = 60 * time.Second
	}
}
