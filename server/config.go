package server

import "time"

// Config is the HTTP server configuration
type Config struct {
	// Addr listen address (default ":8080")
	Addr string `mapstructure:"addr"`

	// ReadTimeout maximum duration for reading a request (default 10s)
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout maximum duration for writing a response (default 10s)
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// ShutdownTimeout grace period for in-flight requests (default 15s)
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// Mode gin mode: debug, release or test (default "release")
	Mode string `mapstructure:"mode"`
}

// DefaultConfig returns the default server configuration
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		Mode:            "release",
	}
}

// ApplyDefaults fills zero-value fields
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = def.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = def.ShutdownTimeout
	}
	if c.Mode == "" {
		c.Mode = def.Mode
	}
}
