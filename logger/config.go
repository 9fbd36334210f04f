package logger

// Config logger manager configuration (shared by all modules)
type Config struct {
	// AppName application name (injected into every log entry, may be empty)
	AppName string `mapstructure:"app_name"`

	// Level minimum log level: debug, info, warn, error
	Level string `mapstructure:"level"`

	// Encoding log encoding: json or console
	Encoding string `mapstructure:"encoding"`

	// EnableConsole whether to also write to stdout
	EnableConsole bool `mapstructure:"enable_console"`

	// EnableFile whether to write rotated log files
	EnableFile bool `mapstructure:"enable_file"`

	// Dir log file directory (default logs/)
	Dir string `mapstructure:"dir"`

	// MaxSize maximum size of a single file in MB
	MaxSize int `mapstructure:"max_size"`

	// MaxBackups number of rotated files to keep
	MaxBackups int `mapstructure:"max_backups"`

	// MaxAge number of days to keep rotated files
	MaxAge int `mapstructure:"max_age"`

	// Compress whether to gzip rotated files
	Compress bool `mapstructure:"compress"`

	// EnableCaller whether to record the caller position
	EnableCaller bool `mapstructure:"enable_caller"`
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		Encoding:      "json",
		EnableConsole: true,
		EnableFile:    false,
		Dir:           "logs",
		MaxSize:       100,
		MaxBackups:    10,
		MaxAge:        30,
		Compress:      true,
		EnableCaller:  true,
	}
}

// ApplyDefaults fills zero-value fields with defaults
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Encoding == "" {
		c.Encoding = "json"
	}
	if c.Dir == "" {
		c.Dir = "logs"
	}
	if c.MaxSize == 0 {
		c.MaxSize = 100
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 10
	}
	if c.MaxAge == 0 {
		c.MaxAge = 30
	}
}
