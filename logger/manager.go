// Package logger provides module-scoped, context-aware zap loggers.
//
// Loggers are obtained from a Manager keyed by module name; each logger
// carries a module field so entries from different subsystems can be told
// apart in aggregated output.
package logger

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager builds and caches per-module loggers
type Manager struct {
	config  Config
	loggers map[string]*CtxZapLogger
	mu      sync.RWMutex
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// NewManager creates a standalone manager instance.
// Zero-value config fields are filled with defaults.
func NewManager(cfg Config) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		config:  cfg,
		loggers: make(map[string]*CtxZapLogger),
	}
}

// InitManager initializes the global manager (first call wins)
func InitManager(cfg Config) {
	managerOnce.Do(func() {
		globalManager = NewManager(cfg)
	})
}

// GetLogger returns the global manager's logger for the module.
// Falls back to a console-only development manager when InitManager
// was never called, so library code can always log.
func GetLogger(module string) *CtxZapLogger {
	if globalManager == nil {
		InitManager(Config{Level: "debug", Encoding: "console", EnableConsole: true})
	}
	return globalManager.GetLogger(module)
}

// GetLogger returns the cached logger for a module, creating it on first use
func (m *Manager) GetLogger(module string) *CtxZapLogger {
	m.mu.RLock()
	if l, ok := m.loggers[module]; ok {
		m.mu.RUnlock()
		return l
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// double check under the write lock
	if l, ok := m.loggers[module]; ok {
		return l
	}

	base := m.createLogger(module).
		With(zap.String("module", module)).
		WithOptions(zap.AddCallerSkip(1))

	l := &CtxZapLogger{
		base:    base,
		module:  module,
		appName: m.config.AppName,
	}
	m.loggers[module] = l
	return l
}

// Sync flushes all cached loggers
func (m *Manager) Sync() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.loggers {
		_ = l.base.Sync()
	}
}

// createLogger builds the underlying zap.Logger for one module
func (m *Manager) createLogger(module string) *zap.Logger {
	level := parseLevel(m.config.Level)
	encoder := createEncoder(m.config.Encoding)

	var cores []zapcore.Core

	if m.config.EnableConsole {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level))
	}

	if m.config.EnableFile {
		writer := &lumberjack.Logger{
			Filename:   filepath.Join(m.config.Dir, module+".log"),
			MaxSize:    m.config.MaxSize,
			MaxBackups: m.config.MaxBackups,
			MaxAge:     m.config.MaxAge,
			Compress:   m.config.Compress,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(writer), level))
	}

	if len(cores) == 0 {
		return zap.NewNop()
	}

	opts := []zap.Option{}
	if m.config.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}

	return zap.New(zapcore.NewTee(cores...), opts...)
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func createEncoder(encoding string) zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if encoding == "console" {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewJSONEncoder(encCfg)
}
