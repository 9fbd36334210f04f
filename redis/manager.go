// Package redis manages named go-redis client instances for the shared
// counter store. The quota engine and any future store consumers obtain
// their client from a Manager rather than dialing themselves.
package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/recallio/quotakit/logger"
)

// Manager holds named Redis clients
type Manager struct {
	instances map[string]*redis.Client
	configs   map[string]Config
	logger    *logger.CtxZapLogger
	mu        sync.RWMutex
}

// NewManager creates a manager and connects every configured instance.
// configs: instance name -> config
// log: injected logger, must not be nil
func NewManager(configs map[string]Config, log *logger.CtxZapLogger) (*Manager, error) {
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	ctx := context.Background()
	m := &Manager{
		instances: make(map[string]*redis.Client),
		configs:   make(map[string]Config),
		logger:    log,
	}

	for name, cfg := range configs {
		cfg.ApplyDefaults()

		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config for %s: %w", name, err)
		}

		client, err := m.createClient(cfg)
		if err != nil {
			m.closeAll()
			return nil, fmt.Errorf("failed to create client %s: %w", name, err)
		}

		m.instances[name] = client
		m.configs[name] = cfg

		m.logger.DebugCtx(ctx, "✅ Redis connection established",
			zap.String("name", name),
			zap.String("addr", cfg.Addr),
			zap.Int("db", cfg.DB))
	}

	return m, nil
}

func (m *Manager) createClient(cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	return client, nil
}

// Client returns the named instance, or nil when not configured
func (m *Manager) Client(name string) *redis.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[name]
}

// InstanceNames returns the names of all configured instances
func (m *Manager) InstanceNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.instances))
	for name := range m.instances {
		names = append(names, name)
	}
	return names
}

// Ping checks connectivity of every instance. Used as the health probe
// for detecting counter store degradation.
func (m *Manager) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for name, client := range m.instances {
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping %s failed: %w", name, err)
		}
	}
	return nil
}

// Close closes every instance
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeAll()
	return nil
}

// Shutdown implements the do.Shutdownable interface so the DI container
// closes connections automatically.
func (m *Manager) Shutdown() error {
	return m.Close()
}

func (m *Manager) closeAll() {
	ctx := context.Background()
	for name, client := range m.instances {
		if err := client.Close(); err != nil {
			m.logger.ErrorCtx(ctx, "failed to close Redis connection",
				zap.String("name", name),
				zap.Error(err))
		} else {
			m.logger.DebugCtx(ctx, "Redis connection closed",
				zap.String("name", name))
		}
		delete(m.instances, name)
	}
}
