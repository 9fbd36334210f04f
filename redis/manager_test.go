package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recallio/quotakit/logger"
)

func testLogger() *logger.CtxZapLogger {
	return logger.NewManager(logger.Config{Level: "error", EnableConsole: false}).GetLogger("test")
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{Addr: "localhost:6379"}
	cfg.ApplyDefaults()

	assert.Equal(t, 10, cfg.PoolSize)
	assert.Equal(t, 5, cfg.MinIdleConns)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Addr: "localhost:6379"}, false},
		{"empty addr", Config{}, true},
		{"db too large", Config{Addr: "localhost:6379", DB: 16}, true},
		{"negative pool", Config{Addr: "localhost:6379", PoolSize: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewManager_NilLogger(t *testing.T) {
	_, err := NewManager(nil, nil)
	assert.Error(t, err)
}

func TestNewManager_ConnectsAndPings(t *testing.T) {
	mr := miniredis.RunT(t)

	m, err := NewManager(map[string]Config{
		"counters": {Addr: mr.Addr()},
	}, testLogger())
	require.NoError(t, err)
	defer m.Close()

	assert.NotNil(t, m.Client("counters"))
	assert.Nil(t, m.Client("missing"))
	assert.ElementsMatch(t, []string{"counters"}, m.InstanceNames())
	assert.NoError(t, m.Ping(context.Background()))
}

func TestNewManager_UnreachableInstance(t *testing.T) {
	_, err := NewManager(map[string]Config{
		"counters": {Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond},
	}, testLogger())
	assert.Error(t, err)
}

func TestManager_PingAfterServerGone(t *testing.T) {
	mr := miniredis.RunT(t)

	m, err := NewManager(map[string]Config{
		"counters": {Addr: mr.Addr(), MaxRetries: 1},
	}, testLogger())
	require.NoError(t, err)
	defer m.Close()

	mr.Close()

	assert.Error(t, m.Ping(context.Background()))
}
