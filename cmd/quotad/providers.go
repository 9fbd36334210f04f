package main

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/recallio/quotakit/config"
	"github.com/recallio/quotakit/logger"
	"github.com/recallio/quotakit/quota"
	"github.com/recallio/quotakit/redis"
	"github.com/recallio/quotakit/scheduler"
	"github.com/recallio/quotakit/server"
	"github.com/recallio/quotakit/telemetry"
)

// envPrefix for overrides, e.g. QUOTAD_QUOTA_ENABLED=true
const envPrefix = "QUOTAD"

// appConfig is the full config file shape
type appConfig struct {
	App struct {
		Name string `mapstructure:"name"`
	} `mapstructure:"app"`

	Logger logger.Config `mapstructure:"logger"`
	Server server.Config `mapstructure:"server"`

	Redis struct {
		Instances map[string]redis.Config `mapstructure:"instances"`
	} `mapstructure:"redis"`

	Quota     quota.Config     `mapstructure:"quota"`
	Telemetry telemetry.Config `mapstructure:"telemetry"`
}

// buildInjector wires every component lazily; only the components the
// invoked command actually uses get constructed. The injector owns
// shutdown order.
func buildInjector(path string) (*do.RootScope, error) {
	injector := do.New()

	loader := config.NewLoader(path, envPrefix)
	if err := loader.Load(); err != nil {
		return nil, err
	}

	var cfg appConfig
	cfg.Quota = quota.DefaultConfig()
	cfg.Server = server.DefaultConfig()
	if err := loader.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Logger.AppName = cfg.App.Name

	do.ProvideValue(injector, &cfg)

	do.Provide(injector, func(i do.Injector) (*logger.Manager, error) {
		logger.InitManager(cfg.Logger)
		return logger.NewManager(cfg.Logger), nil
	})

	do.Provide(injector, provideRedisManager)
	do.Provide(injector, provideTelemetry)
	do.Provide(injector, provideEngine)
	do.Provide(injector, provideProfiles)
	do.Provide(injector, provideScheduler)
	do.Provide(injector, provideServer)

	return injector, nil
}

func provideRedisManager(i do.Injector) (*redis.Manager, error) {
	cfg := do.MustInvoke[*appConfig](i)
	do.MustInvoke[*logger.Manager](i)

	if len(cfg.Redis.Instances) == 0 {
		return nil, fmt.Errorf("no redis instances configured")
	}
	return redis.NewManager(cfg.Redis.Instances, logger.GetLogger("redis"))
}

func provideTelemetry(i do.Injector) (*telemetry.Manager, error) {
	cfg := do.MustInvoke[*appConfig](i)
	do.MustInvoke[*logger.Manager](i)

	m := telemetry.NewManager(cfg.Telemetry, logger.GetLogger("telemetry"))
	if err := m.Start(context.Background()); err != nil {
		return nil, err
	}
	return m, nil
}

func provideEngine(i do.Injector) (*quota.Engine, error) {
	cfg := do.MustInvoke[*appConfig](i)
	do.MustInvoke[*logger.Manager](i)

	var store quota.Store
	if cfg.Quota.Enabled {
		switch cfg.Quota.StoreType {
		case string(quota.StoreTypeRedis):
			manager, err := do.Invoke[*redis.Manager](i)
			if err != nil {
				return nil, err
			}
			client := manager.Client(cfg.Quota.Redis.Instance)
			if client == nil {
				return nil, fmt.Errorf("redis instance %q is not configured", cfg.Quota.Redis.Instance)
			}
			store = quota.NewRedisStore(client, cfg.Quota.Redis.KeyPrefix)
		default:
			store = quota.NewMemoryStore()
		}
	}

	var opts []quota.Option
	if cfg.Telemetry.Enabled {
		tm, err := do.Invoke[*telemetry.Manager](i)
		if err != nil {
			return nil, err
		}
		otelMetrics := quota.NewOTelMetrics()
		if err := otelMetrics.RegisterMetrics(tm.Meter("quotakit")); err != nil {
			return nil, err
		}
		opts = append(opts, quota.WithOTelMetrics(otelMetrics))
	}

	return quota.NewEngine(cfg.Quota, store, logger.GetLogger("quota"), opts...)
}

func provideProfiles(i do.Injector) (quota.Profiles, error) {
	cfg := do.MustInvoke[*appConfig](i)
	return quota.ProfilesFromConfig(&cfg.Quota)
}

func provideScheduler(i do.Injector) (*scheduler.ResetScheduler, error) {
	engine, err := do.Invoke[*quota.Engine](i)
	if err != nil {
		return nil, err
	}
	return scheduler.NewResetScheduler(engine, logger.GetLogger("scheduler"))
}

func provideServer(i do.Injector) (*server.Server, error) {
	cfg := do.MustInvoke[*appConfig](i)

	engine, err := do.Invoke[*quota.Engine](i)
	if err != nil {
		return nil, err
	}
	profiles, err := do.Invoke[quota.Profiles](i)
	if err != nil {
		return nil, err
	}

	return server.NewServer(cfg.Server, engine, profiles, logger.GetLogger("server")), nil
}
