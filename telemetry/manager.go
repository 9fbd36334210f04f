// Package telemetry owns the OpenTelemetry metric provider lifecycle.
// The quota engine's counters register against the Meter this package
// hands out.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"

	"github.com/recallio/quotakit/logger"
)

// Manager owns the MeterProvider. Disabled telemetry leaves the global
// no-op provider in place; callers never need to branch.
type Manager struct {
	config   Config
	logger   *logger.CtxZapLogger
	provider *sdkmetric.MeterProvider
	mu       sync.Mutex
}

// NewManager creates an unstarted telemetry manager
func NewManager(cfg Config, log *logger.CtxZapLogger) *Manager {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetLogger("telemetry")
	}
	return &Manager{
		config: cfg,
		logger: log,
	}
}

// Start installs the metric provider globally. No-op when disabled.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.config.Enabled {
		m.logger.DebugCtx(ctx, "telemetry disabled, skipping provider setup")
		return nil
	}
	if m.provider != nil {
		return nil
	}

	exporter, err := stdoutmetric.New()
	if err != nil {
		return err
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(m.config.ServiceName),
	))
	if err != nil {
		return err
	}

	m.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(m.config.ExportInterval))),
	)
	otel.SetMeterProvider(m.provider)

	m.logger.InfoCtx(ctx, "✅ telemetry started",
		zap.String("service_name", m.config.ServiceName),
		zap.Duration("export_interval", m.config.ExportInterval))
	return nil
}

// Meter returns a named meter from the managed provider, falling back
// to the global provider before Start
func (m *Manager) Meter(name string) metric.Meter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.provider != nil {
		return m.provider.Meter(name)
	}
	return otel.GetMeterProvider().Meter(name)
}

// Shutdown flushes pending exports and releases the provider.
// Satisfies do.Shutdownable so the injector tears telemetry down last.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.provider == nil {
		return nil
	}
	err := m.provider.Shutdown(context.Background())
	m.provider = nil
	return err
}
