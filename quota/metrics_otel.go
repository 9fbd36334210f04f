package quota

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics exports evaluation outcomes as OpenTelemetry counters.
// Optional; the engine works with the in-process MetricsCollector alone.
type OTelMetrics struct {
	meter      metric.Meter
	registered bool
	mu         sync.RWMutex

	requestsTotal metric.Int64Counter
	allowedTotal  metric.Int64Counter
	rejectedTotal metric.Int64Counter
	failOpenTotal metric.Int64Counter
	resetDeleted  metric.Int64Counter
}

// NewOTelMetrics creates an unregistered provider; call RegisterMetrics
// with a Meter before use
func NewOTelMetrics() *OTelMetrics {
	return &OTelMetrics{}
}

// RegisterMetrics creates all instruments on the given Meter. Idempotent.
func (m *OTelMetrics) RegisterMetrics(meter metric.Meter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	m.meter = meter
	var err error

	m.requestsTotal, err = meter.Int64Counter(
		"quota_requests_total",
		metric.WithDescription("Total number of admission evaluations"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	m.allowedTotal, err = meter.Int64Counter(
		"quota_allowed_total",
		metric.WithDescription("Total number of admitted evaluations"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	m.rejectedTotal, err = meter.Int64Counter(
		"quota_rejected_total",
		metric.WithDescription("Total number of rejected evaluations"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	m.failOpenTotal, err = meter.Int64Counter(
		"quota_fail_open_total",
		metric.WithDescription("Total number of fail-open degradations"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	m.resetDeleted, err = meter.Int64Counter(
		"quota_reset_deleted_keys_total",
		metric.WithDescription("Counter keys removed by daily resets"),
		metric.WithUnit("{key}"),
	)
	if err != nil {
		return err
	}

	m.registered = true
	return nil
}

func scopeAttrs(scope Scope) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("scope", string(scope)))
}

// RecordAllowed records an admitted evaluation
func (m *OTelMetrics) RecordAllowed(ctx context.Context, scope Scope) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.registered {
		return
	}
	m.requestsTotal.Add(ctx, 1, scopeAttrs(scope))
	m.allowedTotal.Add(ctx, 1, scopeAttrs(scope))
}

// RecordRejected records a rejected evaluation
func (m *OTelMetrics) RecordRejected(ctx context.Context, scope Scope) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.registered {
		return
	}
	m.requestsTotal.Add(ctx, 1, scopeAttrs(scope))
	m.rejectedTotal.Add(ctx, 1, scopeAttrs(scope))
}

// RecordFailOpen records a fail-open degradation
func (m *OTelMetrics) RecordFailOpen(ctx context.Context, scope Scope) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.registered {
		return
	}
	m.requestsTotal.Add(ctx, 1, scopeAttrs(scope))
	m.failOpenTotal.Add(ctx, 1, scopeAttrs(scope))
}

// RecordResetDeleted records keys removed by a daily reset run
func (m *OTelMetrics) RecordResetDeleted(ctx context.Context, deleted int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.registered {
		return
	}
	m.resetDeleted.Add(ctx, int64(deleted))
}
