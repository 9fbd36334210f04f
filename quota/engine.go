// Package quota is the admission-control engine: it decides, for every
// inbound request and metered action, whether the caller may proceed, and
// enforces per-scope ceilings through atomic operations on a shared
// counter store.
//
// Design notes:
//   - The engine holds no authoritative state; the counter store is the
//     single source of truth and is never locked. Correctness under
//     concurrency rests entirely on the store's per-key atomic increment.
//   - Counters are fixed-window: the TTL is armed on the first increment
//     of a window and left alone afterwards. A caller can therefore burst
//     up to 2x the ceiling across a window boundary. Known limitation,
//     kept deliberately over a sliding-window scheme.
//   - Store failures fail OPEN. Quota enforcement is a cost guard rail,
//     not a safety gate; an outage degrades to "no limiting", never to
//     "service unavailable".
package quota

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/recallio/quotakit/logger"
)

// Engine evaluates admission for scope keys against rules. Construct one
// per process at startup and pass it by reference; it is safe for
// concurrent use from any number of request handlers.
type Engine struct {
	config   Config
	store    Store
	logger   *logger.CtxZapLogger
	eventBus EventBus
	metrics  *MetricsCollector
	otel     *OTelMetrics
	now      func() time.Time
}

// Option customizes engine construction
type Option func(*Engine)

// WithClock injects the time source, for tests with frozen clocks
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithOTelMetrics attaches an OpenTelemetry exporter for evaluation
// outcomes
func WithOTelMetrics(m *OTelMetrics) Option {
	return func(e *Engine) {
		e.otel = m
	}
}

// NewEngine creates an admission-control engine.
// store may be nil only when cfg.Enabled is false.
// log must not be nil; the fail-open path depends on it.
func NewEngine(cfg Config, store Store, log *logger.CtxZapLogger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetLogger("quota")
	}

	if cfg.Enabled && store == nil {
		return nil, &ValidationError{Field: "store", Message: "store is required when enforcement is enabled"}
	}

	e := &Engine{
		config:  cfg,
		store:   store,
		logger:  log,
		metrics: NewMetricsCollector(),
		now:     time.Now,
	}

	if cfg.Enabled {
		e.eventBus = NewEventBus(cfg.EventBusBuffer)
	}

	for _, opt := range opts {
		opt(e)
	}

	log.Debug("✅ admission-control engine ready",
		zap.Bool("enabled", cfg.Enabled),
		zap.String("store_type", cfg.StoreType))

	return e, nil
}

// IsEnabled reports whether enforcement is active
func (e *Engine) IsEnabled() bool {
	return e.config.Enabled
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.config
}

// EventBus returns the bus for subscribing to engine events; nil when the
// engine is disabled
func (e *Engine) EventBus() EventBus {
	return e.eventBus
}

// Metrics returns the in-process metrics collector
func (e *Engine) Metrics() *MetricsCollector {
	return e.metrics
}

// Evaluate runs one admission check of key against rule.
//
// It never returns an error: rejection is a verdict, and infrastructure
// failure degrades to an allowed verdict with FailOpen set (logged at
// warn level and counted, so operators see store degradation without any
// user-visible impact).
func (e *Engine) Evaluate(ctx context.Context, key string, rule Rule) *Verdict {
	return e.evaluate(ctx, key, rule, false)
}

// EvaluateAction runs one admission check for a calendar-day action scope.
// The day suffix comes from the engine clock in UTC, and the resulting
// key is tracked in the daily index so the reset job can find it.
// The only error condition is an empty identity (programmer error).
func (e *Engine) EvaluateAction(ctx context.Context, action Action, identity string, rule Rule) (*Verdict, error) {
	key, err := ActionKey(action, identity, e.now())
	if err != nil {
		return nil, err
	}
	return e.evaluate(ctx, key, rule, true), nil
}

func (e *Engine) evaluate(ctx context.Context, key string, rule Rule, trackDaily bool) *Verdict {
	// disabled engine: no store access at all
	if !e.config.Enabled {
		return &Verdict{Allowed: true, Unlimited: true}
	}

	// unlimited fast path: no store access
	if rule.Unlimited() {
		return &Verdict{Allowed: true, Unlimited: true}
	}

	scope := ScopeFromKey(key)

	count, err := e.storeIncr(ctx, key)
	if err != nil {
		return e.failOpen(ctx, key, scope, rule, err)
	}

	ttl, err := e.storeTTL(ctx, key)
	if err != nil {
		return e.failOpen(ctx, key, scope, rule, err)
	}

	// Brand-new key (INCR does not auto-expire) or a counter that lost
	// its TTL: arm the window now. A concurrent caller may do the same;
	// both write the same value, so the race costs at most one window
	// length of drift, never correctness.
	if ttl <= 0 {
		if err := e.storeExpire(ctx, key, rule.Window); err != nil {
			return e.failOpen(ctx, key, scope, rule, err)
		}
		ttl = rule.Window
	}

	now := e.now()
	allowed := count <= rule.Limit
	remaining := rule.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	verdict := &Verdict{
		Allowed:   allowed,
		Limit:     rule.Limit,
		Remaining: remaining,
		ResetAt:   now.Add(ttl),
	}
	if !allowed {
		verdict.RetryAfter = ttl
	}

	// Best-effort: a failed index write only delays cleanup until the
	// key's own TTL, never the admission decision.
	if trackDaily {
		if err := e.storeSAdd(ctx, DailyIndexKey, key); err != nil {
			e.logger.WarnCtx(ctx, "daily index add failed",
				zap.String("key", key),
				zap.Error(err))
		}
	}

	e.observe(ctx, key, scope, verdict)
	return verdict
}

func (e *Engine) observe(ctx context.Context, key string, scope Scope, v *Verdict) {
	if v.Allowed {
		e.metrics.RecordAllowed(scope)
		if e.otel != nil {
			e.otel.RecordAllowed(ctx, scope)
		}
		if e.eventBus != nil {
			e.eventBus.Publish(&AllowedEvent{
				BaseEvent: NewBaseEvent(EventAllowed, key),
				Remaining: v.Remaining,
				Limit:     v.Limit,
			})
		}
		return
	}

	e.metrics.RecordRejected(scope)
	if e.otel != nil {
		e.otel.RecordRejected(ctx, scope)
	}
	if e.eventBus != nil {
		e.eventBus.Publish(&RejectedEvent{
			BaseEvent:  NewBaseEvent(EventRejected, key),
			RetryAfter: v.RetryAfter,
			Limit:      v.Limit,
		})
	}
}

// failOpen builds the degraded always-allow verdict for a store failure
func (e *Engine) failOpen(ctx context.Context, key string, scope Scope, rule Rule, err error) *Verdict {
	e.logger.WarnCtx(ctx, "⚠️ counter store unreachable, failing open",
		zap.String("key", key),
		zap.Error(err))

	e.metrics.RecordFailOpen(scope)
	if e.otel != nil {
		e.otel.RecordFailOpen(ctx, scope)
	}
	if e.eventBus != nil {
		e.eventBus.Publish(&FailOpenEvent{
			BaseEvent: NewBaseEvent(EventFailOpen, key),
			Err:       err,
		})
	}

	return &Verdict{
		Allowed:   true,
		FailOpen:  true,
		Limit:     rule.Limit,
		Remaining: rule.Limit,
		ResetAt:   e.now().Add(rule.Window),
	}
}

// Close releases the engine's resources
func (e *Engine) Close() error {
	if e.eventBus != nil {
		e.eventBus.Close()
	}
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// Each store round trip carries its own bounded deadline; a timeout is a
// store failure like any other and fails open.

func (e *Engine) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.config.OpTimeout)
}

func (e *Engine) storeIncr(ctx context.Context, key string) (int64, error) {
	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	return e.store.Incr(opCtx, key)
}

func (e *Engine) storeTTL(ctx context.Context, key string) (time.Duration, error) {
	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	return e.store.TTL(opCtx, key)
}

func (e *Engine) storeExpire(ctx context.Context, key string, ttl time.Duration) error {
	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	return e.store.Expire(opCtx, key, ttl)
}

func (e *Engine) storeSAdd(ctx context.Context, key string, members ...string) error {
	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	return e.store.SAdd(opCtx, key, members...)
}
