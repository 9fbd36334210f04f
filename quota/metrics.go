package quota

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsSnapshot is a point-in-time view of one scope's counters
type MetricsSnapshot struct {
	Scope         Scope
	TotalRequests int64
	Allowed       int64
	Rejected      int64
	FailOpen      int64
	RejectRate    float64
	LastResetAt   time.Time
}

// MetricsCollector aggregates evaluation outcomes per scope. Keyed by
// scope rather than scope key to keep cardinality bounded.
type MetricsCollector struct {
	mu     sync.RWMutex
	scopes map[Scope]*scopeCounters
}

type scopeCounters struct {
	total       int64
	allowed     int64
	rejected    int64
	failOpen    int64
	lastResetAt time.Time
}

// NewMetricsCollector creates an empty collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		scopes: make(map[Scope]*scopeCounters),
	}
}

func (m *MetricsCollector) counters(scope Scope) *scopeCounters {
	m.mu.RLock()
	c, ok := m.scopes[scope]
	m.mu.RUnlock()
	if ok {
		return c
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok = m.scopes[scope]; ok {
		return c
	}
	c = &scopeCounters{lastResetAt: time.Now()}
	m.scopes[scope] = c
	return c
}

// RecordAllowed counts an admitted evaluation
func (m *MetricsCollector) RecordAllowed(scope Scope) {
	c := m.counters(scope)
	atomic.AddInt64(&c.total, 1)
	atomic.AddInt64(&c.allowed, 1)
}

// RecordRejected counts a rejected evaluation
func (m *MetricsCollector) RecordRejected(scope Scope) {
	c := m.counters(scope)
	atomic.AddInt64(&c.total, 1)
	atomic.AddInt64(&c.rejected, 1)
}

// RecordFailOpen counts a fail-open degradation
func (m *MetricsCollector) RecordFailOpen(scope Scope) {
	c := m.counters(scope)
	atomic.AddInt64(&c.total, 1)
	atomic.AddInt64(&c.failOpen, 1)
}

// Snapshot returns the current counters for one scope
func (m *MetricsCollector) Snapshot(scope Scope) *MetricsSnapshot {
	m.mu.RLock()
	c, ok := m.scopes[scope]
	m.mu.RUnlock()

	if !ok {
		return &MetricsSnapshot{Scope: scope}
	}

	total := atomic.LoadInt64(&c.total)
	allowed := atomic.LoadInt64(&c.allowed)
	rejected := atomic.LoadInt64(&c.rejected)
	failOpen := atomic.LoadInt64(&c.failOpen)

	var rejectRate float64
	if total > 0 {
		rejectRate = float64(rejected) / float64(total)
	}

	return &MetricsSnapshot{
		Scope:         scope,
		TotalRequests: total,
		Allowed:       allowed,
		Rejected:      rejected,
		FailOpen:      failOpen,
		RejectRate:    rejectRate,
		LastResetAt:   c.lastResetAt,
	}
}

// Reset zeroes one scope's counters
func (m *MetricsCollector) Reset(scope Scope) {
	c := m.counters(scope)
	atomic.StoreInt64(&c.total, 0)
	atomic.StoreInt64(&c.allowed, 0)
	atomic.StoreInt64(&c.rejected, 0)
	atomic.StoreInt64(&c.failOpen, 0)

	m.mu.Lock()
	c.lastResetAt = time.Now()
	m.mu.Unlock()
}
