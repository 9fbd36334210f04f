package quota

import "time"

// EventType identifies an engine event
type EventType string

const (
	// EventAllowed an evaluation admitted the caller
	EventAllowed EventType = "allowed"

	// EventRejected an evaluation rejected the caller. Expected and
	// frequent; an observability signal, never an error condition.
	EventRejected EventType = "rejected"

	// EventFailOpen the store failed and the engine degraded to allow
	EventFailOpen EventType = "fail_open"

	// EventDailyReset the daily bulk reset completed
	EventDailyReset EventType = "daily_reset"
)

// Event is one engine observation published on the bus
type Event interface {
	Type() EventType
	Key() string
	Timestamp() time.Time
}

// BaseEvent carries the fields shared by all events
type BaseEvent struct {
	eventType EventType
	key       string
	timestamp time.Time
}

// NewBaseEvent creates a base event stamped now
func NewBaseEvent(eventType EventType, key string) BaseEvent {
	return BaseEvent{
		eventType: eventType,
		key:       key,
		timestamp: time.Now(),
	}
}

// Type returns the event type
func (e *BaseEvent) Type() EventType {
	return e.eventType
}

// Key returns the scope key the event concerns (empty for resets)
func (e *BaseEvent) Key() string {
	return e.key
}

// Timestamp returns when the event was published
func (e *BaseEvent) Timestamp() time.Time {
	return e.timestamp
}

// AllowedEvent is published for each admitted evaluation
type AllowedEvent struct {
	BaseEvent
	Remaining int64
	Limit     int64
}

// RejectedEvent is published for each rejected evaluation
type RejectedEvent struct {
	BaseEvent
	RetryAfter time.Duration
	Limit      int64
}

// FailOpenEvent is published when a store failure forces fail-open
type FailOpenEvent struct {
	BaseEvent
	Err error
}

// DailyResetEvent is published after a daily bulk reset run
type DailyResetEvent struct {
	BaseEvent
	Deleted int
}

// EventListener receives engine events
type EventListener interface {
	OnEvent(event Event)
}

// EventListenerFunc adapts a function to EventListener
type EventListenerFunc func(event Event)

// OnEvent implements EventListener
func (f EventListenerFunc) OnEvent(event Event) {
	f(event)
}

// EventBus decouples the engine from its observers
type EventBus interface {
	// Subscribe registers a listener for all events
	Subscribe(listener EventListener)

	// Publish delivers an event asynchronously; drops when the buffer
	// is full rather than blocking an evaluation
	Publish(event Event)

	// Close stops delivery and releases the bus
	Close()
}
