package quota

import "sync"

// eventBus is the default asynchronous EventBus
type eventBus struct {
	listeners []EventListener
	eventChan chan Event
	closed    bool
	mu        sync.RWMutex
	wg        sync.WaitGroup
}

// NewEventBus creates an event bus with the given channel capacity
func NewEventBus(bufferSize int) EventBus {
	if bufferSize <= 0 {
		bufferSize = 500
	}

	bus := &eventBus{
		listeners: make([]EventListener, 0),
		eventChan: make(chan Event, bufferSize),
	}

	bus.wg.Add(1)
	go bus.dispatch()

	return bus
}

// Subscribe registers a listener for all events
func (b *eventBus) Subscribe(listener EventListener) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.listeners = append(b.listeners, listener)
}

// Publish delivers an event without blocking. When the buffer is full the
// event is dropped; losing an observation must never slow an admission
// decision.
func (b *eventBus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	select {
	case b.eventChan <- event:
	default:
	}
}

// Close stops delivery and waits for the dispatch goroutine
func (b *eventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.eventChan)
	b.mu.Unlock()

	b.wg.Wait()
}

func (b *eventBus) dispatch() {
	defer b.wg.Done()

	for event := range b.eventChan {
		b.mu.RLock()
		listeners := make([]EventListener, len(b.listeners))
		copy(listeners, b.listeners)
		b.mu.RUnlock()

		for _, listener := range listeners {
			// a panicking listener must not take down the bus
			func() {
				defer func() {
					_ = recover()
				}()
				listener.OnEvent(event)
			}()
		}
	}
}
