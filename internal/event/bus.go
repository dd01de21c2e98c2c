package event

import (
	"fmt"
	"log"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Iron-Ham/superchat/internal/logging"
)

// Wildcard is the subscription key that receives every event.
const Wildcard = "*"

// Handler is a function that handles an event.
type Handler func(Event)

// subscription represents a registered event handler.
type subscription struct {
	id        string
	eventType string
	handler   Handler
}

// Bus is a simple synchronous pub-sub event bus.
// The controller publishes on it and renderers subscribe, so neither
// depends on the other.
type Bus struct {
	mu            sync.RWMutex
	subscriptions map[string][]subscription // eventType -> subscriptions
	nextID        atomic.Uint64
	logger        *logging.Logger
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subscriptions: make(map[string][]subscription),
	}
}

// SetLogger routes handler panics to l instead of the standard logger.
func (b *Bus) SetLogger(l *logging.Logger) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logger = l
}

// Subscribe registers a handler for a specific event type.
// Returns a subscription ID that can be used to unsubscribe.
func (b *Bus) Subscribe(eventType string, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.generateID()
	b.subscriptions[eventType] = append(b.subscriptions[eventType], subscription{
		id:        id,
		eventType: eventType,
		handler:   handler,
	})
	return id
}

// SubscribeAll registers a handler for all event types.
func (b *Bus) SubscribeAll(handler Handler) string {
	return b.Subscribe(Wildcard, handler)
}

// Unsubscribe removes a subscription by ID.
// Returns true if the subscription was found and removed.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscriptions {
		for i, sub := range subs {
			if sub.id == id {
				b.subscriptions[eventType] = append(subs[:i], subs[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Publish dispatches an event to all registered handlers.
// Specific handlers are called first, then wildcard handlers, each group in
// registration order. A panicking handler is recovered and logged, and the
// remaining handlers still run. Publishing on a nil Bus is a no-op.
func (b *Bus) Publish(e Event) {
	if b == nil || e == nil {
		return
	}

	b.mu.RLock()
	eventType := e.EventType()
	specific := make([]subscription, len(b.subscriptions[eventType]))
	copy(specific, b.subscriptions[eventType])
	wildcard := make([]subscription, len(b.subscriptions[Wildcard]))
	copy(wildcard, b.subscriptions[Wildcard])
	logger := b.logger
	b.mu.RUnlock()

	for _, sub := range specific {
		b.safeCall(logger, sub.handler, e)
	}
	for _, sub := range wildcard {
		b.safeCall(logger, sub.handler, e)
	}
}

// safeCall invokes a handler and recovers from any panics.
func (b *Bus) safeCall(logger *logging.Logger, handler Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			if logger != nil {
				logger.Error("event handler panicked",
					"event", e.EventType(),
					"panic", fmt.Sprint(r),
					"stack", string(debug.Stack()))
				return
			}
			log.Printf("ERROR: event handler panicked for event %s: %v\n%s",
				e.EventType(), r, debug.Stack())
		}
	}()
	handler(e)
}

func (b *Bus) generateID() string {
	return "sub-" + strconv.FormatUint(b.nextID.Add(1), 10)
}

// Clear removes all subscriptions.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions = make(map[string][]subscription)
}

// SubscriptionCount returns the total number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, subs := range b.subscriptions {
		count += len(subs)
	}
	return count
}
