// Package bus is a minimal named-event publish/subscribe channel with
// process lifetime. It exists to decouple the HTTP transport layer from the
// session manager: the transport publishes "unauthorized" without holding a
// reference to session state, and the session manager reacts.
package bus

import "sync"

// EventUnauthorized is published when a request is rejected with 401. The
// payload is an advisory, human-readable reason string.
const EventUnauthorized = "unauthorized"

// Handler receives the reason string of a published event.
type Handler func(reason string)

// Bus dispatches events synchronously to all current subscribers. Zero
// subscribers is not an error; the event is simply dropped.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]Handler
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[string]map[int]Handler)}
}

// Subscribe registers a handler for the named event and returns a function
// that removes it. Long-lived components should subscribe once at
// construction; re-subscribing on every consumer rebuild grows the handler
// set without bound.
func (b *Bus) Subscribe(event string, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	if b.subs[event] == nil {
		b.subs[event] = make(map[int]Handler)
	}
	b.subs[event][id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[event], id)
	}
}

// Publish delivers the event to every current subscriber, synchronously, on
// the caller's goroutine. Fire-and-forget: there is no delivery report.
func (b *Bus) Publish(event, reason string) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[event]))
	for _, fn := range b.subs[event] {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()
	for _, fn := range handlers {
		fn(reason)
	}
}

// SubscriberCount reports how many handlers are registered for an event.
func (b *Bus) SubscriberCount(event string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[event])
}
