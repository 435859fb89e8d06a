// Package event provides named-event publish/subscribe for playlist components.
package event

import (
	"sync"

	"github.com/google/uuid"
)

// Type is an event name such as "playlistchange".
type Type string

// Event is delivered to handlers.
type Event struct {
	Type    Type
	Payload any // Event-specific payload, may be nil
}

// Handler handles an event.
type Handler func(Event)

// ListenerID identifies a subscription.
type ListenerID string

// listener represents one subscription.
type listener struct {
	id      ListenerID
	handler Handler
	once    bool
	removed bool
}

// Emitter manages subscriptions and dispatch of named events.
// Handlers run synchronously in subscription order and may subscribe,
// unsubscribe or trigger further events.
type Emitter struct {
	mu        sync.RWMutex
	listeners map[Type][]*listener
}

// NewEmitter creates a new emitter.
func NewEmitter() *Emitter {
	return &Emitter{
		listeners: make(map[Type][]*listener),
	}
}

// On subscribes h to every t event.
func (e *Emitter) On(t Type, h Handler) ListenerID {
	return e.add(t, h, false)
}

// One subscribes h to the next t event only.
func (e *Emitter) One(t Type, h Handler) ListenerID {
	return e.add(t, h, true)
}

func (e *Emitter) add(t Type, h Handler, once bool) ListenerID {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := ListenerID(uuid.New().String())
	e.listeners[t] = append(e.listeners[t], &listener{
		id:      id,
		handler: h,
		once:    once,
	})
	return id
}

// Off removes a subscription. Unknown IDs are ignored.
func (e *Emitter) Off(t Type, id ListenerID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeLocked(t, id)
}

func (e *Emitter) removeLocked(t Type, id ListenerID) bool {
	ls := e.listeners[t]
	for i, l := range ls {
		if l.id == id {
			l.removed = true
			e.listeners[t] = append(ls[:i:i], ls[i+1:]...)
			if len(e.listeners[t]) == 0 {
				delete(e.listeners, t)
			}
			return true
		}
	}
	return false
}

// Trigger delivers an event to the current subscribers of t.
// A subscription removed by an earlier handler is not invoked.
func (e *Emitter) Trigger(t Type, payload any) {
	e.mu.RLock()
	// Copy subscribers to avoid holding the lock during dispatch
	ls := make([]*listener, len(e.listeners[t]))
	copy(ls, e.listeners[t])
	e.mu.RUnlock()

	ev := Event{Type: t, Payload: payload}
	for _, l := range ls {
		if !e.claim(t, l) {
			continue
		}
		l.handler(ev)
	}
}

// claim reports whether l may still run, consuming one-shot subscriptions.
func (e *Emitter) claim(t Type, l *listener) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l.removed {
		return false
	}
	if l.once {
		e.removeLocked(t, l.id)
	}
	return true
}

// ListenerCount returns the number of subscriptions for t.
func (e *Emitter) ListenerCount(t Type) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[t])
}

// Clear removes all subscriptions.
func (e *Emitter) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ls := range e.listeners {
		for _, l := range ls {
			l.removed = true
		}
	}
	e.listeners = make(map[Type][]*listener)
}
