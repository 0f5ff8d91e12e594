// Package events fans executed-command results out to observers.
//
// Delivery is synchronous: Publish invokes every registered handler once,
// in registration order, before returning.
package events

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeO7/HarborSim/internal/domain"
	"github.com/MikeO7/HarborSim/pkg/log"
)

// Handler receives events it declares interest in
type Handler interface {
	Handle(event domain.Event) error
	CanHandle(eventType domain.EventType) bool
}

// HandlerFunc adapts a function to Handler for the given event types.
// An empty type list subscribes to everything.
type HandlerFunc struct {
	Types []domain.EventType
	Fn    func(domain.Event) error
}

// Handle calls the wrapped function
func (h *HandlerFunc) Handle(event domain.Event) error {
	return h.Fn(event)
}

// CanHandle reports whether eventType is in the filter
func (h *HandlerFunc) CanHandle(eventType domain.EventType) bool {
	if len(h.Types) == 0 {
		return true
	}
	for _, t := range h.Types {
		if t == eventType {
			return true
		}
	}
	return false
}

// Bus is an in-process, synchronous event bus
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{handlers: make([]Handler, 0)}
}

// Subscribe registers handler and returns a function that removes it
func (b *Bus) Subscribe(handler Handler) func() {
	b.mu.Lock()
	b.handlers = append(b.handlers, handler)
	total := len(b.handlers)
	b.mu.Unlock()

	l := log.Logger()
	l.Debug().
		Str("handler_type", fmt.Sprintf("%T", handler)).
		Int("total_handlers", total).
		Msg("Event handler subscribed")

	return func() {
		_ = b.Unsubscribe(handler)
	}
}

// Unsubscribe removes the first registration of handler
func (b *Bus) Unsubscribe(handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, h := range b.handlers {
		if h == handler {
			b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
			l := log.Logger()
			l.Debug().
				Str("handler_type", fmt.Sprintf("%T", handler)).
				Int("total_handlers", len(b.handlers)).
				Msg("Event handler unsubscribed")
			return nil
		}
	}

	return fmt.Errorf("handler not found")
}

// Len returns the number of registered handlers
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// Publish stamps the event and delivers it to every interested handler.
// Handler errors are logged, never returned.
func (b *Bus) Publish(event domain.Event) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// Copy so handlers may (un)subscribe while being called
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		if !h.CanHandle(event.Type) {
			continue
		}
		if err := h.Handle(event); err != nil {
			l := log.Logger()
			l.Error().
				Err(err).
				Str("event_id", event.ID).
				Str("event_type", string(event.Type)).
				Str("handler_type", fmt.Sprintf("%T", h)).
				Msg("Event handler failed")
		}
	}
}

// PublishSnapshot broadcasts a copy of snapshot
func (b *Bus) PublishSnapshot(snapshot domain.Snapshot) {
	s := snapshot.Clone()
	b.Publish(domain.Event{Type: domain.EventSnapshot, Snapshot: &s})
}

// PublishCommand broadcasts an executed-command triple
func (b *Bus) PublishCommand(cmd domain.CommandExecuted) {
	b.Publish(domain.Event{Type: domain.EventCommand, Command: &cmd})
}
