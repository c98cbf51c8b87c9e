package event

import (
	"sync"

	"github.com/erpbridge/backend/internal/domain/shared"
)

// wildcardKey collects handlers that receive every event type
const wildcardKey = "*"

// HandlerRegistry maps event types to handlers
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string][]shared.EventHandler)}
}

// Register adds a handler for the given event types, or for all events when none are given.
// Registering the same handler twice for a type is a no-op.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = []string{wildcardKey}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, eventType := range eventTypes {
		if containsHandler(r.handlers[eventType], handler) {
			continue
		}
		r.handlers[eventType] = append(r.handlers[eventType], handler)
	}
}

// Unregister removes a handler from every event type
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for eventType, handlers := range r.handlers {
		kept := handlers[:0:0]
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		if len(kept) == 0 {
			delete(r.handlers, eventType)
			continue
		}
		r.handlers[eventType] = kept
	}
}

// GetHandlers returns the handlers for an event type followed by the wildcard handlers
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typed := r.handlers[eventType]
	wildcard := r.handlers[wildcardKey]
	result := make([]shared.EventHandler, 0, len(typed)+len(wildcard))
	result = append(result, typed...)
	return append(result, wildcard...)
}

// EventTypes returns the event types with at least one dedicated handler
func (r *HandlerRegistry) EventTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.handlers))
	for eventType := range r.handlers {
		if eventType != wildcardKey {
			types = append(types, eventType)
		}
	}
	return types
}

func containsHandler(handlers []shared.EventHandler, target shared.EventHandler) bool {
	for _, h := range handlers {
		if h == target {
			return true
		}
	}
	return false
}
