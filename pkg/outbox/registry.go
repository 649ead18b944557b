package outbox

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Handler delivers one outbox message and reports success or failure.
// Handlers must tolerate duplicate delivery: the engine is at-least-once.
type Handler func(ctx context.Context, msg *Message) error

// HandlerRegistry maps message types to handlers.
//
// Registration happens at setup time, before the processor starts; the
// processor treats the registry as a fixed lookup during a run. Each
// processor owns its own registry, there is no process-wide one.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]Handler)}
}

// Register binds a handler to a message type. Registering the same type
// twice is an error so a misconfiguration surfaces at setup time.
func (r *HandlerRegistry) Register(messageType string, handler Handler) error {
	messageType = strings.TrimSpace(messageType)
	if messageType == "" {
		return ErrMessageTypeRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[messageType]; exists {
		return fmt.Errorf("%w: %s", ErrHandlerAlreadyRegistered, messageType)
	}
	r.handlers[messageType] = handler
	return nil
}

// Resolve returns the handler for the given message type.
// A miss is an error, not a no-op: a message without a handler would
// otherwise be retried forever without progress.
func (r *HandlerRegistry) Resolve(messageType string) (Handler, error) {
	r.mu.RLock()
	handler, ok := r.handlers[messageType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, messageType)
	}
	return handler, nil
}

// Types returns the registered message types in sorted order.
func (r *HandlerRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := lo.Keys(r.handlers)
	sort.Strings(types)
	return types
}
