package outbox

import (
	"time"

	"github.com/google/uuid"

	"github.com/quiverlabs/platform-commons/pkg/event"
)

// IntegrationEventTypePrefix is prepended to the event type when an outbox
// message is derived from an integration event.
const IntegrationEventTypePrefix = "integration_event:"

// MessageOption customizes a message produced by the factory.
type MessageOption func(*Message)

func WithMetadata(metadata map[string]any) MessageOption {
	return func(m *Message) {
		m.Metadata = metadata
	}
}

func WithPriority(priority Priority) MessageOption {
	return func(m *Message) {
		m.Priority = priority
	}
}

func WithProcessAfter(processAfter time.Time) MessageOption {
	return func(m *Message) {
		m.ProcessAfter = &processAfter
	}
}

func WithDelay(delay time.Duration) MessageOption {
	return func(m *Message) {
		processAfter := time.Now().UTC().Add(delay)
		m.ProcessAfter = &processAfter
	}
}

// NewMessage creates a pending message with a fresh id, normal priority and
// zero attempts. The factory never touches the repository.
func NewMessage(messageType string, payload []byte, opts ...MessageOption) *Message {
	msg := &Message{
		ID:        uuid.NewString(),
		Type:      messageType,
		Payload:   payload,
		Status:    StatusPending,
		Priority:  PriorityNormal,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(msg)
	}
	return msg
}

// NewDelayedMessage creates a message that is not eligible for delivery
// before now + delay.
func NewDelayedMessage(messageType string, payload []byte, delay time.Duration, opts ...MessageOption) *Message {
	return NewMessage(messageType, payload, append([]MessageOption{WithDelay(delay)}, opts...)...)
}

// NewHighPriorityMessage creates a message in the HIGH priority tier.
func NewHighPriorityMessage(messageType string, payload []byte, opts ...MessageOption) *Message {
	return NewMessage(messageType, payload, append([]MessageOption{WithPriority(PriorityHigh)}, opts...)...)
}

// FromIntegrationEvent derives a message from an integration event. The
// message type becomes "integration_event:<eventType>" and the event's
// payload and metadata are carried over; explicitly supplied metadata wins
// over event metadata on key collision.
func FromIntegrationEvent(ev *event.IntegrationEvent, metadata map[string]any, opts ...MessageOption) *Message {
	merged := make(map[string]any, len(ev.Metadata)+len(metadata))
	for k, v := range ev.Metadata {
		merged[k] = v
	}
	for k, v := range metadata {
		merged[k] = v
	}

	return NewMessage(
		IntegrationEventTypePrefix+ev.Type,
		ev.Payload,
		append([]MessageOption{WithMetadata(merged)}, opts...)...,
	)
}
