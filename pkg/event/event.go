// Package event holds the integration event model shared by producers and
// the outbox factory.
package event

import (
	"time"
)

// IntegrationEvent is a fact about a completed domain change, intended for
// consumers outside the owning service. Payload is an opaque serialized body;
// Metadata carries correlation and tracing values.
type IntegrationEvent struct {
	Type       string
	Payload    []byte
	Metadata   map[string]any
	OccurredAt time.Time
}

// New creates an integration event stamped with the current time.
func New(eventType string, payload []byte, metadata map[string]any) *IntegrationEvent {
	return &IntegrationEvent{
		Type:       eventType,
		Payload:    payload,
		Metadata:   metadata,
		OccurredAt: time.Now().UTC(),
	}
}
