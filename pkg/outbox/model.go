package outbox

import (
	"time"
)

// Status is the lifecycle state of an outbox message.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusProcessed  Status = "PROCESSED"
	StatusFailed     Status = "FAILED"
)

// IsValid reports whether the status is part of the message lifecycle.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusProcessed, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the processor never moves a message out of this status.
// FAILED is terminal for the processor itself; only a requeue sweep flips it back.
func (s Status) IsTerminal() bool {
	return s == StatusProcessed || s == StatusFailed
}

// CanTransitionTo reports whether a transition from s to next is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusProcessed || next == StatusFailed
	case StatusFailed:
		// Requeue sweep only.
		return next == StatusPending
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// Priority orders selection among eligible pending messages.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityNormal   Priority = "NORMAL"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// DefaultPriorityOrder is the selection order stores use when the caller passes none.
func DefaultPriorityOrder() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityNormal, PriorityLow}
}

// IsValid reports whether the priority is one of the known tiers.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// Rank returns the position of the priority in the default order. Lower sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityNormal:
		return 2
	default:
		return 3
	}
}

func (p Priority) String() string {
	return string(p)
}

// Message is a record of work to deliver through the outbox.
//
// The processor only ever mutates Status, Attempts and LastError, and only
// through the Repository. Payload is opaque to the engine and interpreted by
// the handler registered for Type.
type Message struct {
	ID           string
	Type         string
	Payload      []byte
	Metadata     map[string]any
	Status       Status
	Attempts     int
	CreatedAt    time.Time
	ProcessAfter *time.Time
	Priority     Priority
	LastError    string
}

// Eligible reports whether the message may be selected for delivery at the given instant.
func (m *Message) Eligible(now time.Time) bool {
	if m.Status != StatusPending {
		return false
	}
	return m.ProcessAfter == nil || !m.ProcessAfter.After(now)
}
