package outbox

import "errors"

var (
	// ErrHandlerNotFound is returned when a message's type has no registered handler.
	ErrHandlerNotFound = errors.New("no handler registered for message type")

	// ErrMessageNotFound is returned by repositories when an id does not exist.
	ErrMessageNotFound = errors.New("outbox message not found")

	ErrMessageTypeRequired      = errors.New("message type is required")
	ErrHandlerRequired          = errors.New("handler is required")
	ErrHandlerAlreadyRegistered = errors.New("handler already registered for message type")
	ErrInvalidStatus            = errors.New("invalid outbox status")
	ErrInvalidTransition        = errors.New("invalid outbox status transition")
)
