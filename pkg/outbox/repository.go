package outbox

import (
	"context"
	"time"
)

// Repository is the persistence contract the processing engine depends on.
//
// All state transitions for a message go through this interface, which is
// what makes the pattern crash-safe: a restart resumes by calling
// GetUnprocessed again.
//
// GetUnprocessed must return only PENDING messages whose ProcessAfter is
// absent or in the past, ordered by the given priority order (DefaultPriorityOrder
// when nil) and, within a tier, by CreatedAt ascending. This ordering is part
// of the contract, not an implementation detail.
type Repository interface {
	Save(ctx context.Context, msg *Message) (string, error)
	SaveBatch(ctx context.Context, msgs []*Message) ([]string, error)

	GetUnprocessed(ctx context.Context, limit int, priorityOrder []Priority) ([]*Message, error)

	// GetByID can return ErrMessageNotFound.
	GetByID(ctx context.Context, id string) (*Message, error)

	// UpdateStatus sets the status and, when transitioning to FAILED,
	// records cause as the message's last error.
	UpdateStatus(ctx context.Context, id string, status Status, cause error) error
	UpdateStatusBatch(ctx context.Context, ids []string, status Status) error

	// IncrementAttempt returns the attempt count after the increment.
	IncrementAttempt(ctx context.Context, id string) (int, error)

	// GetFailed returns FAILED messages with fewer than maxAttempts attempts,
	// oldest first. Used by the requeue sweep.
	GetFailed(ctx context.Context, limit int, maxAttempts int) ([]*Message, error)

	// Requeue flips a FAILED message back to PENDING with the given
	// eligibility instant.
	Requeue(ctx context.Context, id string, processAfter time.Time) error

	// DeleteByStatusAndAge removes messages in the given status created
	// before olderThan and returns how many were deleted.
	DeleteByStatusAndAge(ctx context.Context, olderThan time.Time, status Status) (int64, error)

	// Schedule saves msg with ProcessAfter set to the given instant.
	Schedule(ctx context.Context, msg *Message, processAfter time.Time) (string, error)
}
