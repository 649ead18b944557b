package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Requeuer is the retry-scheduling half the processor deliberately does not
// do: it periodically flips FAILED messages that are still below the attempt
// limit back to PENDING, pushing each one's eligibility into the future with
// an exponential per-attempt backoff.
type Requeuer struct {
	repo Repository
	conf RequeueConfig
	log  *zap.Logger
}

func NewRequeuer(repo Repository, logger *zap.Logger, conf RequeueConfig) *Requeuer {
	return &Requeuer{
		repo: repo,
		conf: conf,
		log:  logger.With(zap.String("component", "outbox-requeuer")),
	}
}

// RequeueOnce runs a single sweep and returns how many messages were
// requeued. A failure to requeue one message does not abort the sweep.
func (r *Requeuer) RequeueOnce(ctx context.Context) (int, error) {
	msgs, err := r.repo.GetFailed(ctx, r.conf.BatchSize, r.conf.MaxAttempts)
	if err != nil {
		return 0, fmt.Errorf("fetch failed messages: %w", err)
	}

	now := time.Now().UTC()
	requeued := 0
	for _, msg := range msgs {
		if ctx.Err() != nil {
			break
		}

		processAfter := now.Add(r.backoffFor(msg.Attempts))
		if err := r.repo.Requeue(ctx, msg.ID, processAfter); err != nil {
			r.log.Error("failed to requeue message",
				zap.String("id", msg.ID), zap.Error(err))
			continue
		}
		requeued++
	}

	if requeued > 0 {
		r.log.Info("requeued failed messages", zap.Int("count", requeued))
	}
	return requeued, nil
}

// backoffFor returns the delay before a message with the given attempt
// count becomes eligible again: initial * 2^(attempts-1), capped.
func (r *Requeuer) backoffFor(attempts int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.conf.InitialBackoff
	b.MaxInterval = r.conf.MaxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.Reset()

	delay := b.NextBackOff()
	for i := 1; i < attempts; i++ {
		delay = b.NextBackOff()
	}
	return delay
}

// Run executes sweeps on the configured interval until ctx is cancelled.
// When requeueing is disabled it returns immediately.
func (r *Requeuer) Run(ctx context.Context) error {
	if !r.conf.Enabled {
		r.log.Info("requeuer disabled")
		return nil
	}

	ticker := time.NewTicker(r.conf.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := r.RequeueOnce(ctx); err != nil {
				r.log.Error("requeue sweep failed", zap.Error(err))
			}
		}
	}
}
