package outbox

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware throttles deliveries through the given limiter.
// Useful when handlers hit an external system with its own quota.
func RateLimitMiddleware(limiter *rate.Limiter) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, msg *Message) error {
			if err := limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limit wait for message %s: %w", msg.ID, err)
			}
			return next(ctx, msg)
		}
	}
}
