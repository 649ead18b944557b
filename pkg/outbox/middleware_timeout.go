package outbox

import (
	"context"
	"fmt"
	"time"
)

// TimeoutMiddleware bounds a single handler invocation. The handler runs in
// its own goroutine so a handler that ignores its context still cannot stall
// the tick; such a handler keeps its goroutine until it returns.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, msg *Message) error {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- next(ctx, msg)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				return fmt.Errorf("delivery of message %s timed out after %s: %w", msg.ID, timeout, ctx.Err())
			}
		}
	}
}
