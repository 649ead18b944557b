package outbox

import (
	"context"
	"fmt"
)

// RecoverMiddleware converts a handler panic into a delivery failure so a
// panicking handler fails its own message instead of killing the tick.
func RecoverMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, msg *Message) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("handler panic for message %s: %v", msg.ID, r)
				}
			}()
			return next(ctx, msg)
		}
	}
}
