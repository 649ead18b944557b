package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func TestChain_Order(t *testing.T) {
	t.Run("first registered middleware is the outermost wrapper", func(t *testing.T) {
		var calls []string

		mw := func(name string) Middleware {
			return func(next Handler) Handler {
				return func(ctx context.Context, msg *Message) error {
					calls = append(calls, name+":before")
					err := next(ctx, msg)
					calls = append(calls, name+":after")
					return err
				}
			}
		}
		base := func(ctx context.Context, msg *Message) error {
			calls = append(calls, "handler")
			return nil
		}

		deliver := Chain(base, mw("A"), mw("B"))
		require.NoError(t, deliver(context.Background(), &Message{ID: "m1"}))

		assert.Equal(t, []string{"A:before", "B:before", "handler", "B:after", "A:after"}, calls)
	})

	t.Run("empty chain is the handler itself", func(t *testing.T) {
		called := false
		base := func(ctx context.Context, msg *Message) error {
			called = true
			return nil
		}

		require.NoError(t, Chain(base)(context.Background(), &Message{}))
		assert.True(t, called)
	})
}

func TestRecoverMiddleware(t *testing.T) {
	t.Run("converts panic to error", func(t *testing.T) {
		panicking := func(ctx context.Context, msg *Message) error {
			panic("boom")
		}

		err := Chain(panicking, RecoverMiddleware())(context.Background(), &Message{ID: "m1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
		assert.Contains(t, err.Error(), "m1")
	})

	t.Run("passes through success", func(t *testing.T) {
		ok := func(ctx context.Context, msg *Message) error { return nil }
		assert.NoError(t, Chain(ok, RecoverMiddleware())(context.Background(), &Message{}))
	})
}

func TestTimeoutMiddleware(t *testing.T) {
	t.Run("fails a delivery that exceeds the timeout", func(t *testing.T) {
		slow := func(ctx context.Context, msg *Message) error {
			select {
			case <-time.After(time.Second):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := Chain(slow, TimeoutMiddleware(10*time.Millisecond))(context.Background(), &Message{ID: "m1"})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("passes through a fast delivery", func(t *testing.T) {
		fast := func(ctx context.Context, msg *Message) error { return nil }
		assert.NoError(t, Chain(fast, TimeoutMiddleware(time.Second))(context.Background(), &Message{}))
	})

	t.Run("does not wait for a handler that ignores its context", func(t *testing.T) {
		stuck := make(chan struct{})
		defer close(stuck)
		hanging := func(ctx context.Context, msg *Message) error {
			<-stuck
			return nil
		}

		start := time.Now()
		err := Chain(hanging, TimeoutMiddleware(10*time.Millisecond))(context.Background(), &Message{ID: "m1"})
		require.Error(t, err)
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})
}

func TestLoggingMiddleware(t *testing.T) {
	t.Run("passes the handler result through", func(t *testing.T) {
		failure := errors.New("delivery broke")
		failing := func(ctx context.Context, msg *Message) error { return failure }

		err := Chain(failing, LoggingMiddleware(zap.NewNop()))(context.Background(), &Message{ID: "m1"})
		assert.ErrorIs(t, err, failure)

		ok := func(ctx context.Context, msg *Message) error { return nil }
		assert.NoError(t, Chain(ok, LoggingMiddleware(zap.NewNop()))(context.Background(), &Message{}))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("lets deliveries through within the limit", func(t *testing.T) {
		limiter := rate.NewLimiter(rate.Inf, 1)
		ok := func(ctx context.Context, msg *Message) error { return nil }

		assert.NoError(t, Chain(ok, RateLimitMiddleware(limiter))(context.Background(), &Message{}))
	})

	t.Run("fails when the context expires while waiting", func(t *testing.T) {
		limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
		limiter.Allow() // drain the burst

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		ok := func(ctx context.Context, msg *Message) error { return nil }
		err := Chain(ok, RateLimitMiddleware(limiter))(ctx, &Message{ID: "m1"})
		assert.Error(t, err)
	})
}

func TestMetricsMiddleware(t *testing.T) {
	t.Run("builds against the global meter and passes results through", func(t *testing.T) {
		mw, err := MetricsMiddleware()
		require.NoError(t, err)

		failure := errors.New("nope")
		failing := func(ctx context.Context, msg *Message) error { return failure }
		assert.ErrorIs(t, Chain(failing, mw)(context.Background(), &Message{Type: "t"}), failure)

		ok := func(ctx context.Context, msg *Message) error { return nil }
		assert.NoError(t, Chain(ok, mw)(context.Background(), &Message{Type: "t"}))
	})
}

func TestTracingMiddleware(t *testing.T) {
	t.Run("passes results through with the noop tracer", func(t *testing.T) {
		mw := TracingMiddleware()

		failure := errors.New("nope")
		failing := func(ctx context.Context, msg *Message) error { return failure }
		assert.ErrorIs(t, Chain(failing, mw)(context.Background(), &Message{ID: "m1", Priority: PriorityNormal}), failure)

		ok := func(ctx context.Context, msg *Message) error { return nil }
		assert.NoError(t, Chain(ok, mw)(context.Background(), &Message{ID: "m2", Priority: PriorityHigh}))
	})
}
