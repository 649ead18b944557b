package outbox

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsMiddleware records delivery counts and durations per message type.
func MetricsMiddleware() (Middleware, error) {
	meter := otel.Meter("outbox.processor")

	delivered, err := meter.Int64Counter("outbox.messages.delivered",
		metric.WithDescription("Messages delivered successfully"))
	if err != nil {
		return nil, fmt.Errorf("init delivered counter: %w", err)
	}

	failed, err := meter.Int64Counter("outbox.messages.failed",
		metric.WithDescription("Message deliveries that failed"))
	if err != nil {
		return nil, fmt.Errorf("init failed counter: %w", err)
	}

	duration, err := meter.Float64Histogram("outbox.delivery.duration",
		metric.WithDescription("Delivery duration in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("init duration histogram: %w", err)
	}

	mw := func(next Handler) Handler {
		return func(ctx context.Context, msg *Message) error {
			start := time.Now()
			err := next(ctx, msg)

			attrs := metric.WithAttributes(attribute.String("outbox.message.type", msg.Type))
			duration.Record(ctx, time.Since(start).Seconds(), attrs)
			if err != nil {
				failed.Add(ctx, 1, attrs)
			} else {
				delivered.Add(ctx, 1, attrs)
			}
			return err
		}
	}
	return mw, nil
}
