package outbox

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware starts a consumer span around each delivery.
func TracingMiddleware() Middleware {
	tracer := otel.Tracer("outbox.processor")

	return func(next Handler) Handler {
		return func(ctx context.Context, msg *Message) error {
			ctx, span := tracer.Start(ctx, "outbox.process",
				trace.WithSpanKind(trace.SpanKindConsumer),
				trace.WithAttributes(
					attribute.String("messaging.message.id", msg.ID),
					attribute.String("outbox.message.type", msg.Type),
					attribute.String("outbox.message.priority", msg.Priority.String()),
					attribute.Int("outbox.message.attempts", msg.Attempts),
				),
			)
			defer span.End()

			err := next(ctx, msg)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return err
		}
	}
}
