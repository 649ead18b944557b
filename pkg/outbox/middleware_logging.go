package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LoggingMiddleware logs every delivery with its outcome and duration.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	log := logger.With(zap.String("component", "outbox"))

	return func(next Handler) Handler {
		return func(ctx context.Context, msg *Message) error {
			start := time.Now()
			err := next(ctx, msg)
			fields := []zap.Field{
				zap.String("id", msg.ID),
				zap.String("type", msg.Type),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				log.Error("message delivery failed", append(fields, zap.Error(err))...)
				return err
			}
			log.Debug("message delivered", fields...)
			return nil
		}
	}
}
