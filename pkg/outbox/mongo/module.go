package mongo

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/quiverlabs/platform-commons/pkg/persistence/mongo"
)

// NewOutboxStoreModule provides the mongo-backed outbox repository and
// creates its indexes on start.
func NewOutboxStoreModule() fx.Option {
	return fx.Options(
		fx.Provide(NewRepository),
		fx.Invoke(ensureIndexes),
	)
}

func ensureIndexes(lc fx.Lifecycle, log *zap.Logger, m mongo.Mongo) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := EnsureIndexes(ctx, m); err != nil {
				return err
			}
			log.Info("outbox indexes ensured")
			return nil
		},
	})
}
