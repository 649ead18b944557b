package mongo

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/quiverlabs/platform-commons/pkg/core/health"
)

// NewMongoModule provides MongoDB components for dependency injection.
func NewMongoModule() fx.Option {
	return fx.Provide(
		newConfig,
		provideMongo,
	)
}

func provideMongo(lc fx.Lifecycle, log *zap.Logger, conf Config, readiness health.Readiness) (Mongo, Admin, error) {
	m, err := newMongo(log, conf)
	if err != nil {
		return nil, nil, err
	}

	markReady := readiness.AddComponent("mongo")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := m.connect(ctx); err != nil {
				return err
			}
			markReady()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return m.disconnect(ctx)
		},
	})

	return m, m, nil
}
