package outbox

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewOutboxModule wires the processing engine into an fx application. The
// Repository implementation must be provided separately (see the mongo
// subpackage). Handlers and middlewares are registered by the host before
// the lifecycle starts. The Requeuer and Janitor are provided but not
// scheduled; host them with the worker package or call their Run loops
// directly.
func NewOutboxModule() fx.Option {
	return fx.Options(
		fx.Provide(
			newConfig,
			NewHandlerRegistry,
			provideProcessor,
			provideRequeuer,
			provideJanitor,
		),
	)
}

func provideProcessor(lc fx.Lifecycle, log *zap.Logger, repo Repository, registry *HandlerRegistry, conf Config) *Processor {
	p := NewProcessor(repo, registry, log, conf)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Stop()
			return nil
		},
	})
	return p
}

func provideRequeuer(log *zap.Logger, repo Repository, conf Config) *Requeuer {
	return NewRequeuer(repo, log, conf.Requeue)
}

func provideJanitor(log *zap.Logger, repo Repository, conf Config) *Janitor {
	return NewJanitor(repo, log, conf.Janitor)
}
