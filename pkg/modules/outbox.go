package modules

import (
	"go.uber.org/fx"

	"github.com/quiverlabs/platform-commons/pkg/core/worker"
	"github.com/quiverlabs/platform-commons/pkg/outbox"
	outboxmongo "github.com/quiverlabs/platform-commons/pkg/outbox/mongo"
)

// NewOutboxModule provides the processing engine together with its
// mongo-backed store. The requeuer and janitor run as workers once the
// application's components report ready. Requires the core and persistence
// modules.
func NewOutboxModule() fx.Option {
	return fx.Options(
		outbox.NewOutboxModule(),
		outboxmongo.NewOutboxStoreModule(),
		fx.Provide(
			worker.Register[*outbox.Requeuer]("outbox-requeuer", worker.WithReady()),
			worker.Register[*outbox.Janitor]("outbox-janitor", worker.WithReady()),
		),
		worker.StartWorkers(),
	)
}
