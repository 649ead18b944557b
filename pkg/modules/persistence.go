package modules

import (
	"go.uber.org/fx"

	"github.com/quiverlabs/platform-commons/pkg/persistence/mongo"
)

// NewPersistenceModule provides the MongoDB client stack.
func NewPersistenceModule() fx.Option {
	return mongo.NewMongoModule()
}
