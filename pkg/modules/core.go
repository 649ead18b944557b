package modules

import (
	"go.uber.org/fx"

	"github.com/quiverlabs/platform-commons/pkg/core/config"
	"github.com/quiverlabs/platform-commons/pkg/core/health"
	"github.com/quiverlabs/platform-commons/pkg/core/logger"
)

// NewCoreModule provides logging, configuration and readiness tracking.
func NewCoreModule() fx.Option {
	return fx.Options(
		logger.NewZapLoggingModule(),
		config.NewViperModule(),
		health.NewHealthModule(),
	)
}
