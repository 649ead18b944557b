package health

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewHealthModule provides the readiness tracker.
func NewHealthModule() fx.Option {
	return fx.Provide(
		func(log *zap.Logger) Readiness { return NewReadiness(log) },
		func(r Readiness) ReadinessWaiter { return r },
	)
}
