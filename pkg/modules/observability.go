package modules

import (
	"go.uber.org/fx"

	"github.com/quiverlabs/platform-commons/pkg/core/observability"
)

// NewObservabilityModule provides the OpenTelemetry tracer and meter
// providers. Requires the core module.
func NewObservabilityModule() fx.Option {
	return observability.NewObservabilityModule()
}
