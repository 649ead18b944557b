// Package observability configures the OpenTelemetry providers the message
// pipeline's tracing and metrics middlewares report to.
package observability

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

// NewObservabilityModule provides the tracer and meter providers and installs
// them as the otel globals on start. When tracing is disabled the provider is
// a noop; when metrics are disabled the meter provider is nil.
func NewObservabilityModule() fx.Option {
	return fx.Options(
		fx.Provide(
			newConfig,
			provideTracerProvider,
			provideMeterProvider,
		),
		fx.Invoke(func(trace.TracerProvider, metric.MeterProvider) {}),
	)
}
