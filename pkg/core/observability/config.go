package observability

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultMetricsInterval = 10 * time.Second
	defaultSampleRatio     = 1.0

	// shutdownTimeout bounds provider shutdown on application stop.
	shutdownTimeout = 5 * time.Second

	tracingComponentName = "tracing"
	metricsComponentName = "metrics"
)

type Config struct {
	// OtelCollectorEndpoint is the OTLP gRPC endpoint. When empty, tracing
	// runs without an exporter and metrics cannot be enabled.
	OtelCollectorEndpoint string `mapstructure:"otel-collector-endpoint"`

	Tracing TracingConfig `mapstructure:"tracing"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// SampleRatio is the fraction of root spans that are sampled.
	// Default: 1.0
	SampleRatio float64 `mapstructure:"sample-ratio"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Interval is the export interval of the periodic reader.
	// Default: 10s
	Interval time.Duration `mapstructure:"interval"`
}

func newConfig(v *viper.Viper) (Config, error) {
	cfg := Config{}

	if sub := v.Sub("observability"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to load observability config: %w", err)
		}
	}

	if cfg.Metrics.Interval <= 0 {
		cfg.Metrics.Interval = defaultMetricsInterval
	}
	if cfg.Tracing.SampleRatio <= 0 {
		cfg.Tracing.SampleRatio = defaultSampleRatio
	}
	return cfg, nil
}
