package kafka

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Brokers is the bootstrap.servers list.
	Brokers string `mapstructure:"brokers"`

	// DefaultTopic receives payloads whose messages carry no topic metadata.
	DefaultTopic string `mapstructure:"default-topic"`

	// FlushTimeout bounds the final flush on shutdown.
	// Default: 10s
	FlushTimeout time.Duration `mapstructure:"flush-timeout"`
}

func newConfig(v *viper.Viper) (Config, error) {
	cfg := Config{}

	if sub := v.Sub("kafka"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to load kafka config: %w", err)
		}
	}

	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = 10 * time.Second
	}
	return cfg, nil
}
