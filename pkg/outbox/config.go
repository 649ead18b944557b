package outbox

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// DefaultBatchSize is the number of messages fetched per tick.
	// Default: 100
	DefaultBatchSize int `mapstructure:"default-batch-size"`

	// Interval is the delay between processing ticks.
	// Default: 5s
	Interval time.Duration `mapstructure:"interval"`

	Requeue RequeueConfig `mapstructure:"requeue"`
	Janitor JanitorConfig `mapstructure:"janitor"`
}

// RequeueConfig controls the sweep that flips retry-eligible FAILED
// messages back to PENDING.
type RequeueConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	BatchSize int           `mapstructure:"batch-size"`

	// MaxAttempts is the attempt count at which a message stops being
	// requeued and stays FAILED for good.
	MaxAttempts int `mapstructure:"max-attempts"`

	// InitialBackoff and MaxBackoff bound the exponential delay applied
	// before a requeued message becomes eligible again.
	InitialBackoff time.Duration `mapstructure:"initial-backoff"`
	MaxBackoff     time.Duration `mapstructure:"max-backoff"`
}

// JanitorConfig controls age-based deletion of terminal messages.
type JanitorConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`

	// Retention is how long PROCESSED messages are kept.
	Retention time.Duration `mapstructure:"retention"`

	// PurgeFailed extends the purge to FAILED messages of the same age.
	PurgeFailed bool `mapstructure:"purge-failed"`
}

func newConfig(v *viper.Viper) (Config, error) {
	cfg := Config{}

	if sub := v.Sub("outbox"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to load outbox config: %w", err)
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DefaultBatchSize <= 0 {
		c.DefaultBatchSize = 100
	}
	if c.Interval <= 0 {
		c.Interval = 5 * time.Second
	}
	if c.Requeue.Interval <= 0 {
		c.Requeue.Interval = time.Minute
	}
	if c.Requeue.BatchSize <= 0 {
		c.Requeue.BatchSize = 100
	}
	if c.Requeue.MaxAttempts <= 0 {
		c.Requeue.MaxAttempts = 5
	}
	if c.Requeue.InitialBackoff <= 0 {
		c.Requeue.InitialBackoff = 30 * time.Second
	}
	if c.Requeue.MaxBackoff <= 0 {
		c.Requeue.MaxBackoff = 10 * time.Hour
	}
	if c.Janitor.Interval <= 0 {
		c.Janitor.Interval = time.Hour
	}
	if c.Janitor.Retention <= 0 {
		c.Janitor.Retention = 5 * 24 * time.Hour
	}
}
