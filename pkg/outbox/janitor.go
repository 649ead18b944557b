package outbox

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Janitor deletes terminal messages older than the retention window.
// Retention is a store-boundary concern; the processor itself never deletes.
type Janitor struct {
	repo Repository
	conf JanitorConfig
	log  *zap.Logger
}

func NewJanitor(repo Repository, logger *zap.Logger, conf JanitorConfig) *Janitor {
	return &Janitor{
		repo: repo,
		conf: conf,
		log:  logger.With(zap.String("component", "outbox-janitor")),
	}
}

// PurgeOnce deletes PROCESSED (and, if configured, FAILED) messages older
// than the retention window and returns the number removed.
func (j *Janitor) PurgeOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-j.conf.Retention)

	total, err := j.repo.DeleteByStatusAndAge(ctx, cutoff, StatusProcessed)
	if err != nil {
		return 0, fmt.Errorf("purge processed messages: %w", err)
	}

	if j.conf.PurgeFailed {
		count, err := j.repo.DeleteByStatusAndAge(ctx, cutoff, StatusFailed)
		if err != nil {
			return total, fmt.Errorf("purge failed messages: %w", err)
		}
		total += count
	}

	if total > 0 {
		j.log.Info("purged outbox messages",
			zap.Int64("count", total),
			zap.Time("cutoff", cutoff))
	}
	return total, nil
}

// Run executes purges on the configured interval until ctx is cancelled.
// When the janitor is disabled it returns immediately.
func (j *Janitor) Run(ctx context.Context) error {
	if !j.conf.Enabled {
		j.log.Info("janitor disabled")
		return nil
	}

	ticker := time.NewTicker(j.conf.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := j.PurgeOnce(ctx); err != nil {
				j.log.Error("purge failed", zap.Error(err))
			}
		}
	}
}
