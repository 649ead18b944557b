// outboxctl is a maintenance CLI for the outbox store: it requeues failed
// messages and purges old terminal ones. Connection settings come from the
// same environment/config file the library modules use.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/quiverlabs/platform-commons/pkg/modules"
	"github.com/quiverlabs/platform-commons/pkg/outbox"
	outboxmongo "github.com/quiverlabs/platform-commons/pkg/outbox/mongo"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "outboxctl",
		Short:         "Maintenance commands for the outbox store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRequeueCmd(), newPurgeCmd())
	return root
}

func newRequeueCmd() *cobra.Command {
	conf := outbox.RequeueConfig{
		BatchSize:      100,
		MaxAttempts:    5,
		InitialBackoff: 30 * time.Second,
		MaxBackoff:     10 * time.Hour,
	}

	cmd := &cobra.Command{
		Use:   "requeue",
		Short: "Flip retry-eligible FAILED messages back to PENDING",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd.Context(), func(ctx context.Context, log *zap.Logger, repo outbox.Repository) error {
				requeuer := outbox.NewRequeuer(repo, log, conf)
				count, err := requeuer.RequeueOnce(ctx)
				if err != nil {
					return err
				}
				cmd.Printf("requeued %d messages\n", count)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&conf.BatchSize, "batch-size", conf.BatchSize, "maximum messages to requeue in one sweep")
	cmd.Flags().IntVar(&conf.MaxAttempts, "max-attempts", conf.MaxAttempts, "messages at or above this attempt count stay FAILED")
	cmd.Flags().DurationVar(&conf.InitialBackoff, "initial-backoff", conf.InitialBackoff, "backoff before the first retry")
	cmd.Flags().DurationVar(&conf.MaxBackoff, "max-backoff", conf.MaxBackoff, "upper bound for the retry backoff")
	return cmd
}

func newPurgeCmd() *cobra.Command {
	conf := outbox.JanitorConfig{
		Retention: 5 * 24 * time.Hour,
	}

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete terminal messages older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd.Context(), func(ctx context.Context, log *zap.Logger, repo outbox.Repository) error {
				janitor := outbox.NewJanitor(repo, log, conf)
				count, err := janitor.PurgeOnce(ctx)
				if err != nil {
					return err
				}
				cmd.Printf("purged %d messages\n", count)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&conf.Retention, "retention", conf.Retention, "age past which messages are deleted")
	cmd.Flags().BoolVar(&conf.PurgeFailed, "include-failed", false, "also purge FAILED messages")
	return cmd
}

// withRepository boots the dependency graph, runs fn and tears it down.
func withRepository(ctx context.Context, fn func(ctx context.Context, log *zap.Logger, repo outbox.Repository) error) error {
	var (
		log  *zap.Logger
		repo outbox.Repository
	)

	app := fx.New(
		modules.NewCoreModule(),
		modules.NewPersistenceModule(),
		outboxmongo.NewOutboxStoreModule(),
		fx.Populate(&log, &repo),
	)

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	runErr := fn(ctx, log, repo)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		return fmt.Errorf("failed to stop: %w", err)
	}
	return runErr
}
