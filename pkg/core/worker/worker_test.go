package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/quiverlabs/platform-commons/pkg/core/health"
)

type readyNow struct{}

func (readyNow) WaitReady(ctx context.Context) error { return nil }

type shutdownRecorder struct {
	calls atomic.Int32
}

func (s *shutdownRecorder) Shutdown(...fx.ShutdownOption) error {
	s.calls.Add(1)
	return nil
}

func newBaseWorker(run func(ctx context.Context) error, opts Options) (*baseWorker, *shutdownRecorder) {
	shutdowner := &shutdownRecorder{}
	return &baseWorker{
		name:       "test-worker",
		log:        zap.NewNop(),
		runFunc:    run,
		shutdowner: shutdowner,
		readiness:  readyNow{},
		options:    opts,
	}, shutdowner
}

func TestBaseWorker(t *testing.T) {
	t.Run("runs until stop cancels the context", func(t *testing.T) {
		started := make(chan struct{})
		var finished atomic.Bool

		w, _ := newBaseWorker(func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			finished.Store(true)
			return nil
		}, Options{})

		w.Start()
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatal("worker never started")
		}

		w.Stop()
		assert.True(t, finished.Load())
	})

	t.Run("stop before start is harmless", func(t *testing.T) {
		w, _ := newBaseWorker(func(ctx context.Context) error { return nil }, Options{})
		w.Stop()
	})

	t.Run("fatal error triggers shutdown when configured", func(t *testing.T) {
		w, shutdowner := newBaseWorker(func(ctx context.Context) error {
			return errors.New("broker unreachable")
		}, Options{ShutdownOnError: true})

		w.Start()
		w.wg.Wait()
		assert.Equal(t, int32(1), shutdowner.calls.Load())
		w.Stop()
	})

	t.Run("fatal error without shutdown option is only logged", func(t *testing.T) {
		w, shutdowner := newBaseWorker(func(ctx context.Context) error {
			return errors.New("broker unreachable")
		}, Options{})

		w.Start()
		w.wg.Wait()
		assert.Zero(t, shutdowner.calls.Load())
		w.Stop()
	})

	t.Run("waits for readiness before running", func(t *testing.T) {
		readiness := health.NewReadiness(zap.NewNop())
		markReady := readiness.AddComponent("store")

		ran := make(chan struct{})
		w, _ := newBaseWorker(func(ctx context.Context) error {
			close(ran)
			return nil
		}, Options{WaitReady: true})
		w.readiness = readiness

		w.Start()
		select {
		case <-ran:
			t.Fatal("worker ran before readiness")
		case <-time.After(20 * time.Millisecond):
		}

		markReady()
		select {
		case <-ran:
		case <-time.After(time.Second):
			t.Fatal("worker never ran after readiness")
		}
		w.Stop()
	})

	t.Run("stop unblocks a worker still waiting for readiness", func(t *testing.T) {
		readiness := health.NewReadiness(zap.NewNop())
		readiness.AddComponent("never-ready")

		var ran atomic.Bool
		w, _ := newBaseWorker(func(ctx context.Context) error {
			ran.Store(true)
			return nil
		}, Options{WaitReady: true})
		w.readiness = readiness

		w.Start()
		w.Stop()
		assert.False(t, ran.Load())
	})
}

func TestRegister(t *testing.T) {
	t.Run("builds an annotated constructor", func(t *testing.T) {
		require.NotNil(t, Register[*stubRunnable]("stub"))
	})
}

type stubRunnable struct{}

func (*stubRunnable) Run(ctx context.Context) error { return nil }
