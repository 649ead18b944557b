package outbox

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Processor is the outbox processing engine. It drains eligible pending
// messages from the repository, routes each through the middleware-wrapped
// handler for its type and records the outcome back into the repository.
//
// Delivery is at-least-once: a crash between handler success and the
// PROCESSED update leads to a second delivery, so handlers must be
// idempotent.
type Processor struct {
	repo        Repository
	registry    *HandlerRegistry
	middlewares []Middleware
	conf        Config
	log         *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	tickBusy atomic.Bool
}

func NewProcessor(repo Repository, registry *HandlerRegistry, logger *zap.Logger, conf Config) *Processor {
	conf.applyDefaults()
	return &Processor{
		repo:     repo,
		registry: registry,
		conf:     conf,
		log:      logger.With(zap.String("component", "outbox-processor")),
	}
}

// RegisterHandler binds a handler to a message type on the processor's registry.
func (p *Processor) RegisterHandler(messageType string, handler Handler) error {
	return p.registry.Register(messageType, handler)
}

// Use appends middlewares to the pipeline. The first middleware registered
// is the outermost wrapper. Must be called before Start; the middleware
// list is read without locking during processing.
func (p *Processor) Use(middlewares ...Middleware) {
	p.middlewares = append(p.middlewares, middlewares...)
}

// ProcessMessage dispatches a single message through the pipeline.
//
// On handler success the message becomes PROCESSED. On any failure,
// including a missing handler, the attempt counter is incremented, the
// message becomes FAILED with the failure recorded, and the failure is
// returned to the caller.
func (p *Processor) ProcessMessage(ctx context.Context, msg *Message) error {
	handler, err := p.registry.Resolve(msg.Type)
	if err != nil {
		return p.failMessage(ctx, msg, err)
	}

	deliver := Chain(handler, p.middlewares...)
	if err := deliver(ctx, msg); err != nil {
		return p.failMessage(ctx, msg, err)
	}

	if err := p.repo.UpdateStatus(ctx, msg.ID, StatusProcessed, nil); err != nil {
		return fmt.Errorf("mark message %s processed: %w", msg.ID, err)
	}
	return nil
}

// failMessage records the failure and hands it back to the caller. Store
// errors in the bookkeeping path are logged but do not mask the original
// delivery failure.
func (p *Processor) failMessage(ctx context.Context, msg *Message, cause error) error {
	if _, err := p.repo.IncrementAttempt(ctx, msg.ID); err != nil {
		p.log.Error("failed to increment attempt counter",
			zap.String("id", msg.ID), zap.Error(err))
	}
	if err := p.repo.UpdateStatus(ctx, msg.ID, StatusFailed, cause); err != nil {
		p.log.Error("failed to mark message as failed",
			zap.String("id", msg.ID), zap.Error(err))
	}
	return fmt.Errorf("process message %s: %w", msg.ID, cause)
}

// ProcessMessages fetches up to batchSize eligible messages and dispatches
// them in store order. A failing message does not abort the rest of the
// batch; its failure is logged and the loop continues. The returned count
// is the number of messages that completed successfully, not the number
// attempted. An empty batch returns zero and no error.
func (p *Processor) ProcessMessages(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = p.conf.DefaultBatchSize
	}

	msgs, err := p.repo.GetUnprocessed(ctx, batchSize, nil)
	if err != nil {
		return 0, fmt.Errorf("fetch unprocessed messages: %w", err)
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	processed := 0
	for _, msg := range msgs {
		if ctx.Err() != nil {
			break
		}

		if err := p.repo.UpdateStatus(ctx, msg.ID, StatusProcessing, nil); err != nil {
			p.log.Error("failed to mark message as processing",
				zap.String("id", msg.ID), zap.Error(err))
			continue
		}

		if err := p.ProcessMessage(ctx, msg); err != nil {
			p.log.Error("message processing failed",
				zap.String("id", msg.ID),
				zap.String("type", msg.Type),
				zap.Error(err))
			continue
		}
		processed++
	}
	return processed, nil
}

// Start begins continuous processing: one ProcessMessages invocation per
// configured interval. Calling Start on a running processor is a no-op.
func (p *Processor) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		p.log.Debug("processor already running, ignoring start")
		return
	}
	p.running = true
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.mu.Unlock()

	p.log.Info("starting outbox processor",
		zap.Duration("interval", p.conf.Interval),
		zap.Int("batch-size", p.conf.DefaultBatchSize))

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		_ = p.Run(ctx)
	}()
}

// Stop cancels the repeating schedule and waits for an in-flight tick to
// finish. Calling Stop on a stopped processor is a no-op.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		p.log.Debug("processor not running, ignoring stop")
		return
	}
	p.running = false
	cancel := p.cancel
	p.mu.Unlock()

	p.log.Info("stopping outbox processor")
	cancel()
	p.wg.Wait()
	p.log.Info("outbox processor stopped")
}

// Run executes the processing loop until ctx is cancelled. It never returns
// a non-nil error: a failing tick is logged and the next tick still fires.
func (p *Processor) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.conf.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick runs one scheduled batch. If the previous tick is still executing
// the new one is skipped, keeping the engine single-flight. The batch runs
// on a detached context so cancellation stops future ticks without
// aborting the one in flight.
func (p *Processor) tick(ctx context.Context) {
	if !p.tickBusy.CompareAndSwap(false, true) {
		p.log.Debug("previous tick still running, skipping")
		return
	}
	defer p.tickBusy.Store(false)

	count, err := p.ProcessMessages(context.WithoutCancel(ctx), 0)
	if err != nil {
		p.log.Error("processing tick failed", zap.Error(err))
		return
	}
	if count > 0 {
		p.log.Debug("processing tick completed", zap.Int("processed", count))
	}
}
