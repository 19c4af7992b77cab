package worker

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"thot/internal/amqp"
	"thot/internal/log"
)

// Consumer delivers expense messages to a handler until ctx ends.
type Consumer interface {
	Consume(ctx context.Context, handler amqp.Handler) error
}

// Worker runs the expense consumer (when a broker is configured) next to
// the digest scheduler.
type Worker struct {
	consumer  Consumer
	handler   amqp.Handler
	scheduler *Scheduler
	logger    *log.Logger
}

// New wires a worker. consumer may be nil to run the scheduler alone.
func New(consumer Consumer, handler amqp.Handler, scheduler *Scheduler, logger *log.Logger) *Worker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Worker{
		consumer:  consumer,
		handler:   handler,
		scheduler: scheduler,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// Run blocks until ctx is cancelled or the consumer fails for good.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.scheduler.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if w.consumer != nil {
		g.Go(func() error {
			return w.consumer.Consume(gctx, w.handler)
		})
	} else {
		w.logger.WarnContext(ctx, "AMQP not configured, limit checks disabled")
	}
	g.Go(func() error {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return w.scheduler.Stop(stopCtx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}
