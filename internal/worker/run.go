package worker

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"slidecast/internal/pkg/logger"
)

// Run pops and processes jobs until ctx is canceled. A failed job is logged
// and left to the processor to record; it never stops the loop.
func Run(ctx context.Context, d Deps) error {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("worker")

	if d.Concurrency < 1 {
		d.Concurrency = 1
	}
	if d.PopTimeout <= 0 {
		d.PopTimeout = 5 * time.Second
	}
	if d.RetryDelay <= 0 {
		d.RetryDelay = time.Second
	}

	log.Info("worker started", "concurrency", d.Concurrency)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < d.Concurrency; i++ {
		slot := i
		g.Go(func() error {
			return loop(gctx, d, &logger.Logger{Logger: log.With("slot", slot)})
		})
	}
	return g.Wait()
}

func loop(ctx context.Context, d Deps, log *logger.Logger) error {
	for {
		select {
		case <-ctx.Done():
			log.Info("worker context canceled, stopping")
			return ctx.Err()
		default:
		}

		jobID, err := d.Queue.Pop(ctx, d.PopTimeout)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("worker stopping due to context cancellation")
				return ctx.Err()
			}

			log.Warn("queue pop error, retrying", "error", err.Error())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d.RetryDelay):
			}
			continue
		}

		if jobID == "" {
			continue
		}

		jobCtx := logger.ContextWithJobID(ctx, jobID)
		jobLog := log.WithJobID(jobID)

		jobLog.Info("processing job")
		startTime := time.Now()

		if err := d.Processor.ProcessJob(jobCtx, jobID); err != nil {
			jobLog.Error("job failed",
				"error", err.Error(),
				"duration_ms", time.Since(startTime).Milliseconds(),
			)
		} else {
			jobLog.Info("job completed",
				"duration_ms", time.Since(startTime).Milliseconds(),
			)
		}
	}
}
