package worker

import (
	"context"
	"time"

	"slidecast/internal/pkg/logger"
)

// Queue hands out job ids.
type Queue interface {
	Pop(ctx context.Context, timeout time.Duration) (string, error)
}

// JobProcessor handles one job id.
type JobProcessor interface {
	ProcessJob(ctx context.Context, jobID string) error
}

type Deps struct {
	Queue     Queue
	Processor JobProcessor
	Log       *logger.Logger
	// Concurrency is the number of jobs handled at once. Defaults to 1.
	Concurrency int
	// PopTimeout bounds each blocking pop so cancellation is noticed.
	PopTimeout time.Duration
	// RetryDelay is the pause after a queue error.
	RetryDelay time.Duration
}
