package jobs

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPollInterval is how often the worker looks for pending embedding jobs.
const DefaultPollInterval = 10 * time.Second

// JobProcessor drains one batch of pending work. The backfill worker
// implements it for embedding jobs; the ticker loop below stays agnostic.
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker polls a JobProcessor on a fixed interval until stopped. A failed
// batch is logged and retried on the next tick rather than halting the loop.
type Worker struct {
	processor    JobProcessor
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
}

// NewWorker creates a Worker polling at the given interval, or
// DefaultPollInterval if the interval is not positive.
func NewWorker(processor JobProcessor, pollInterval time.Duration) *Worker {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Worker{
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start runs the polling loop until the context is cancelled or Stop is
// called. It blocks; run it in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	slog.Info("embedding worker started", "poll_interval", w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("embedding worker stopped", "reason", "context cancelled")
			return
		case <-w.stopChan:
			slog.Info("embedding worker stopped", "reason", "stop requested")
			return
		case <-ticker.C:
			if err := w.processor.ProcessJobs(ctx); err != nil {
				slog.Error("embedding batch failed", "error", err)
			}
		}
	}
}

// Stop signals the loop to exit and waits for it to finish.
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
}
