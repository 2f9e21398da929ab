package visibility

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrQueueFull is returned by Enqueue when the job buffer is at capacity.
var ErrQueueFull = errors.New("analysis queue is full")

// Job is one queued analysis run.
type Job struct {
	AnalysisID string
	TargetURL  string
}

// Runner is the unit of work a Worker executes. Satisfied by *Engine.
type Runner interface {
	Run(ctx context.Context, analysisID, targetURL string)
}

// Worker drains a bounded in-process queue of analysis jobs across a fixed
// pool of goroutines. Jobs are lost on process exit; callers observe this as
// an analysis stuck in a non-terminal status.
type Worker struct {
	runner      Runner
	jobs        chan Job
	concurrency int
	logger      *slog.Logger
	wg          sync.WaitGroup
}

func NewWorker(runner Runner, concurrency, queueSize int, logger *slog.Logger) *Worker {
	return &Worker{
		runner:      runner,
		jobs:        make(chan Job, queueSize),
		concurrency: concurrency,
		logger:      logger,
	}
}

// Start launches the pool. Workers exit when the queue is closed by Stop or
// when ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("starting analysis workers", "concurrency", w.concurrency, "queue_size", cap(w.jobs))
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-w.jobs:
					if !ok {
						return
					}
					w.logger.Info("picked up analysis job", "analysis_id", job.AnalysisID)
					w.runner.Run(ctx, job.AnalysisID, job.TargetURL)
				}
			}
		}()
	}
}

// Enqueue hands a job to the pool without blocking. The caller surfaces
// ErrQueueFull as backpressure rather than waiting.
func (w *Worker) Enqueue(job Job) error {
	select {
	case w.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (w *Worker) Stop() {
	close(w.jobs)
	w.wg.Wait()
}
