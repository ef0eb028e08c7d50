// internal/syncer/dispatcher.go
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"effort-analyzer/internal/job"
)

var (
	// ErrQueueFull is returned by Submit when no more jobs can be buffered.
	ErrQueueFull = errors.New("ingestion queue is full")
	// ErrShuttingDown is returned by Submit once the dispatcher has stopped,
	// and recorded on jobs that were still queued at shutdown.
	ErrShuttingDown = errors.New("service shutting down")
)

// Runner executes a single ingestion request.
type Runner interface {
	Run(ctx context.Context, req Request) error
}

// Dispatcher feeds queued requests to a fixed pool of workers.
type Dispatcher struct {
	runner  Runner
	tracker *job.Tracker
	queue   chan Request
	workers int
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher creates a Dispatcher with the given worker count and queue capacity.
// Jobs left in the queue at shutdown are failed through tracker.
func NewDispatcher(runner Runner, tracker *job.Tracker, workers, queueSize int, logger *slog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Dispatcher{
		runner:  runner,
		tracker: tracker,
		queue:   make(chan Request, queueSize),
		workers: workers,
		logger:  logger,
	}
}

// Submit enqueues req without blocking.
func (d *Dispatcher) Submit(req Request) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrShuttingDown
	}

	select {
	case d.queue <- req:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run starts the workers and blocks until ctx is cancelled and every
// in-flight job has returned. Requests still queued are then failed.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("Starting dispatcher", "workers", d.workers, "queue_size", cap(d.queue))
	g, gctx := errgroup.WithContext(ctx)

	for i := range d.workers {
		g.Go(func() error {
			d.work(gctx, d.logger.With("worker", i))
			return nil
		})
	}

	err := g.Wait()
	d.logger.Info("Dispatcher shutting down", "reason", ctx.Err())
	d.drain(context.WithoutCancel(ctx))
	return err
}

func (d *Dispatcher) work(ctx context.Context, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-d.queue:
			if ctx.Err() != nil {
				d.abandon(ctx, req)
				return
			}
			err := d.runner.Run(ctx, req)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Ingestion job failed", "job_id", req.JobID, "repo", req.RepoName, "error", err)
			}
		}
	}
}

// drain closes the queue to new submissions and fails every request left in it.
func (d *Dispatcher) drain(ctx context.Context) {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	for {
		select {
		case req := <-d.queue:
			d.abandon(ctx, req)
		default:
			return
		}
	}
}

func (d *Dispatcher) abandon(ctx context.Context, req Request) {
	logger := d.logger.With("job_id", req.JobID, "repo", req.RepoName)
	logger.Warn("Dropping queued ingestion job at shutdown")
	if d.tracker != nil {
		failUnstarted(context.WithoutCancel(ctx), d.tracker, logger, req.JobID, ErrShuttingDown)
	}
}
