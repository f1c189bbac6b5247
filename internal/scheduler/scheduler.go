// Package scheduler fans batches of documents out across a bounded,
// process-wide worker pool.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"regdoc/internal/pipeline"
	"regdoc/internal/store"
)

var (
	// ErrNotRunning is returned by Submit after Stop or before Start.
	ErrNotRunning = errors.New("scheduler is not running")

	// ErrQueueFull is returned when the task queue cannot absorb a batch.
	ErrQueueFull = errors.New("task queue is full")
)

// Config holds scheduler tuning knobs.
type Config struct {
	// Workers is the fixed pool size shared by every job in flight.
	Workers int
	// QueueSize bounds the number of tasks waiting for a worker.
	QueueSize int
}

// TaskRunner executes one document pipeline. Satisfied by *pipeline.Runner.
type TaskRunner interface {
	Run(ctx context.Context, task pipeline.Task)
}

// Scheduler owns the worker pool. One scheduler serves the whole process:
// the pool bounds total concurrency no matter how many jobs are in
// flight, which is deliberate backpressure at the cost of cross-job
// head-of-line blocking.
type Scheduler struct {
	runner TaskRunner
	log    *slog.Logger

	tasks chan pipeline.Task
	wg    sync.WaitGroup

	mu      sync.Mutex
	running bool

	inFlight  metric.Int64UpDownCounter
	processed metric.Int64Counter
}

// New creates a scheduler. Zero config values select the defaults
// (4 workers, queue of 256).
func New(runner TaskRunner, cfg Config, log *slog.Logger) *Scheduler {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}

	meter := otel.Meter("regdoc-scheduler")
	inFlight, _ := meter.Int64UpDownCounter("regdoc.documents.in_flight",
		metric.WithDescription("Documents currently queued or being classified"))
	processed, _ := meter.Int64Counter("regdoc.documents.processed",
		metric.WithDescription("Documents that reached a terminal state"))

	s := &Scheduler{
		runner:    runner,
		log:       log,
		tasks:     make(chan pipeline.Task, cfg.QueueSize),
		inFlight:  inFlight,
		processed: processed,
	}

	s.running = true
	for i := 0; i < cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
	log.Info("scheduler started", "workers", cfg.Workers, "queue_size", cfg.QueueSize)

	return s
}

// Submit enqueues one task per document and returns immediately; it
// never waits for a pipeline to run. All-or-nothing: if the queue cannot
// take the whole batch the caller records a job-level failure.
func (s *Scheduler) Submit(tasks []pipeline.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return ErrNotRunning
	}
	if len(tasks) > cap(s.tasks)-len(s.tasks) {
		return ErrQueueFull
	}

	for _, task := range tasks {
		s.tasks <- task
		s.inFlight.Add(context.Background(), 1)
	}
	return nil
}

// Stop closes intake and drains: queued tasks still run, then workers
// exit. Blocks until the pool is idle.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.tasks)
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	tracer := otel.Tracer("regdoc-scheduler")
	for task := range s.tasks {
		ctx, span := tracer.Start(context.Background(), "classify_document",
			trace.WithAttributes(
				attribute.String("job.id", task.JobID),
				attribute.String("doc.id", task.DocID),
				attribute.String("doc.filename", task.Filename),
				attribute.Int("worker.id", id),
			),
			trace.WithSpanKind(trace.SpanKindConsumer),
		)

		s.runner.Run(ctx, task)

		span.End()
		s.inFlight.Add(context.Background(), -1)
		s.processed.Add(context.Background(), 1)
	}
}

// TasksFor builds the task list for a job from the uploaded file bytes,
// keyed by document id. Documents without a payload (intake failures
// already recorded as failed) are skipped.
func TasksFor(job *store.Job, payloads map[string][]byte) []pipeline.Task {
	tasks := make([]pipeline.Task, 0, len(payloads))
	for _, doc := range job.Documents {
		data, ok := payloads[doc.ID]
		if !ok {
			continue
		}
		tasks = append(tasks, pipeline.Task{
			JobID:    job.ID,
			DocID:    doc.ID,
			Filename: doc.Filename,
			Data:     data,
		})
	}
	return tasks
}
