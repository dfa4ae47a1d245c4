package worker

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

// Job is one unit of background work, usually a task's orchestration run.
type Job struct {
	TaskID string
	Run    func(ctx context.Context) error
	// Fail is called when Run panics or returns an error so the owner can
	// record the failure. It may be nil.
	Fail func(ctx context.Context, err error)
}

// Executor runs submitted jobs in the background with bounded concurrency.
// Submit never blocks; jobs beyond the limit wait for a free slot.
type Executor struct {
	ctx   context.Context
	log   *logger.Logger
	sem   *semaphore.Weighted
	group errgroup.Group
}

func NewExecutor(ctx context.Context, baseLog *logger.Logger, concurrency int) *Executor {
	if concurrency < 1 {
		concurrency = 1
	}
	log := baseLog.With("component", "TaskExecutor")
	log.Info("Starting task executor", "concurrency", concurrency)
	return &Executor{
		ctx: ctx,
		log: log,
		sem: semaphore.NewWeighted(int64(concurrency)),
	}
}

func (e *Executor) Submit(job Job) {
	e.group.Go(func() error {
		if err := e.sem.Acquire(e.ctx, 1); err != nil {
			e.log.Warn("Task dropped before start", "task_id", job.TaskID, "error", err)
			if job.Fail != nil {
				job.Fail(context.WithoutCancel(e.ctx), err)
			}
			return nil
		}
		defer e.sem.Release(1)
		e.run(job)
		return nil
	})
}

func (e *Executor) run(job Job) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("Task panic", "task_id", job.TaskID, "panic", r)
			if job.Fail != nil {
				job.Fail(context.WithoutCancel(e.ctx), &panicError{Val: r})
			}
		}
	}()

	if err := job.Run(e.ctx); err != nil {
		e.log.Warn("Task returned error", "task_id", job.TaskID, "error", err)
		if job.Fail != nil {
			job.Fail(context.WithoutCancel(e.ctx), err)
		}
	}
}

// Wait blocks until every submitted job has returned.
func (e *Executor) Wait() {
	_ = e.group.Wait()
}

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }
