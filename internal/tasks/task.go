package tasks

import (
	"context"
	"sync"
	"time"

	types "github.com/yungbote/lessonplan-backend/internal/domain"
	"github.com/yungbote/lessonplan-backend/internal/realtime"
)

// Task is the live, mutable state of one batch run. The orchestrator drives
// it forward; operators change it through the Registry. Every method is safe
// for concurrent use. The state lock is never held while broadcasting; emitMu
// keeps one task's events in the order their state changes happened.
type Task struct {
	emitMu  sync.Mutex
	mu      sync.Mutex
	snap    types.Task
	changed chan struct{}
	emitter realtime.Emitter
	now     func() time.Time
}

func newTask(id string, emitter realtime.Emitter, now func() time.Time) *Task {
	ts := now()
	return &Task{
		snap: types.Task{
			ID:          id,
			Status:      types.TaskPending,
			ResultFiles: []string{},
			CreatedAt:   ts,
			UpdatedAt:   ts,
		},
		changed: make(chan struct{}),
		emitter: emitter,
		now:     now,
	}
}

func (t *Task) ID() string { return t.snap.ID }

// Snapshot returns a copy safe to hand to callers.
func (t *Task) Snapshot() types.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.copyLocked()
}

func (t *Task) Status() types.TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap.Status
}

func (t *Task) copyLocked() types.Task {
	out := t.snap
	out.ResultFiles = append([]string(nil), t.snap.ResultFiles...)
	return out
}

func (t *Task) setStatusLocked(s types.TaskStatus) {
	t.snap.Status = s
	close(t.changed)
	t.changed = make(chan struct{})
}

func (t *Task) touchLocked(msg string) types.ProgressEvent {
	t.snap.UpdatedAt = t.now()
	if msg != "" {
		t.snap.Message = msg
	}
	return types.NewProgressEvent(t.copyLocked(), msg)
}

func (t *Task) emit(ctx context.Context, ev types.ProgressEvent) {
	if t.emitter != nil {
		t.emitter.Emit(ctx, ev)
	}
}

// Start moves a pending task to running at progress 0. It reports false when
// the task already left pending.
func (t *Task) Start(ctx context.Context, msg string) bool {
	t.emitMu.Lock()
	defer t.emitMu.Unlock()
	t.mu.Lock()
	if t.snap.Status != types.TaskPending {
		t.mu.Unlock()
		return false
	}
	t.setStatusLocked(types.TaskRunning)
	t.snap.Progress = 0
	ev := t.touchLocked(msg)
	t.mu.Unlock()

	t.emit(ctx, ev)
	return true
}

func (t *Task) SetTotal(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if total < 0 {
		total = 0
	}
	t.snap.Total = total
}

// Progress records a new progress value and current-item label and
// broadcasts it. Progress never moves backwards and stays below 100 until
// Complete. Finished tasks ignore the update.
func (t *Task) Progress(ctx context.Context, progress int, current, msg string) {
	t.emitMu.Lock()
	defer t.emitMu.Unlock()
	t.mu.Lock()
	if t.snap.Status.Finished() {
		t.mu.Unlock()
		return
	}
	if progress > 99 {
		progress = 99
	}
	if progress > t.snap.Progress {
		t.snap.Progress = progress
	}
	t.snap.Current = current
	ev := t.touchLocked(msg)
	t.mu.Unlock()

	t.emit(ctx, ev)
}

// AppendResult records a produced output file. It reports false once the
// result list already holds Total entries.
func (t *Task) AppendResult(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.snap.ResultFiles) >= t.snap.Total {
		return false
	}
	t.snap.ResultFiles = append(t.snap.ResultFiles, name)
	t.snap.UpdatedAt = t.now()
	return true
}

// Complete finishes a running task at 100. A task that was stopped or failed
// meanwhile keeps its status and Complete reports false.
func (t *Task) Complete(ctx context.Context, msg string) bool {
	t.emitMu.Lock()
	defer t.emitMu.Unlock()
	t.mu.Lock()
	if t.snap.Status != types.TaskRunning {
		t.mu.Unlock()
		return false
	}
	t.setStatusLocked(types.TaskCompleted)
	t.snap.Progress = 100
	t.snap.Current = ""
	ev := t.touchLocked(msg)
	t.mu.Unlock()

	t.emit(ctx, ev)
	return true
}

// Fail records err and marks the task failed unless it already finished.
func (t *Task) Fail(ctx context.Context, err error, msg string) bool {
	t.emitMu.Lock()
	defer t.emitMu.Unlock()
	t.mu.Lock()
	if t.snap.Status.Finished() {
		t.mu.Unlock()
		return false
	}
	t.setStatusLocked(types.TaskFailed)
	if err != nil {
		t.snap.Error = err.Error()
	}
	t.snap.Current = ""
	if msg == "" {
		msg = t.snap.Error
	}
	ev := t.touchLocked(msg)
	t.mu.Unlock()

	t.emit(ctx, ev)
	return true
}

// WaitWhilePaused blocks until the task is no longer paused or ctx ends, and
// returns the status it observed last.
func (t *Task) WaitWhilePaused(ctx context.Context) (types.TaskStatus, error) {
	for {
		t.mu.Lock()
		status, ch := t.snap.Status, t.changed
		t.mu.Unlock()
		if status != types.TaskPaused {
			return status, nil
		}
		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-ch:
		}
	}
}

// pause, resume and stop return the snapshot and whether a transition
// actually happened.

func (t *Task) pause(ctx context.Context) (types.Task, bool, error) {
	t.emitMu.Lock()
	defer t.emitMu.Unlock()
	t.mu.Lock()
	switch t.snap.Status {
	case types.TaskPaused:
		out := t.copyLocked()
		t.mu.Unlock()
		return out, false, nil
	case types.TaskRunning:
	default:
		err := &InvalidTransitionError{TaskID: t.snap.ID, Current: t.snap.Status, Target: types.TaskPaused}
		out := t.copyLocked()
		t.mu.Unlock()
		return out, false, err
	}
	t.setStatusLocked(types.TaskPaused)
	ev := t.touchLocked("任务已暂停")
	out := t.copyLocked()
	t.mu.Unlock()

	t.emit(ctx, ev)
	return out, true, nil
}

func (t *Task) resume(ctx context.Context) (types.Task, bool, error) {
	t.emitMu.Lock()
	defer t.emitMu.Unlock()
	t.mu.Lock()
	switch t.snap.Status {
	case types.TaskPaused:
	case types.TaskStopped, types.TaskCompleted, types.TaskFailed:
		out := t.copyLocked()
		t.mu.Unlock()
		return out, false, nil
	default:
		err := &InvalidTransitionError{TaskID: t.snap.ID, Current: t.snap.Status, Target: types.TaskRunning}
		out := t.copyLocked()
		t.mu.Unlock()
		return out, false, err
	}
	t.setStatusLocked(types.TaskRunning)
	ev := t.touchLocked("任务已恢复")
	out := t.copyLocked()
	t.mu.Unlock()

	t.emit(ctx, ev)
	return out, true, nil
}

func (t *Task) stop(ctx context.Context) (types.Task, bool, error) {
	t.emitMu.Lock()
	defer t.emitMu.Unlock()
	t.mu.Lock()
	if t.snap.Status.Finished() {
		out := t.copyLocked()
		t.mu.Unlock()
		return out, false, nil
	}
	// A queued task is stopped before Start, so the executor skips it.
	t.setStatusLocked(types.TaskStopped)
	t.snap.Error = types.ErrUserTerminated
	t.snap.Current = ""
	ev := t.touchLocked("任务已终止")
	out := t.copyLocked()
	t.mu.Unlock()

	t.emit(ctx, ev)
	return out, true, nil
}
