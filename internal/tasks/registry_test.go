package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	types "github.com/yungbote/lessonplan-backend/internal/domain"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
	"github.com/yungbote/lessonplan-backend/internal/realtime"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []types.ProgressEvent
}

func (e *recordingEmitter) Emit(_ context.Context, ev types.ProgressEvent) {
	e.mu.Lock()
	e.events = append(e.events, ev)
	e.mu.Unlock()
}

func (e *recordingEmitter) count(status types.TaskStatus) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ev := range e.events {
		if ev.Status == status {
			n++
		}
	}
	return n
}

var _ realtime.Emitter = (*recordingEmitter)(nil)

func newRunningTask(t *testing.T) (*Registry, *Task, *recordingEmitter) {
	t.Helper()
	em := &recordingEmitter{}
	reg := NewRegistry(logger.Nop(), em)
	task := reg.Create()
	task.SetTotal(5)
	if !task.Start(context.Background(), "start") {
		t.Fatalf("Start returned false")
	}
	return reg, task, em
}

func TestStopIsIdempotent(t *testing.T) {
	reg, task, em := newRunningTask(t)
	ctx := context.Background()

	first, err := reg.Stop(ctx, task.ID())
	if err != nil {
		t.Fatalf("first stop: %v", err)
	}
	second, err := reg.Stop(ctx, task.ID())
	if err != nil {
		t.Fatalf("second stop: %v", err)
	}
	if first.Status != types.TaskStopped || second.Status != types.TaskStopped {
		t.Fatalf("status: %s / %s", first.Status, second.Status)
	}
	if second.Error != types.ErrUserTerminated {
		t.Fatalf("error=%q", second.Error)
	}
	if n := em.count(types.TaskStopped); n != 1 {
		t.Fatalf("stopped broadcasts=%d want 1", n)
	}
}

func TestStopPendingTask(t *testing.T) {
	em := &recordingEmitter{}
	reg := NewRegistry(logger.Nop(), em)
	ctx := context.Background()
	task := reg.Create()

	snap, err := reg.Stop(ctx, task.ID())
	if err != nil {
		t.Fatalf("stop pending: %v", err)
	}
	if snap.Status != types.TaskStopped || snap.Error != types.ErrUserTerminated {
		t.Fatalf("snapshot=%+v", snap)
	}
	if _, err := reg.Stop(ctx, task.ID()); err != nil {
		t.Fatalf("second stop: %v", err)
	}
	if n := em.count(types.TaskStopped); n != 1 {
		t.Fatalf("stopped broadcasts=%d want 1", n)
	}
	if task.Start(ctx, "start") {
		t.Fatalf("stopped task started")
	}
	if task.Status() != types.TaskStopped {
		t.Fatalf("status=%s", task.Status())
	}
}

// gatedEmitter blocks the first running event carrying current until
// release is closed.
type gatedEmitter struct {
	recordingEmitter
	current string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (e *gatedEmitter) Emit(ctx context.Context, ev types.ProgressEvent) {
	if ev.Status == types.TaskRunning && ev.Current == e.current {
		e.once.Do(func() {
			close(e.entered)
			<-e.release
		})
	}
	e.recordingEmitter.Emit(ctx, ev)
}

func TestEventsFollowStateOrder(t *testing.T) {
	em := &gatedEmitter{current: "第1周第1次课", entered: make(chan struct{}), release: make(chan struct{})}
	reg := NewRegistry(logger.Nop(), em)
	ctx := context.Background()
	task := reg.Create()
	task.SetTotal(1)
	task.Start(ctx, "start")

	go task.Progress(ctx, 20, "第1周第1次课", "")
	<-em.entered

	stopped := make(chan struct{})
	go func() {
		reg.Stop(ctx, task.ID())
		close(stopped)
	}()
	select {
	case <-stopped:
		t.Fatalf("stop broadcast before the pending progress event")
	case <-time.After(30 * time.Millisecond):
	}
	close(em.release)
	<-stopped

	em.mu.Lock()
	defer em.mu.Unlock()
	n := len(em.events)
	if n < 2 || em.events[n-2].Status != types.TaskRunning || em.events[n-1].Status != types.TaskStopped {
		t.Fatalf("event order: %+v", em.events)
	}
}

func TestPauseRejectedOutsideRunning(t *testing.T) {
	em := &recordingEmitter{}
	reg := NewRegistry(logger.Nop(), em)
	ctx := context.Background()

	pending := reg.Create()
	_, err := reg.Pause(ctx, pending.ID())
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) || ite.Current != types.TaskPending {
		t.Fatalf("pause pending: %v", err)
	}
	if pending.Status() != types.TaskPending {
		t.Fatalf("pending task changed to %s", pending.Status())
	}

	done := reg.Create()
	done.SetTotal(1)
	done.Start(ctx, "")
	done.Complete(ctx, "done")
	_, err = reg.Pause(ctx, done.ID())
	if !errors.As(err, &ite) || ite.Current != types.TaskCompleted || ite.Target != types.TaskPaused {
		t.Fatalf("pause completed: %v", err)
	}
	if snap := done.Snapshot(); snap.Status != types.TaskCompleted || snap.Progress != 100 {
		t.Fatalf("completed task changed: %+v", snap)
	}
}

func TestTransitionTable(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name    string
		prepare func(*Registry, *Task)
		op      func(*Registry, string) (types.Task, error)
		want    types.TaskStatus
		wantErr bool
	}{
		{"pause running", nil, func(r *Registry, id string) (types.Task, error) { return r.Pause(ctx, id) }, types.TaskPaused, false},
		{"pause paused", func(r *Registry, t *Task) { r.Pause(ctx, t.ID()) }, func(r *Registry, id string) (types.Task, error) { return r.Pause(ctx, id) }, types.TaskPaused, false},
		{"resume paused", func(r *Registry, t *Task) { r.Pause(ctx, t.ID()) }, func(r *Registry, id string) (types.Task, error) { return r.Resume(ctx, id) }, types.TaskRunning, false},
		{"resume running", nil, func(r *Registry, id string) (types.Task, error) { return r.Resume(ctx, id) }, types.TaskRunning, true},
		{"resume stopped", func(r *Registry, t *Task) { r.Stop(ctx, t.ID()) }, func(r *Registry, id string) (types.Task, error) { return r.Resume(ctx, id) }, types.TaskStopped, false},
		{"stop paused", func(r *Registry, t *Task) { r.Pause(ctx, t.ID()) }, func(r *Registry, id string) (types.Task, error) { return r.Stop(ctx, id) }, types.TaskStopped, false},
		{"stop failed", func(r *Registry, t *Task) { t.Fail(ctx, errors.New("boom"), "") }, func(r *Registry, id string) (types.Task, error) { return r.Stop(ctx, id) }, types.TaskFailed, false},
		{"pause stopped", func(r *Registry, t *Task) { r.Stop(ctx, t.ID()) }, func(r *Registry, id string) (types.Task, error) { return r.Pause(ctx, id) }, types.TaskStopped, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg, task, _ := newRunningTask(t)
			if tc.prepare != nil {
				tc.prepare(reg, task)
			}
			snap, err := tc.op(reg, task.ID())
			if (err != nil) != tc.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tc.wantErr)
			}
			if snap.Status != tc.want || task.Status() != tc.want {
				t.Fatalf("status=%s/%s want %s", snap.Status, task.Status(), tc.want)
			}
		})
	}
}

func TestUnknownTask(t *testing.T) {
	reg := NewRegistry(logger.Nop(), nil)
	ctx := context.Background()
	if _, err := reg.Snapshot("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("snapshot: %v", err)
	}
	for _, op := range []func(context.Context, string) (types.Task, error){reg.Pause, reg.Resume, reg.Stop} {
		if _, err := op(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("op: %v", err)
		}
	}
}

func TestProgressInvariants(t *testing.T) {
	_, task, _ := newRunningTask(t)
	ctx := context.Background()

	task.Progress(ctx, 50, "a", "")
	task.Progress(ctx, 30, "b", "")
	if snap := task.Snapshot(); snap.Progress != 50 || snap.Current != "b" {
		t.Fatalf("progress moved backwards: %+v", snap)
	}
	task.Progress(ctx, 150, "c", "")
	if snap := task.Snapshot(); snap.Progress != 99 {
		t.Fatalf("progress=%d before completion", snap.Progress)
	}

	for i := 0; i < 7; i++ {
		task.AppendResult("f")
	}
	if n := len(task.Snapshot().ResultFiles); n != 5 {
		t.Fatalf("result files=%d want <= total 5", n)
	}

	task.stop(ctx)
	if task.Complete(ctx, "done") {
		t.Fatalf("stopped task completed")
	}
	if snap := task.Snapshot(); snap.Progress == 100 {
		t.Fatalf("stopped task reached 100")
	}
}

func TestWaitWhilePaused(t *testing.T) {
	reg, task, _ := newRunningTask(t)
	ctx := context.Background()
	reg.Pause(ctx, task.ID())

	got := make(chan types.TaskStatus, 1)
	go func() {
		s, _ := task.WaitWhilePaused(ctx)
		got <- s
	}()

	select {
	case s := <-got:
		t.Fatalf("returned while paused: %s", s)
	case <-time.After(30 * time.Millisecond):
	}

	reg.Resume(ctx, task.ID())
	select {
	case s := <-got:
		if s != types.TaskRunning {
			t.Fatalf("status=%s", s)
		}
	case <-time.After(time.Second):
		t.Fatalf("WaitWhilePaused did not return after resume")
	}

	reg.Pause(ctx, task.ID())
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := task.WaitWhilePaused(cctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
}

func TestListOrder(t *testing.T) {
	reg := NewRegistry(logger.Nop(), nil)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	step := 0
	reg.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}
	a := reg.Create()
	b := reg.Create()
	list := reg.List()
	if len(list) != 2 || list[0].ID != a.ID() || list[1].ID != b.ID() {
		t.Fatalf("unexpected order: %+v", list)
	}
	reg.Remove(a.ID())
	if _, err := reg.Get(a.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("removed task still present")
	}
}
