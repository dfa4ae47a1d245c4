package tasks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/lessonplan-backend/internal/domain"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
	"github.com/yungbote/lessonplan-backend/internal/realtime"
)

// Registry owns every task of the process. It is built once by the app and
// handed to the orchestrator and the HTTP handlers.
type Registry struct {
	mu      sync.RWMutex
	tasks   map[string]*Task
	emitter realtime.Emitter
	log     *logger.Logger
	now     func() time.Time
}

func NewRegistry(log *logger.Logger, emitter realtime.Emitter) *Registry {
	return &Registry{
		tasks:   make(map[string]*Task),
		emitter: emitter,
		log:     log.With("component", "TaskRegistry"),
		now:     time.Now,
	}
}

// Create registers a new pending task.
func (r *Registry) Create() *Task {
	t := newTask(uuid.NewString(), r.emitter, r.now)
	r.mu.Lock()
	r.tasks[t.ID()] = t
	r.mu.Unlock()
	r.log.Debug("task created", "task_id", t.ID())
	return t
}

func (r *Registry) Get(id string) (*Task, error) {
	r.mu.RLock()
	t, ok := r.tasks[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

func (r *Registry) Snapshot(id string) (types.Task, error) {
	t, err := r.Get(id)
	if err != nil {
		return types.Task{}, err
	}
	return t.Snapshot(), nil
}

// List returns snapshots of all tasks, oldest first.
func (r *Registry) List() []types.Task {
	r.mu.RLock()
	out := make([]types.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t.Snapshot())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.tasks, id)
	r.mu.Unlock()
}

func (r *Registry) Pause(ctx context.Context, id string) (types.Task, error) {
	t, err := r.Get(id)
	if err != nil {
		return types.Task{}, err
	}
	snap, moved, err := t.pause(ctx)
	r.logTransition("pause", snap, moved, err)
	return snap, err
}

func (r *Registry) Resume(ctx context.Context, id string) (types.Task, error) {
	t, err := r.Get(id)
	if err != nil {
		return types.Task{}, err
	}
	snap, moved, err := t.resume(ctx)
	r.logTransition("resume", snap, moved, err)
	return snap, err
}

func (r *Registry) Stop(ctx context.Context, id string) (types.Task, error) {
	t, err := r.Get(id)
	if err != nil {
		return types.Task{}, err
	}
	snap, moved, err := t.stop(ctx)
	r.logTransition("stop", snap, moved, err)
	return snap, err
}

func (r *Registry) logTransition(op string, snap types.Task, moved bool, err error) {
	switch {
	case err != nil:
		r.log.Warn("task transition rejected", "op", op, "task_id", snap.ID, "status", snap.Status, "error", err)
	case moved:
		r.log.Info("task transition", "op", op, "task_id", snap.ID, "status", snap.Status)
	default:
		r.log.Debug("task transition no-op", "op", op, "task_id", snap.ID, "status", snap.Status)
	}
}
