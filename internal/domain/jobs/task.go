package jobs

import "time"

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskPaused    TaskStatus = "paused"
	TaskStopped   TaskStatus = "stopped"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Finished reports whether the task can no longer make progress.
func (s TaskStatus) Finished() bool {
	switch s {
	case TaskStopped, TaskCompleted, TaskFailed:
		return true
	default:
		return false
	}
}

// ErrUserTerminated is the error text recorded on a stopped task.
const ErrUserTerminated = "user terminated"

// Task is a point-in-time copy of one batch generation run.
type Task struct {
	ID          string     `json:"task_id"`
	Status      TaskStatus `json:"status"`
	Progress    int        `json:"progress"`
	Total       int        `json:"total"`
	Current     string     `json:"current"`
	Message     string     `json:"message,omitempty"`
	Error       string     `json:"error,omitempty"`
	ResultFiles []string   `json:"result_files"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

const ProgressEventType = "progress"

// ProgressEvent is what subscribers receive on every broadcast.
type ProgressEvent struct {
	Type     string     `json:"type"`
	TaskID   string     `json:"task_id"`
	Status   TaskStatus `json:"status"`
	Progress int        `json:"progress"`
	Message  string     `json:"message"`
	Current  string     `json:"current"`
}

func NewProgressEvent(t Task, message string) ProgressEvent {
	return ProgressEvent{
		Type:     ProgressEventType,
		TaskID:   t.ID,
		Status:   t.Status,
		Progress: t.Progress,
		Message:  message,
		Current:  t.Current,
	}
}
