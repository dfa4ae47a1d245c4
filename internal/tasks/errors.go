package tasks

import (
	"errors"
	"fmt"

	types "github.com/yungbote/lessonplan-backend/internal/domain"
)

var ErrNotFound = errors.New("task not found")

// InvalidTransitionError rejects an operator request that the task's current
// status does not allow.
type InvalidTransitionError struct {
	TaskID  string
	Current types.TaskStatus
	Target  types.TaskStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("task %s cannot move from %s to %s", e.TaskID, e.Current, e.Target)
}
