package domain

import (
	"github.com/yungbote/lessonplan-backend/internal/domain/jobs"
	"github.com/yungbote/lessonplan-backend/internal/domain/lessonplan"
	"github.com/yungbote/lessonplan-backend/internal/domain/materials"
)

type (
	LessonRecord = lessonplan.LessonRecord
	ContentMap   = lessonplan.ContentMap

	TaskStatus    = jobs.TaskStatus
	Task          = jobs.Task
	TaskRecord    = jobs.TaskRecord
	ProgressEvent = jobs.ProgressEvent

	FileKind     = materials.FileKind
	UploadedFile = materials.UploadedFile
)

const (
	TaskPending   = jobs.TaskPending
	TaskRunning   = jobs.TaskRunning
	TaskPaused    = jobs.TaskPaused
	TaskStopped   = jobs.TaskStopped
	TaskCompleted = jobs.TaskCompleted
	TaskFailed    = jobs.TaskFailed

	FileKindSyllabus = materials.FileKindSyllabus
	FileKindSchedule = materials.FileKindSchedule
	FileKindTemplate = materials.FileKindTemplate

	ErrUserTerminated = jobs.ErrUserTerminated
)

var (
	DefaultFields    = lessonplan.DefaultFields
	ParseFileKind    = materials.ParseFileKind
	NewProgressEvent = jobs.NewProgressEvent
)

// AutoMigrateModels lists the tables owned by this service.
func AutoMigrateModels() []any {
	return []any{
		&materials.UploadedFile{},
		&jobs.TaskRecord{},
	}
}
