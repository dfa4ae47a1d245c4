package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/lessonplan-backend/internal/data/repos/jobs"
	"github.com/yungbote/lessonplan-backend/internal/data/repos/materials"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

type UploadedFileRepo = materials.UploadedFileRepo
type TaskRecordRepo = jobs.TaskRecordRepo

var (
	ErrFileNotFound       = materials.ErrFileNotFound
	ErrTaskRecordNotFound = jobs.ErrTaskRecordNotFound
)

// Repos is the set of repositories the services depend on.
type Repos struct {
	Files UploadedFileRepo
	Tasks TaskRecordRepo
}

func New(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Files: materials.NewUploadedFileRepo(db, log),
		Tasks: jobs.NewTaskRecordRepo(db, log),
	}
}
