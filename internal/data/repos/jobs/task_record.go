package jobs

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lessonplan-backend/internal/domain"
	"github.com/yungbote/lessonplan-backend/internal/platform/dbctx"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

var ErrTaskRecordNotFound = errors.New("task record not found")

// TaskRecordRepo archives finished task snapshots. It is a history of past
// runs, not a way to resume them.
type TaskRecordRepo interface {
	Archive(dbc dbctx.Context, task types.Task) error
	GetByID(dbc dbctx.Context, id string) (*types.TaskRecord, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*types.TaskRecord, error)
}

type taskRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRecordRepo(db *gorm.DB, baseLog *logger.Logger) TaskRecordRepo {
	repoLog := baseLog.With("repo", "TaskRecordRepo")
	return &taskRecordRepo{db: db, log: repoLog}
}

func (r *taskRecordRepo) Archive(dbc dbctx.Context, task types.Task) error {
	files := task.ResultFiles
	if files == nil {
		files = []string{}
	}
	raw, err := json.Marshal(files)
	if err != nil {
		return err
	}
	rec := &types.TaskRecord{
		ID:          task.ID,
		Status:      string(task.Status),
		Progress:    task.Progress,
		Total:       task.Total,
		Error:       task.Error,
		ResultFiles: datatypes.JSON(raw),
		CreatedAt:   task.CreatedAt,
		FinishedAt:  task.UpdatedAt,
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now()
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(rec).Error
}

func (r *taskRecordRepo) GetByID(dbc dbctx.Context, id string) (*types.TaskRecord, error) {
	var out types.TaskRecord
	err := dbc.DB(r.db).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *taskRecordRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.TaskRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var results []*types.TaskRecord
	if err := dbc.DB(r.db).
		Order("finished_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
