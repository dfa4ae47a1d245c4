package jobs

import (
	"time"

	"gorm.io/datatypes"
)

// TaskRecord archives a finished task so results survive in the file index.
type TaskRecord struct {
	ID          string         `gorm:"type:varchar(64);primaryKey" json:"task_id"`
	Status      string         `gorm:"column:status;not null;index" json:"status"`
	Progress    int            `gorm:"column:progress;not null;default:0" json:"progress"`
	Total       int            `gorm:"column:total;not null;default:0" json:"total"`
	Error       string         `gorm:"column:error" json:"error,omitempty"`
	ResultFiles datatypes.JSON `gorm:"column:result_files" json:"result_files"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	FinishedAt  time.Time      `gorm:"index" json:"finished_at"`
}

func (TaskRecord) TableName() string { return "task_record" }
