package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/lessonplan-backend/internal/data/repos"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

type Repos = repos.Repos

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return repos.New(db, log)
}
