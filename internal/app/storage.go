package app

import (
	"context"
	"fmt"

	"github.com/yungbote/lessonplan-backend/internal/config"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
	"github.com/yungbote/lessonplan-backend/internal/storage"
)

// wireArtifactStore returns object storage when MinIO is configured and the
// local output directory otherwise.
func wireArtifactStore(ctx context.Context, log *logger.Logger, cfg config.StorageConfig) (storage.ArtifactStore, error) {
	if cfg.Minio.Enabled() {
		s, err := storage.NewMinioStore(ctx, cfg.Minio, "lesson_plans/")
		if err != nil {
			return nil, fmt.Errorf("init minio store: %w", err)
		}
		log.Info("Generated documents go to object storage", "endpoint", cfg.Minio.Endpoint, "bucket", cfg.Minio.Bucket)
		return s, nil
	}
	s, err := storage.NewLocalStore(cfg.OutputDir, ".docx")
	if err != nil {
		return nil, fmt.Errorf("init output dir: %w", err)
	}
	log.Info("Generated documents go to local disk", "dir", s.Dir())
	return s, nil
}
