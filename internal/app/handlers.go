package app

import (
	"github.com/yungbote/lessonplan-backend/internal/config"
	httpH "github.com/yungbote/lessonplan-backend/internal/http/handlers"
	"github.com/yungbote/lessonplan-backend/internal/llm"
	"github.com/yungbote/lessonplan-backend/internal/observability"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
	"github.com/yungbote/lessonplan-backend/internal/realtime"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Metrics  *httpH.MetricsHandler
	File     *httpH.FileHandler
	Generate *httpH.GenerateHandler
	Realtime *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, cfg *config.Config, svc Services, hub *realtime.Hub, m *observability.Metrics, backend llm.Client) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(backend),
		Metrics:  httpH.NewMetricsHandler(m),
		File:     httpH.NewFileHandler(log, svc.Files, cfg.HTTP.MaxUploadBytes),
		Generate: httpH.NewGenerateHandler(log, svc.Generation),
		Realtime: httpH.NewRealtimeHandler(log, hub),
	}
}
