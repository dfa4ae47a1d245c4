package app

import (
	httpserver "github.com/yungbote/lessonplan-backend/internal/http"
	"github.com/yungbote/lessonplan-backend/internal/observability"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, m *observability.Metrics, h Handlers) httpserver.RouterConfig {
	return httpserver.RouterConfig{
		Log:             log,
		Metrics:         m,
		ServiceName:     serviceName,
		FileHandler:     h.File,
		GenerateHandler: h.Generate,
		RealtimeHandler: h.Realtime,
		MetricsHandler:  h.Metrics,
		HealthHandler:   h.Health,
	}
}
