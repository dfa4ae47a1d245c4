package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/lessonplan-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lessonplan-backend/internal/http/middleware"
	"github.com/yungbote/lessonplan-backend/internal/observability"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string

	FileHandler     *httpH.FileHandler
	GenerateHandler *httpH.GenerateHandler
	RealtimeHandler *httpH.RealtimeHandler
	MetricsHandler  *httpH.MetricsHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", cfg.MetricsHandler.Serve)
	}

	// Realtime
	if cfg.RealtimeHandler != nil {
		r.GET("/ws/progress", cfg.RealtimeHandler.Websocket)
	}

	api := r.Group("/api")
	{
		if cfg.RealtimeHandler != nil {
			api.GET("/progress/stream", cfg.RealtimeHandler.SSEStream)
		}

		// Files
		if cfg.FileHandler != nil {
			api.POST("/upload/:kind", cfg.FileHandler.Upload)
			api.GET("/files", cfg.FileHandler.List)
			api.DELETE("/files/:id", cfg.FileHandler.Delete)
			api.POST("/parse/:file_type", cfg.FileHandler.Parse)
		}

		// Generation
		if cfg.GenerateHandler != nil {
			api.POST("/generate", cfg.GenerateHandler.Generate)
			api.GET("/generate/status/:id", cfg.GenerateHandler.Status)
			api.GET("/generate/results", cfg.GenerateHandler.Results)
			api.GET("/generate/history", cfg.GenerateHandler.History)
			api.POST("/generate/:id/pause", cfg.GenerateHandler.Pause)
			api.POST("/generate/:id/resume", cfg.GenerateHandler.Resume)
			api.POST("/generate/:id/stop", cfg.GenerateHandler.Stop)
			api.GET("/download/:filename", cfg.GenerateHandler.Download)
		}
	}

	return r
}
