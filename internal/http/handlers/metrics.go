package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lessonplan-backend/internal/observability"
)

type MetricsHandler struct {
	metrics *observability.Metrics
}

func NewMetricsHandler(m *observability.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: m}
}

// GET /metrics
func (h *MetricsHandler) Serve(c *gin.Context) {
	if h.metrics == nil {
		c.String(http.StatusNotFound, "metrics disabled")
		return
	}
	h.metrics.WriteHTTP(c.Writer, c.Request)
}
