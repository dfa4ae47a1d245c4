package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lessonplan-backend/internal/http/middleware"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
	"github.com/yungbote/lessonplan-backend/internal/realtime"
)

// RealtimeHandler serves progress over websocket and SSE. A task_id query
// parameter narrows the stream to one task; without it every task's events
// are delivered.
type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.Hub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

func (h *RealtimeHandler) subscribe(c *gin.Context) *realtime.Client {
	if id := c.Query("task_id"); id != "" {
		return h.hub.Subscribe(realtime.TaskChannel(id))
	}
	return h.hub.Subscribe()
}

// GET /ws/progress
func (h *RealtimeHandler) Websocket(c *gin.Context) {
	middleware.MarkStream(c)
	client := h.subscribe(c)
	defer h.hub.Unsubscribe(client)
	h.log.Debug("Websocket subscriber attached", "client_id", client.ID, "task_id", c.Query("task_id"))
	h.hub.ServeWebsocket(c.Writer, c.Request, client)
}

// GET /api/progress/stream
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	middleware.MarkStream(c)
	client := h.subscribe(c)
	defer h.hub.Unsubscribe(client)
	h.log.Debug("SSE subscriber attached", "client_id", client.ID, "task_id", c.Query("task_id"))
	h.hub.ServeSSE(c.Writer, c.Request, client)
}
