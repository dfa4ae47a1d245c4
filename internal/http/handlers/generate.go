package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/lessonplan-backend/internal/domain"
	"github.com/yungbote/lessonplan-backend/internal/http/response"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
	"github.com/yungbote/lessonplan-backend/internal/services"
	"github.com/yungbote/lessonplan-backend/internal/storage"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type GenerateHandler struct {
	log *logger.Logger
	gen services.GenerationService
}

func NewGenerateHandler(log *logger.Logger, gen services.GenerationService) *GenerateHandler {
	return &GenerateHandler{log: log.With("handler", "GenerateHandler"), gen: gen}
}

// POST /api/generate
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req services.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	task, err := h.gen.Submit(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "generate_failed")
		return
	}
	response.RespondOK(c, gin.H{"task_id": task.ID, "status": "started"})
}

// GET /api/generate/status/:id
func (h *GenerateHandler) Status(c *gin.Context) {
	h.respondTask(c, "status_failed", h.gen.Status)
}

// POST /api/generate/:id/pause
func (h *GenerateHandler) Pause(c *gin.Context) {
	h.respondTask(c, "pause_failed", h.gen.Pause)
}

// POST /api/generate/:id/resume
func (h *GenerateHandler) Resume(c *gin.Context) {
	h.respondTask(c, "resume_failed", h.gen.Resume)
}

// POST /api/generate/:id/stop
func (h *GenerateHandler) Stop(c *gin.Context) {
	h.respondTask(c, "stop_failed", h.gen.Stop)
}

func (h *GenerateHandler) respondTask(c *gin.Context, code string, op func(ctx context.Context, id string) (types.Task, error)) {
	id := c.Param("id")
	if id == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_task_id", errors.New("missing task id"))
		return
	}
	task, err := op(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err, code)
		return
	}
	response.RespondOK(c, task)
}

// GET /api/generate/results
func (h *GenerateHandler) Results(c *gin.Context) {
	arts, err := h.gen.Results(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "list_results_failed")
		return
	}
	if arts == nil {
		arts = []storage.Artifact{}
	}
	response.RespondOK(c, gin.H{"results": arts})
}

// GET /api/generate/history?limit=N
func (h *GenerateHandler) History(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}
	recs, err := h.gen.History(c.Request.Context(), limit)
	if err != nil {
		response.RespondAPIError(c, err, "list_history_failed")
		return
	}
	if recs == nil {
		recs = []*types.TaskRecord{}
	}
	response.RespondOK(c, gin.H{"tasks": recs})
}

// GET /api/download/:filename
func (h *GenerateHandler) Download(c *gin.Context) {
	rc, art, err := h.gen.Download(c.Request.Context(), c.Param("filename"))
	if err != nil {
		response.RespondAPIError(c, err, "download_failed")
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(art.Name))
	c.Header("Content-Type", docxContentType)
	if art.Size > 0 {
		c.Header("Content-Length", strconv.FormatInt(art.Size, 10))
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.log.Warn("Download interrupted", "filename", art.Name, "error", err)
	}
}
