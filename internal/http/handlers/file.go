package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/lessonplan-backend/internal/domain"
	"github.com/yungbote/lessonplan-backend/internal/http/response"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
	"github.com/yungbote/lessonplan-backend/internal/services"
)

type FileHandler struct {
	log   *logger.Logger
	files services.FileService
	// maxUpload caps a single multipart upload in bytes.
	maxUpload int64
}

func NewFileHandler(log *logger.Logger, files services.FileService, maxUpload int64) *FileHandler {
	return &FileHandler{log: log.With("handler", "FileHandler"), files: files, maxUpload: maxUpload}
}

type uploadResponse struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Kind     string `json:"file_type"`
}

// POST /api/upload/:kind
func (h *FileHandler) Upload(c *gin.Context) {
	kind, ok := types.ParseFileKind(c.Param("kind"))
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "invalid_file_type", errors.New("文件类型必须是 syllabus、schedule 或 template"))
		return
	}
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", errors.New("请选择要上传的文件"))
		return
	}
	src, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_upload", err)
		return
	}
	defer src.Close()

	f, err := h.files.Upload(c.Request.Context(), kind, fh.Filename, src)
	if err != nil {
		response.RespondAPIError(c, err, "upload_failed")
		return
	}
	response.RespondOK(c, uploadResponse{
		FileID:   f.ID.String(),
		Filename: f.OriginalName,
		Size:     f.Size,
		Kind:     string(f.Kind),
	})
}

// GET /api/files
func (h *FileHandler) List(c *gin.Context) {
	files, err := h.files.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "list_files_failed")
		return
	}
	if files == nil {
		files = []*types.UploadedFile{}
	}
	response.RespondOK(c, gin.H{"files": files})
}

// DELETE /api/files/:id
func (h *FileHandler) Delete(c *gin.Context) {
	if err := h.files.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.RespondAPIError(c, err, "delete_file_failed")
		return
	}
	response.RespondOK(c, gin.H{"status": "deleted"})
}

type parseRequest struct {
	FileID string `json:"file_id"`
}

// POST /api/parse/:file_type
func (h *FileHandler) Parse(c *gin.Context) {
	kind, ok := types.ParseFileKind(c.Param("file_type"))
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "invalid_file_type", errors.New("不支持的文件类型"))
		return
	}
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.FileID) == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_file_id", errors.New("缺少 file_id"))
		return
	}
	out, err := h.files.Parse(c.Request.Context(), kind, req.FileID)
	if err != nil {
		response.RespondAPIError(c, err, "parse_failed")
		return
	}
	response.RespondOK(c, out)
}
