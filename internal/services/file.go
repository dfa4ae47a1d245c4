package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/lessonplan-backend/internal/data/repos"
	"github.com/yungbote/lessonplan-backend/internal/docgen"
	types "github.com/yungbote/lessonplan-backend/internal/domain"
	"github.com/yungbote/lessonplan-backend/internal/platform/apierr"
	"github.com/yungbote/lessonplan-backend/internal/platform/dbctx"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
	"github.com/yungbote/lessonplan-backend/internal/schedule"
	"github.com/yungbote/lessonplan-backend/internal/storage"
)

// ScheduleParse is the preview returned for a parsed schedule.
type ScheduleParse struct {
	Status   string               `json:"status"`
	Data     []types.LessonRecord `json:"data"`
	Total    int                  `json:"total"`
	Rejected []string             `json:"rejected,omitempty"`
	Message  string               `json:"message"`
}

// TemplateParse lists the placeholders found in an uploaded template.
type TemplateParse struct {
	Status         string   `json:"status"`
	ParagraphCount int      `json:"paragraph_count"`
	Placeholders   []string `json:"placeholders"`
	Message        string   `json:"message"`
}

type FileService interface {
	Upload(ctx context.Context, kind types.FileKind, filename string, r io.Reader) (*types.UploadedFile, error)
	List(ctx context.Context) ([]*types.UploadedFile, error)
	Get(ctx context.Context, id string) (*types.UploadedFile, error)
	// Resolve loads a file and checks it has the expected kind.
	Resolve(ctx context.Context, id string, kind types.FileKind) (*types.UploadedFile, error)
	Delete(ctx context.Context, id string) error
	Parse(ctx context.Context, kind types.FileKind, id string) (any, error)
}

type fileService struct {
	log     *logger.Logger
	uploads storage.ArtifactStore
	files   repos.UploadedFileRepo
}

func NewFileService(baseLog *logger.Logger, uploads storage.ArtifactStore, files repos.UploadedFileRepo) FileService {
	return &fileService{
		log:     baseLog.With("service", "FileService"),
		uploads: uploads,
		files:   files,
	}
}

func (fs *fileService) Upload(ctx context.Context, kind types.FileKind, filename string, r io.Reader) (*types.UploadedFile, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowed(kind, ext) {
		return nil, apierr.New(400, "invalid_file_type",
			fmt.Errorf("%s 文件只支持 %s 格式", kind, strings.Join(kind.AllowedExtensions(), "/")))
	}

	id := uuid.New()
	stored := id.String() + ext
	art, err := fs.uploads.Put(ctx, stored, r)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	rec := &types.UploadedFile{
		ID:           id,
		Kind:         kind,
		OriginalName: filename,
		StoredName:   stored,
		Path:         art.Location,
		Size:         art.Size,
		SHA256:       art.SHA256,
	}
	if _, err := fs.files.Create(dbctx.Context{Ctx: ctx}, rec); err != nil {
		_ = fs.uploads.Delete(context.WithoutCancel(ctx), stored)
		return nil, fmt.Errorf("index upload: %w", err)
	}
	fs.log.Info("File uploaded", "file_id", id, "kind", kind, "filename", filename, "size", art.Size)
	return rec, nil
}

func allowed(kind types.FileKind, ext string) bool {
	for _, e := range kind.AllowedExtensions() {
		if e == ext {
			return true
		}
	}
	return false
}

func (fs *fileService) List(ctx context.Context) ([]*types.UploadedFile, error) {
	return fs.files.List(dbctx.Context{Ctx: ctx}, "")
}

func (fs *fileService) Get(ctx context.Context, id string) (*types.UploadedFile, error) {
	fid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, apierr.New(400, "invalid_file_id", fmt.Errorf("文件ID %q 无效", id))
	}
	f, err := fs.files.GetByID(dbctx.Context{Ctx: ctx}, fid)
	if errors.Is(err, repos.ErrFileNotFound) {
		return nil, apierr.New(404, "file_not_found", fmt.Errorf("文件ID %s 不存在", id))
	}
	return f, err
}

func (fs *fileService) Resolve(ctx context.Context, id string, kind types.FileKind) (*types.UploadedFile, error) {
	f, err := fs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Kind != kind {
		return nil, apierr.New(400, "wrong_file_type", fmt.Errorf("文件类型错误: 期望 %s, 实际 %s", kind, f.Kind))
	}
	return f, nil
}

func (fs *fileService) Delete(ctx context.Context, id string) error {
	f, err := fs.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := fs.files.SoftDeleteByID(dbctx.Context{Ctx: ctx}, f.ID); err != nil {
		return err
	}
	if err := fs.uploads.Delete(ctx, f.StoredName); err != nil && !errors.Is(err, storage.ErrArtifactNotFound) {
		fs.log.Warn("Removing stored upload failed", "file_id", f.ID, "error", err)
	}
	fs.log.Info("File deleted", "file_id", f.ID)
	return nil
}

func (fs *fileService) Parse(ctx context.Context, kind types.FileKind, id string) (any, error) {
	f, err := fs.Resolve(ctx, id, kind)
	if err != nil {
		return nil, err
	}
	raw, err := fs.read(ctx, f)
	if err != nil {
		return nil, err
	}

	var out any
	switch kind {
	case types.FileKindSchedule:
		s, err := schedule.Parse(bytes.NewReader(raw))
		if err != nil {
			return nil, apierr.New(422, "invalid_schedule", fmt.Errorf("Excel文件格式不正确: %w", err))
		}
		p := ScheduleParse{Status: "success", Data: s.Records, Total: len(s.Records)}
		if p.Data == nil {
			p.Data = []types.LessonRecord{}
		}
		for _, r := range s.Rejected {
			p.Rejected = append(p.Rejected, r.Error())
		}
		p.Message = fmt.Sprintf("成功解析%d条课程记录", p.Total)
		out = p
	case types.FileKindSyllabus:
		s, err := schedule.ParseSyllabus(raw)
		if err != nil {
			return nil, apierr.New(422, "invalid_syllabus", err)
		}
		out = s
	case types.FileKindTemplate:
		text, err := docgen.ExtractText(raw)
		if err != nil {
			return nil, apierr.New(422, "invalid_template", err)
		}
		p := TemplateParse{Status: "success", Placeholders: placeholders(text)}
		if text != "" {
			p.ParagraphCount = strings.Count(text, "\n") + 1
		}
		p.Message = fmt.Sprintf("模板包含%d个占位符", len(p.Placeholders))
		out = p
	default:
		return nil, apierr.New(400, "invalid_file_type", fmt.Errorf("unknown file type %q", kind))
	}

	if b, err := json.Marshal(out); err == nil {
		if err := fs.files.SaveParsed(dbctx.Context{Ctx: ctx}, f.ID, datatypes.JSON(b)); err != nil {
			fs.log.Warn("Saving parse preview failed", "file_id", f.ID, "error", err)
		}
	}
	return out, nil
}

func (fs *fileService) read(ctx context.Context, f *types.UploadedFile) ([]byte, error) {
	rc, _, err := fs.uploads.Open(ctx, f.StoredName)
	if errors.Is(err, storage.ErrArtifactNotFound) {
		return nil, apierr.New(404, "file_not_found", fmt.Errorf("文件不存在: %s", f.OriginalName))
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

var placeholderRE = regexp.MustCompile(`\{([^{}\s]+)\}`)

func placeholders(text string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range placeholderRE.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}
