package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/yungbote/lessonplan-backend/internal/data/repos"
	"github.com/yungbote/lessonplan-backend/internal/docgen"
	types "github.com/yungbote/lessonplan-backend/internal/domain"
	"github.com/yungbote/lessonplan-backend/internal/jobs/orchestrator"
	"github.com/yungbote/lessonplan-backend/internal/platform/apierr"
	"github.com/yungbote/lessonplan-backend/internal/platform/ctxutil"
	"github.com/yungbote/lessonplan-backend/internal/platform/dbctx"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
	"github.com/yungbote/lessonplan-backend/internal/schedule"
	"github.com/yungbote/lessonplan-backend/internal/storage"
	"github.com/yungbote/lessonplan-backend/internal/tasks"
)

type GenerateRequest struct {
	ScheduleFileID string `json:"schedule_file_id"`
	SyllabusFileID string `json:"syllabus_file_id,omitempty"`
	TemplateFileID string `json:"template_file_id,omitempty"`
	WeekRange      string `json:"week_range,omitempty"`
}

type GenerationService interface {
	Submit(ctx context.Context, req GenerateRequest) (types.Task, error)
	Status(ctx context.Context, id string) (types.Task, error)
	Pause(ctx context.Context, id string) (types.Task, error)
	Resume(ctx context.Context, id string) (types.Task, error)
	Stop(ctx context.Context, id string) (types.Task, error)
	Results(ctx context.Context) ([]storage.Artifact, error)
	History(ctx context.Context, limit int) ([]*types.TaskRecord, error)
	Download(ctx context.Context, name string) (io.ReadCloser, storage.Artifact, error)
}

type generationService struct {
	log       *logger.Logger
	orch      *orchestrator.Orchestrator
	registry  *tasks.Registry
	files     FileService
	uploads   storage.ArtifactStore
	artifacts storage.ArtifactStore
	history   repos.TaskRecordRepo
}

func NewGenerationService(
	baseLog *logger.Logger,
	orch *orchestrator.Orchestrator,
	registry *tasks.Registry,
	files FileService,
	uploads storage.ArtifactStore,
	artifacts storage.ArtifactStore,
	history repos.TaskRecordRepo,
) GenerationService {
	return &generationService{
		log:       baseLog.With("service", "GenerationService"),
		orch:      orch,
		registry:  registry,
		files:     files,
		uploads:   uploads,
		artifacts: artifacts,
		history:   history,
	}
}

// Submit checks the referenced files and the week range synchronously, then
// starts the task. Parsing happens inside the task's setup phase.
func (s *generationService) Submit(ctx context.Context, req GenerateRequest) (types.Task, error) {
	if strings.TrimSpace(req.ScheduleFileID) == "" {
		return types.Task{}, apierr.New(http.StatusBadRequest, "missing_schedule", errors.New("缺少教学进度表文件ID"))
	}
	weeks, err := schedule.ParseWeekRange(req.WeekRange)
	if err != nil {
		return types.Task{}, apierr.New(http.StatusBadRequest, "invalid_week_range", err)
	}

	sched, err := s.files.Resolve(ctx, req.ScheduleFileID, types.FileKindSchedule)
	if err != nil {
		return types.Task{}, err
	}
	orq := orchestrator.Request{
		WeekRange: weeks,
		LoadRecords: func(ctx context.Context) ([]types.LessonRecord, error) {
			raw, err := s.readUpload(ctx, sched)
			if err != nil {
				return nil, err
			}
			parsed, err := schedule.Parse(bytes.NewReader(raw))
			if err != nil {
				return nil, err
			}
			if len(parsed.Rejected) > 0 {
				s.log.Warn("Schedule rows rejected", "file_id", sched.ID, "count", len(parsed.Rejected), "error", parsed.Err())
			}
			return parsed.Records, nil
		},
	}

	if req.SyllabusFileID != "" {
		syl, err := s.files.Resolve(ctx, req.SyllabusFileID, types.FileKindSyllabus)
		if err != nil {
			return types.Task{}, err
		}
		orq.LoadSyllabus = func(ctx context.Context) (string, error) {
			raw, err := s.readUpload(ctx, syl)
			if err != nil {
				return "", err
			}
			parsed, err := schedule.ParseSyllabus(raw)
			if err != nil {
				return "", err
			}
			return parsed.Content, nil
		}
	}
	if req.TemplateFileID != "" {
		tpl, err := s.files.Resolve(ctx, req.TemplateFileID, types.FileKindTemplate)
		if err != nil {
			return types.Task{}, err
		}
		orq.LoadRenderer = func(ctx context.Context) (docgen.Renderer, error) {
			raw, err := s.readUpload(ctx, tpl)
			if err != nil {
				return nil, err
			}
			return docgen.NewDocxRenderer(raw)
		}
	}

	task, err := s.orch.Submit(ctx, orq)
	if err != nil {
		return types.Task{}, err
	}
	ctxutil.SetTaskID(ctx, task.ID)
	s.log.Info("Generation started", "task_id", task.ID, "schedule_file_id", sched.ID, "week_range", weeks.String())
	return task, nil
}

func (s *generationService) readUpload(ctx context.Context, f *types.UploadedFile) ([]byte, error) {
	rc, _, err := s.uploads.Open(ctx, f.StoredName)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.OriginalName, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *generationService) Status(ctx context.Context, id string) (types.Task, error) {
	t, err := s.registry.Snapshot(id)
	return t, taskError(id, err)
}

func (s *generationService) Pause(ctx context.Context, id string) (types.Task, error) {
	t, err := s.registry.Pause(ctx, id)
	return t, taskError(id, err)
}

func (s *generationService) Resume(ctx context.Context, id string) (types.Task, error) {
	t, err := s.registry.Resume(ctx, id)
	return t, taskError(id, err)
}

func (s *generationService) Stop(ctx context.Context, id string) (types.Task, error) {
	t, err := s.registry.Stop(ctx, id)
	return t, taskError(id, err)
}

// taskError maps registry errors to API errors.
func taskError(id string, err error) error {
	if err == nil {
		return nil
	}
	var ite *tasks.InvalidTransitionError
	switch {
	case errors.Is(err, tasks.ErrNotFound):
		return apierr.New(http.StatusNotFound, "task_not_found", fmt.Errorf("任务 %s 不存在", id))
	case errors.As(err, &ite):
		return apierr.New(http.StatusConflict, "invalid_transition",
			fmt.Errorf("任务状态为 %s，无法切换到 %s", ite.Current, ite.Target))
	default:
		return err
	}
}

func (s *generationService) Results(ctx context.Context) ([]storage.Artifact, error) {
	return s.artifacts.List(ctx)
}

func (s *generationService) History(ctx context.Context, limit int) ([]*types.TaskRecord, error) {
	if s.history == nil {
		return []*types.TaskRecord{}, nil
	}
	return s.history.ListRecent(dbctx.Context{Ctx: ctx}, limit)
}

func (s *generationService) Download(ctx context.Context, name string) (io.ReadCloser, storage.Artifact, error) {
	rc, art, err := s.artifacts.Open(ctx, name)
	switch {
	case errors.Is(err, storage.ErrInvalidName):
		return nil, storage.Artifact{}, apierr.New(http.StatusBadRequest, "invalid_filename", err)
	case errors.Is(err, storage.ErrArtifactNotFound):
		return nil, storage.Artifact{}, apierr.New(http.StatusNotFound, "file_not_found", errors.New("文件不存在"))
	case err != nil:
		return nil, storage.Artifact{}, err
	}
	return rc, art, nil
}

// TaskArchiver adapts the task record repo to the orchestrator's Archiver.
type TaskArchiver struct {
	Repo repos.TaskRecordRepo
}

func (a TaskArchiver) Archive(ctx context.Context, t types.Task) error {
	return a.Repo.Archive(dbctx.Context{Ctx: ctx}, t)
}
