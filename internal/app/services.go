package app

import (
	"context"
	"fmt"

	"github.com/yungbote/lessonplan-backend/internal/config"
	"github.com/yungbote/lessonplan-backend/internal/docgen"
	"github.com/yungbote/lessonplan-backend/internal/jobs/orchestrator"
	"github.com/yungbote/lessonplan-backend/internal/jobs/worker"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
	"github.com/yungbote/lessonplan-backend/internal/prompts"
	"github.com/yungbote/lessonplan-backend/internal/realtime"
	"github.com/yungbote/lessonplan-backend/internal/services"
	"github.com/yungbote/lessonplan-backend/internal/storage"
	"github.com/yungbote/lessonplan-backend/internal/tasks"
)

type Services struct {
	Registry     *tasks.Registry
	Executor     *worker.Executor
	Orchestrator *orchestrator.Orchestrator
	Files        services.FileService
	Generation   services.GenerationService
}

func wireServices(ctx context.Context, log *logger.Logger, cfg *config.Config, a *App) (Services, error) {
	log.Info("Wiring services...")

	var emitter realtime.Emitter = &realtime.HubEmitter{Hub: a.Hub}
	if a.Bus != nil {
		emitter = &realtime.BusEmitter{Bus: a.Bus, Fallback: a.Hub, Log: log}
	}

	uploads, err := storage.NewLocalStore(cfg.Storage.UploadDir, "")
	if err != nil {
		return Services{}, fmt.Errorf("init upload dir: %w", err)
	}
	artifacts, err := wireArtifactStore(ctx, log, cfg.Storage)
	if err != nil {
		return Services{}, err
	}
	renderer, err := defaultRenderer(log, cfg.Storage.TemplatePath)
	if err != nil {
		return Services{}, err
	}

	registry := tasks.NewRegistry(log, emitter)
	executor := worker.NewExecutor(ctx, log, cfg.Worker.Concurrency)
	orch, err := orchestrator.New(log, orchestrator.Config{
		Registry:        registry,
		Executor:        executor,
		Generator:       a.LLM,
		Catalog:         prompts.Default(),
		Artifacts:       artifacts,
		Renderer:        renderer,
		Archiver:        services.TaskArchiver{Repo: a.Repos.Tasks},
		SyllabusExcerpt: cfg.LLM.SyllabusExcerpt,
	})
	if err != nil {
		return Services{}, err
	}

	files := services.NewFileService(log, uploads, a.Repos.Files)
	return Services{
		Registry:     registry,
		Executor:     executor,
		Orchestrator: orch,
		Files:        files,
		Generation:   services.NewGenerationService(log, orch, registry, files, uploads, artifacts, a.Repos.Tasks),
	}, nil
}

func defaultRenderer(log *logger.Logger, path string) (docgen.Renderer, error) {
	if path == "" {
		return docgen.DefaultRenderer()
	}
	r, err := docgen.LoadDocxRenderer(path)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", path, err)
	}
	log.Info("Using document template", "path", path)
	return r, nil
}
