package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/lessonplan-backend/internal/docgen"
	types "github.com/yungbote/lessonplan-backend/internal/domain"
	"github.com/yungbote/lessonplan-backend/internal/jobs/worker"
	"github.com/yungbote/lessonplan-backend/internal/llm"
	"github.com/yungbote/lessonplan-backend/internal/observability"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
	"github.com/yungbote/lessonplan-backend/internal/prompts"
	"github.com/yungbote/lessonplan-backend/internal/schedule"
	"github.com/yungbote/lessonplan-backend/internal/storage"
	"github.com/yungbote/lessonplan-backend/internal/tasks"
)

const (
	msgStart     = "开始生成教案..."
	msgParse     = "正在解析教学进度表..."
	msgInit      = "正在初始化AI生成器..."
	msgLessonFmt = "正在生成%s教案..."
	msgDoneFmt   = "教案生成完成！共生成%d个教案"
	msgFailedFmt = "生成失败: %v"
)

var ErrNoRecords = errors.New("no lesson records in the selected week range")

// Request describes one batch. The loaders run inside the task's setup
// phases, so their failures fail the task instead of the submission.
type Request struct {
	LoadRecords func(ctx context.Context) ([]types.LessonRecord, error)
	// LoadSyllabus returns syllabus text used as prompt context. Optional.
	LoadSyllabus func(ctx context.Context) (string, error)
	// LoadRenderer returns the template renderer. Optional; the orchestrator's
	// default renderer is used otherwise.
	LoadRenderer func(ctx context.Context) (docgen.Renderer, error)
	WeekRange    schedule.WeekRange
	// Fields overrides the catalog's field order.
	Fields []string
}

// Records adapts an already parsed record list to Request.LoadRecords.
func Records(recs []types.LessonRecord) func(context.Context) ([]types.LessonRecord, error) {
	return func(context.Context) ([]types.LessonRecord, error) { return recs, nil }
}

// Archiver stores finished task snapshots.
type Archiver interface {
	Archive(ctx context.Context, t types.Task) error
}

// Pinger is implemented by generators that can check their backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Registry  *tasks.Registry
	Executor  *worker.Executor
	Generator llm.Generator
	Catalog   *prompts.Catalog
	Artifacts storage.ArtifactStore
	Renderer  docgen.Renderer
	Archiver  Archiver
	// SyllabusExcerpt caps the syllabus runes added to each prompt.
	SyllabusExcerpt int
}

type Orchestrator struct {
	cfg Config
	log *logger.Logger
}

func New(baseLog *logger.Logger, cfg Config) (*Orchestrator, error) {
	switch {
	case cfg.Registry == nil:
		return nil, errors.New("orchestrator: registry required")
	case cfg.Generator == nil:
		return nil, errors.New("orchestrator: generator required")
	case cfg.Artifacts == nil:
		return nil, errors.New("orchestrator: artifact store required")
	}
	if cfg.Catalog == nil {
		cfg.Catalog = prompts.Default()
	}
	return &Orchestrator{cfg: cfg, log: baseLog.With("component", "BatchOrchestrator")}, nil
}

// Submit registers a pending task and hands its run to the executor. It
// returns as soon as the task is registered.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (types.Task, error) {
	if req.LoadRecords == nil {
		return types.Task{}, errors.New("no schedule given")
	}
	if o.cfg.Executor == nil {
		return types.Task{}, errors.New("orchestrator: executor required for Submit")
	}
	task := o.cfg.Registry.Create()
	o.log.Info("Task submitted", "task_id", task.ID())

	o.cfg.Executor.Submit(worker.Job{
		TaskID: task.ID(),
		Run: func(ctx context.Context) error {
			return o.Run(ctx, task, req)
		},
		Fail: func(ctx context.Context, err error) {
			if task.Fail(ctx, err, fmt.Sprintf(msgFailedFmt, err)) {
				o.finish(ctx, task, time.Now())
			}
		},
	})
	return task.Snapshot(), nil
}

// Run drives task from pending to a finished status. It returns the setup
// error when the task failed before the lesson loop.
func (o *Orchestrator) Run(ctx context.Context, task *tasks.Task, req Request) error {
	started := time.Now()
	log := o.log.With("task_id", task.ID())

	ctx, span := observability.Tracer().Start(ctx, "lessonplan.task")
	span.SetAttributes(attribute.String("task.id", task.ID()))
	defer span.End()

	if !task.Start(ctx, msgStart) {
		status := task.Status()
		log.Warn("Task not pending; skipping run", "status", status)
		if status == types.TaskStopped {
			o.finish(ctx, task, started)
		}
		return nil
	}
	observability.Current().TaskStarted()

	var (
		records  []types.LessonRecord
		syllabus string
		renderer = o.cfg.Renderer
	)
	failedPhase, err := runPhases(ctx, task, []phase{
		{Name: "parse", Pct: 10, Msg: msgParse, Run: func(ctx context.Context) error {
			recs, err := req.LoadRecords(ctx)
			if err != nil {
				return fmt.Errorf("parse schedule: %w", err)
			}
			records = schedule.FilterWeeks(recs, req.WeekRange)
			if len(records) == 0 {
				return ErrNoRecords
			}
			if req.LoadSyllabus != nil {
				text, err := req.LoadSyllabus(ctx)
				if err != nil {
					return fmt.Errorf("parse syllabus: %w", err)
				}
				syllabus = schedule.Excerpt(text, o.cfg.SyllabusExcerpt)
			}
			return nil
		}},
		{Name: "init", Pct: loopStartPct, Msg: msgInit, Run: func(ctx context.Context) error {
			if p, ok := o.cfg.Generator.(Pinger); ok {
				if err := p.Ping(ctx); err != nil {
					return err
				}
			}
			if req.LoadRenderer != nil {
				r, err := req.LoadRenderer(ctx)
				if err != nil {
					return fmt.Errorf("load template: %w", err)
				}
				renderer = r
			}
			if renderer == nil {
				return errors.New("no document template configured")
			}
			return nil
		}},
	})
	if err != nil {
		log.Error("Task setup failed", "phase", failedPhase, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, failedPhase)
		task.Fail(ctx, err, fmt.Sprintf(msgFailedFmt, err))
		o.finish(ctx, task, started)
		return err
	}

	fields := req.Fields
	if len(fields) == 0 {
		fields = o.cfg.Catalog.Fields()
	}
	task.SetTotal(len(records))
	span.SetAttributes(attribute.Int("task.total", len(records)))
	log.Info("Generating lesson plans", "total", len(records), "fields", len(fields))

	produced, err := o.loop(ctx, task, records, fields, syllabus, renderer)
	if err != nil {
		log.Error("Task interrupted", "error", err)
		task.Fail(ctx, err, fmt.Sprintf(msgFailedFmt, err))
		o.finish(ctx, task, started)
		return nil
	}

	// A pause requested during the last record holds completion.
	if _, err := task.WaitWhilePaused(ctx); err != nil {
		task.Fail(ctx, err, fmt.Sprintf(msgFailedFmt, err))
	}
	if task.Complete(ctx, fmt.Sprintf(msgDoneFmt, produced)) {
		log.Info("Task completed", "produced", produced, "total", len(records))
	} else {
		log.Info("Task ended early", "status", task.Status(), "produced", produced)
	}
	o.finish(ctx, task, started)
	return nil
}

// loop walks the records in order. It returns the number of documents
// produced, and an error only when ctx ends.
func (o *Orchestrator) loop(ctx context.Context, task *tasks.Task, records []types.LessonRecord, fields []string, syllabus string, renderer docgen.Renderer) (int, error) {
	produced := 0
	for i, rec := range records {
		status, err := task.WaitWhilePaused(ctx)
		if err != nil {
			return produced, err
		}
		if err := ctx.Err(); err != nil {
			return produced, err
		}
		if status.Finished() {
			o.log.Info("Task loop halted", "task_id", task.ID(), "status", status, "processed", i)
			return produced, nil
		}

		label := rec.Label()
		task.Progress(ctx, loopProgress(i, len(records)), label, fmt.Sprintf(msgLessonFmt, label))

		if o.processRecord(ctx, task, rec, fields, syllabus, renderer) {
			produced++
		}
	}
	return produced, nil
}

// processRecord generates every field of rec, renders and stores the
// document. A render or store failure skips the record.
func (o *Orchestrator) processRecord(ctx context.Context, task *tasks.Task, rec types.LessonRecord, fields []string, syllabus string, renderer docgen.Renderer) bool {
	ctx, span := observability.Tracer().Start(ctx, "lessonplan.record")
	span.SetAttributes(
		attribute.String("task.id", task.ID()),
		attribute.Int("lesson.week", rec.Week),
		attribute.Int("lesson.lesson", rec.Lesson),
	)
	defer span.End()
	log := o.log.With("task_id", task.ID(), "week", rec.Week, "lesson", rec.Lesson)

	content := o.generateContent(ctx, task, rec, fields, syllabus)

	doc, err := renderer.Render(ctx, rec, content)
	if err != nil {
		log.Error("Render failed; skipping lesson", "error", err)
		span.RecordError(err)
		observability.Current().IncRecord("skipped")
		return false
	}
	name := docgen.OutputName(rec)
	if _, err := o.cfg.Artifacts.Put(ctx, name, bytes.NewReader(doc)); err != nil {
		log.Error("Saving lesson plan failed; skipping lesson", "file", name, "error", err)
		span.RecordError(err)
		observability.Current().IncRecord("skipped")
		return false
	}
	task.AppendResult(name)
	observability.Current().IncRecord("rendered")
	log.Debug("Lesson plan saved", "file", name)
	return true
}

// generateContent asks for each field in order, one at a time. Failures land
// in the field's slot as a sentinel and never abort the record.
func (o *Orchestrator) generateContent(ctx context.Context, task *tasks.Task, rec types.LessonRecord, fields []string, syllabus string) types.ContentMap {
	params := prompts.ParamsFor(rec)
	content := make(types.ContentMap, len(fields))
	for _, field := range fields {
		if _, err := task.WaitWhilePaused(ctx); err != nil {
			content[field] = llm.Sentinel(field, err)
			continue
		}

		prompt, err := o.cfg.Catalog.Render(field, params)
		if err != nil {
			o.fieldFailed(task, rec, field, "prompt", err)
			content[field] = llm.Sentinel(field, err)
			continue
		}
		text, err := o.cfg.Generator.Generate(ctx, prompts.WithSyllabus(prompt, syllabus))
		if err != nil {
			o.fieldFailed(task, rec, field, string(llm.KindOf(err)), err)
			content[field] = llm.Sentinel(field, err)
			continue
		}
		content[field] = text
	}
	return content
}

func (o *Orchestrator) fieldFailed(task *tasks.Task, rec types.LessonRecord, field, kind string, err error) {
	if kind == "" {
		kind = "other"
	}
	observability.Current().IncFieldFailure(field, kind)
	o.log.Warn("Field generation failed",
		"task_id", task.ID(),
		"week", rec.Week,
		"lesson", rec.Lesson,
		"field", field,
		"kind", kind,
		"error", err,
	)
}

func (o *Orchestrator) finish(ctx context.Context, task *tasks.Task, started time.Time) {
	snap := task.Snapshot()
	observability.Current().TaskFinished(string(snap.Status), time.Since(started))
	if o.cfg.Archiver == nil {
		return
	}
	if err := o.cfg.Archiver.Archive(context.WithoutCancel(ctx), snap); err != nil {
		o.log.Warn("Archiving task failed", "task_id", snap.ID, "error", err)
	}
}
