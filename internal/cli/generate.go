package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/lessonplan-backend/internal/docgen"
	types "github.com/yungbote/lessonplan-backend/internal/domain"
	"github.com/yungbote/lessonplan-backend/internal/jobs/orchestrator"
	"github.com/yungbote/lessonplan-backend/internal/llm"
	"github.com/yungbote/lessonplan-backend/internal/prompts"
	"github.com/yungbote/lessonplan-backend/internal/realtime"
	"github.com/yungbote/lessonplan-backend/internal/schedule"
	"github.com/yungbote/lessonplan-backend/internal/storage"
	"github.com/yungbote/lessonplan-backend/internal/tasks"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate lesson plans for a schedule without the web service",
	Example: `  lessonplan generate -s 教学进度表.xlsx -y 教学大纲.docx -w 1-4
  lessonplan generate -s schedule.xlsx -t template.docx -o out/`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringP("schedule", "s", "", "Teaching schedule (.xlsx)")
	f.StringP("syllabus", "y", "", "Syllabus (.docx), optional")
	f.StringP("template", "t", "", "Lesson plan template (.docx), optional")
	f.StringP("weeks", "w", "", `Week range such as "1-16" or "3"`)
	f.StringP("output", "o", "", "Output directory (default from OUTPUT_DIR)")
	_ = generateCmd.MarkFlagRequired("schedule")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	flags := cmd.Flags()
	schedPath, _ := flags.GetString("schedule")
	sylPath, _ := flags.GetString("syllabus")
	tplPath, _ := flags.GetString("template")
	weeksRaw, _ := flags.GetString("weeks")
	outDir, _ := flags.GetString("output")
	if outDir == "" {
		outDir = cfg.Storage.OutputDir
	}

	weeks, err := schedule.ParseWeekRange(weeksRaw)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	client, err := llm.New(ctx, cfg.LLM, log)
	if err != nil {
		if errors.Is(err, llm.ErrUnreachable) {
			fmt.Fprintln(cmd.ErrOrStderr(), llm.Remediation(cfg.LLM.Host))
		}
		return err
	}

	artifacts, err := storage.NewLocalStore(outDir, ".docx")
	if err != nil {
		return err
	}
	renderer, err := docgen.DefaultRenderer()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	registry := tasks.NewRegistry(log, realtime.EmitterFunc(func(_ context.Context, ev types.ProgressEvent) {
		fmt.Fprintf(out, "[%3d%%] %s\n", ev.Progress, ev.Message)
	}))
	orch, err := orchestrator.New(log, orchestrator.Config{
		Registry:        registry,
		Generator:       client,
		Catalog:         prompts.Default(),
		Artifacts:       artifacts,
		Renderer:        renderer,
		SyllabusExcerpt: cfg.LLM.SyllabusExcerpt,
	})
	if err != nil {
		return err
	}

	req := orchestrator.Request{
		WeekRange: weeks,
		LoadRecords: func(context.Context) ([]types.LessonRecord, error) {
			s, err := schedule.ParseFile(schedPath)
			if err != nil {
				return nil, err
			}
			for _, rej := range s.Rejected {
				fmt.Fprintf(cmd.ErrOrStderr(), "跳过: %v\n", rej)
			}
			return s.Records, nil
		},
	}
	if sylPath != "" {
		req.LoadSyllabus = func(context.Context) (string, error) {
			s, err := schedule.ParseSyllabusFile(sylPath)
			if err != nil {
				return "", err
			}
			return s.Content, nil
		}
	}
	if tplPath != "" {
		req.LoadRenderer = func(context.Context) (docgen.Renderer, error) {
			return docgen.LoadDocxRenderer(tplPath)
		}
	}

	task := registry.Create()

	// Ctrl-C stops the batch at the next lesson boundary instead of killing it.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(out, "正在停止，当前课次完成后退出...")
			_, _ = registry.Stop(context.Background(), task.ID())
		case <-done:
		}
	}()

	if err := orch.Run(context.Background(), task, req); err != nil {
		return err
	}

	snap := task.Snapshot()
	for _, name := range snap.ResultFiles {
		fmt.Fprintf(out, "  %s\n", name)
	}
	switch snap.Status {
	case types.TaskCompleted, types.TaskStopped:
		fmt.Fprintf(out, "输出目录: %s\n", artifacts.Dir())
		return nil
	default:
		return fmt.Errorf("generation %s: %s", snap.Status, snap.Error)
	}
}
