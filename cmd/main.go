package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/yungbote/lessonplan-backend/internal/app"
	"github.com/yungbote/lessonplan-backend/internal/config"
	"github.com/yungbote/lessonplan-backend/internal/llm"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
	"github.com/yungbote/lessonplan-backend/internal/platform/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	if err := app.Serve(ctx, log, cfg); err != nil {
		if errors.Is(err, llm.ErrUnreachable) {
			fmt.Fprintln(os.Stderr, llm.Remediation(cfg.LLM.Host))
		}
		log.Error("Server exited", "error", err)
		log.Sync()
		os.Exit(1)
	}
}
