package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/lessonplan-backend/internal/config"
	"github.com/yungbote/lessonplan-backend/internal/data/db"
	httpserver "github.com/yungbote/lessonplan-backend/internal/http"
	"github.com/yungbote/lessonplan-backend/internal/llm"
	"github.com/yungbote/lessonplan-backend/internal/observability"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
	"github.com/yungbote/lessonplan-backend/internal/realtime"
	"github.com/yungbote/lessonplan-backend/internal/realtime/bus"
)

const serviceName = "lessonplan"

type App struct {
	Log      *logger.Logger
	Cfg      *config.Config
	DB       *gorm.DB
	Hub      *realtime.Hub
	Bus      bus.Bus
	LLM      llm.Client
	Metrics  *observability.Metrics
	Repos    Repos
	Services Services
	Server   *httpserver.Server

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

var initOTel = observability.InitOTel

// New wires the service. It fails with an error matching llm.ErrUnreachable
// when the generative backend does not answer the preflight check.
func New(ctx context.Context, log *logger.Logger, cfg *config.Config) (*App, error) {
	a := &App{Log: log, Cfg: cfg}

	a.otelShutdown = initOTel(ctx, log, observability.OtelConfigFromEnv(serviceName, cfg.Env))
	a.Metrics = observability.Init(log)

	client, err := llm.New(ctx, cfg.LLM, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.LLM = client

	theDB, err := db.Open(log, cfg.Storage.DBDriver, cfg.Storage.DBDSN)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	a.DB = theDB
	a.Repos = wireRepos(theDB, log)

	a.Hub = realtime.NewHub(log)
	if cfg.Realtime.RedisAddr != "" {
		b, err := bus.NewRedisBus(ctx, log, cfg.Realtime.RedisAddr, cfg.Realtime.RedisChannel)
		if err != nil {
			// Single-instance delivery still works without the bus.
			log.Warn("Progress bus unavailable; using in-process delivery", "addr", cfg.Realtime.RedisAddr, "error", err)
		} else {
			a.Bus = b
		}
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.cancel = cancel

	services, err := wireServices(runCtx, log, cfg, a)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Services = services

	handlers := wireHandlers(log, cfg, services, a.Hub, a.Metrics, a.LLM)
	a.Server = httpserver.NewServer(wireRouter(log, a.Metrics, handlers))
	return a, nil
}

// Start launches background loops: the bus forwarder and the redis collector.
func (a *App) Start(ctx context.Context) error {
	if a.Bus != nil {
		forward := func(m realtime.Message) { a.Hub.BroadcastEvent(m.Data) }
		if err := a.Bus.StartForwarder(ctx, forward); err != nil {
			return fmt.Errorf("start progress forwarder: %w", err)
		}
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Cfg.Realtime.RedisAddr)
	}
	return nil
}

// Run serves HTTP until ctx ends, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	if err := a.Start(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	addr := a.Cfg.HTTP.Addr()
	go func() {
		a.Log.Info("Server listening", "addr", addr)
		errCh <- a.Server.Run(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := a.Cfg.HTTP.ShutdownTimeout.Duration
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	a.Log.Info("Shutting down", "timeout", timeout.String())
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.Log.Warn("HTTP shutdown incomplete", "error", err)
	}
	return <-errCh
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Services.Executor != nil {
		a.Services.Executor.Wait()
	}
	if a.Bus != nil {
		_ = a.Bus.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(ctx)
		cancel()
		a.otelShutdown = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

// Serve builds the app and runs it until ctx ends.
func Serve(ctx context.Context, log *logger.Logger, cfg *config.Config) error {
	a, err := New(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.Run(ctx)
}
