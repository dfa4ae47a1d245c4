package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/lessonplan-backend/internal/config"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

// Generator turns a fully rendered prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Client interface {
	Generator
	// Ping checks the backend's model listing endpoint within the preflight timeout.
	Ping(ctx context.Context) error
	ListModels(ctx context.Context) ([]string, error)
	Model() string
}

// New builds the configured provider, wraps it with retries and runs the
// preflight check. A backend that cannot be reached yields an error matching
// ErrUnreachable and no client.
func New(ctx context.Context, cfg config.LLMConfig, log *logger.Logger) (Client, error) {
	var base Client
	switch cfg.Provider {
	case "", "ollama":
		base = NewOllama(OllamaConfig{
			Host:             cfg.Host,
			Model:            cfg.Model,
			PreflightTimeout: cfg.PreflightTimeout.Duration,
			GenerateTimeout:  cfg.GenerateTimeout.Duration,
		}, log)
	case "openai":
		base = NewOpenAI(OpenAIConfig{
			BaseURL:          cfg.Host,
			APIKey:           cfg.APIKey,
			Model:            cfg.Model,
			PreflightTimeout: cfg.PreflightTimeout.Duration,
			GenerateTimeout:  cfg.GenerateTimeout.Duration,
		}, log)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	c := WithRetry(base, RetryConfig{
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.RetryBaseDelay.Duration,
		MaxDelay:   cfg.RetryMaxDelay.Duration,
	}, log)

	log.Info("Checking generative backend", "provider", cfg.Provider, "host", cfg.Host, "model", cfg.Model)
	if err := c.Ping(ctx); err != nil {
		return nil, err
	}
	log.Info("Generative backend reachable", "host", cfg.Host)
	return c, nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
