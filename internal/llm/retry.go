package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

type RetryConfig struct {
	// MaxRetries is the number of extra attempts after the first one.
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// Retrying retries transient generation failures with jittered exponential
// backoff. Ping and ListModels pass straight through.
type Retrying struct {
	Client
	cfg RetryConfig
	log *logger.Logger
}

func WithRetry(c Client, cfg RetryConfig, log *logger.Logger) *Retrying {
	if log == nil {
		log = logger.Nop()
	}
	cfg.BaseDelay = orDefault(cfg.BaseDelay, time.Second)
	cfg.MaxDelay = orDefault(cfg.MaxDelay, 10*time.Second)
	return &Retrying{Client: c, cfg: cfg, log: log.With("component", "LLMRetry")}
}

func (r *Retrying) Generate(ctx context.Context, prompt string) (string, error) {
	if r.cfg.MaxRetries <= 0 {
		return r.Client.Generate(ctx, prompt)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.BaseDelay
	b.MaxInterval = r.cfg.MaxDelay
	b.RandomizationFactor = 0.2
	b.Multiplier = 2

	malformedRetried := false
	attempt := 0
	op := func() (string, error) {
		attempt++
		out, err := r.Client.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		if !IsRetryable(err) {
			return "", backoff.Permanent(err)
		}
		// A garbled body gets exactly one more try.
		if KindOf(err) == KindMalformed {
			if malformedRetried {
				return "", backoff.Permanent(err)
			}
			malformedRetried = true
		}
		return "", err
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(r.cfg.MaxRetries+1)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			r.log.Warn("LLM call failed; retrying",
				"attempt", attempt,
				"max_retries", r.cfg.MaxRetries,
				"wait", wait.String(),
				"kind", string(KindOf(err)),
				"error", err,
			)
		}),
	)
}
