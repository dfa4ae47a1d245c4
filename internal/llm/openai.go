package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/yungbote/lessonplan-backend/internal/observability"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

type OpenAIConfig struct {
	// BaseURL of an OpenAI-compatible server. A bare host gets "/v1" appended,
	// which is where Ollama serves its compatibility API.
	BaseURL          string
	APIKey           string
	Model            string
	PreflightTimeout time.Duration
	GenerateTimeout  time.Duration
	HTTPClient       *http.Client
}

// OpenAI generates through the chat completions API.
type OpenAI struct {
	cfg    OpenAIConfig
	client *openai.Client
	log    *logger.Logger
}

func NewOpenAI(cfg OpenAIConfig, log *logger.Logger) *OpenAI {
	cfg.BaseURL = normalizeOpenAIBase(cfg.BaseURL)
	cfg.PreflightTimeout = orDefault(cfg.PreflightTimeout, 5*time.Second)
	cfg.GenerateTimeout = orDefault(cfg.GenerateTimeout, 180*time.Second)
	key := cfg.APIKey
	if key == "" {
		// Local servers ignore the key but the header must be present.
		key = "ollama"
	}
	oc := openai.DefaultConfig(key)
	oc.BaseURL = cfg.BaseURL
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}
	if log == nil {
		log = logger.Nop()
	}
	return &OpenAI{cfg: cfg, client: openai.NewClientWithConfig(oc), log: log.With("component", "OpenAICompatClient")}
}

func normalizeOpenAIBase(raw string) string {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	u, err := url.Parse(raw)
	if err != nil || u.Path != "" {
		return raw
	}
	return raw + "/v1"
}

func (c *OpenAI) Model() string { return c.cfg.Model }

func (c *OpenAI) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.PreflightTimeout)
	defer cancel()
	if _, err := c.client.ListModels(ctx); err != nil {
		return &Error{Kind: KindUnreachable, Model: c.cfg.Model, Detail: c.cfg.BaseURL + "/models", Err: err}
	}
	return nil
}

func (c *OpenAI) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.PreflightTimeout)
	defer cancel()
	list, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, c.classify(ctx, err)
	}
	out := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		out = append(out, m.ID)
	}
	return out, nil
}

func (c *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := c.generate(ctx, prompt)
	status := "ok"
	if err != nil {
		if status = string(KindOf(err)); status == "" {
			status = "error"
		}
	}
	observability.Current().ObserveLLMRequest(c.cfg.Model, "/chat/completions", status, time.Since(start))
	return text, err
}

func (c *OpenAI) generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.GenerateTimeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		classified := c.classify(callCtx, err)
		var le *Error
		if errors.As(classified, &le) && le.Kind == KindModelNotFound {
			models, lerr := c.ListModels(ctx)
			if lerr != nil || len(models) == 0 {
				models = []string{ModelListUnavailable}
			}
			le.Models = models
			c.log.Error("Model not found on backend", "model", c.cfg.Model, "local_models", models)
		}
		return "", classified
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindMalformed, Model: c.cfg.Model, Detail: "no choices in completion"}
	}
	return cleanResponse(resp.Choices[0].Message.Content), nil
}

func (c *OpenAI) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Model: c.cfg.Model, Detail: fmt.Sprintf("exceeded %s", c.cfg.GenerateTimeout), Err: err}
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if isModelNotFound(apiErr.HTTPStatusCode, apiErr.Message) {
			return &Error{Kind: KindModelNotFound, Model: c.cfg.Model, Status: apiErr.HTTPStatusCode, Detail: apiErr.Message}
		}
		return &Error{Kind: KindBackend, Model: c.cfg.Model, Status: apiErr.HTTPStatusCode, Detail: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &Error{Kind: KindBackend, Model: c.cfg.Model, Status: reqErr.HTTPStatusCode, Detail: truncate(reqErr.Error(), 1024)}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &Error{Kind: KindTransport, Model: c.cfg.Model, Err: err}
	}
	return &Error{Kind: KindMalformed, Model: c.cfg.Model, Err: err}
}
