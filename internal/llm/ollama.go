package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yungbote/lessonplan-backend/internal/observability"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

type OllamaConfig struct {
	Host             string
	Model            string
	PreflightTimeout time.Duration
	GenerateTimeout  time.Duration
}

// Ollama talks to the native Ollama HTTP API.
type Ollama struct {
	cfg OllamaConfig
	hc  *http.Client
	log *logger.Logger
}

func NewOllama(cfg OllamaConfig, log *logger.Logger) *Ollama {
	return NewOllamaWithHTTPClient(cfg, &http.Client{}, log)
}

func NewOllamaWithHTTPClient(cfg OllamaConfig, hc *http.Client, log *logger.Logger) *Ollama {
	cfg.Host = strings.TrimRight(strings.TrimSpace(cfg.Host), "/")
	cfg.PreflightTimeout = orDefault(cfg.PreflightTimeout, 5*time.Second)
	cfg.GenerateTimeout = orDefault(cfg.GenerateTimeout, 180*time.Second)
	if hc == nil {
		hc = &http.Client{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Ollama{cfg: cfg, hc: hc, log: log.With("component", "OllamaClient")}
}

func (o *Ollama) Model() string { return o.cfg.Model }

func (o *Ollama) Host() string { return o.cfg.Host }

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (o *Ollama) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.PreflightTimeout)
	defer cancel()

	status, body, err := o.do(ctx, http.MethodGet, "/api/tags", nil)
	if err != nil {
		return &Error{Kind: KindUnreachable, Model: o.cfg.Model, Detail: o.cfg.Host + "/api/tags", Err: err}
	}
	if status < 200 || status > 299 {
		return &Error{Kind: KindUnreachable, Model: o.cfg.Model, Status: status, Detail: truncate(string(body), 512)}
	}
	return nil
}

func (o *Ollama) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.PreflightTimeout)
	defer cancel()

	status, body, err := o.do(ctx, http.MethodGet, "/api/tags", nil)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	if status < 200 || status > 299 {
		return nil, &Error{Kind: KindBackend, Status: status, Detail: truncate(string(body), 512)}
	}
	var tags tagsResponse
	if err := json.Unmarshal(body, &tags); err != nil {
		return nil, &Error{Kind: KindMalformed, Err: err}
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := o.generate(ctx, prompt)
	status := "ok"
	if err != nil {
		status = string(KindOf(err))
		if status == "" {
			status = "error"
		}
	}
	observability.Current().ObserveLLMRequest(o.cfg.Model, "/api/generate", status, time.Since(start))
	return text, err
}

func (o *Ollama) generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{Model: o.cfg.Model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, o.cfg.GenerateTimeout)
	defer cancel()

	status, body, err := o.do(callCtx, http.MethodPost, "/api/generate", payload)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return "", ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			return "", &Error{Kind: KindTimeout, Model: o.cfg.Model, Detail: fmt.Sprintf("exceeded %s", o.cfg.GenerateTimeout), Err: err}
		default:
			return "", &Error{Kind: KindTransport, Model: o.cfg.Model, Err: err}
		}
	}

	if status < 200 || status > 299 {
		msg := string(body)
		var er errorResponse
		if json.Unmarshal(body, &er) == nil && er.Error != "" {
			msg = er.Error
		}
		if isModelNotFound(status, msg) {
			models, lerr := o.ListModels(ctx)
			if lerr != nil || len(models) == 0 {
				models = []string{ModelListUnavailable}
			}
			o.log.Error("Model not found in Ollama", "model", o.cfg.Model, "local_models", models)
			return "", &Error{Kind: KindModelNotFound, Model: o.cfg.Model, Status: status, Detail: msg, Models: models}
		}
		return "", &Error{Kind: KindBackend, Model: o.cfg.Model, Status: status, Detail: truncate(msg, 1024)}
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &Error{Kind: KindMalformed, Model: o.cfg.Model, Detail: truncate(string(body), 256), Err: err}
	}
	if out.Response == nil {
		return "", &Error{Kind: KindMalformed, Model: o.cfg.Model, Detail: "response field missing"}
	}
	return cleanResponse(*out.Response), nil
}

func (o *Ollama) do(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, o.cfg.Host+path, body)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := o.hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, raw, nil
}

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// cleanResponse drops reasoning blocks some local models emit before the answer.
func cleanResponse(s string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(s, ""))
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
