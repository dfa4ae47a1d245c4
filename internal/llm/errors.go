package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindUnreachable   Kind = "unreachable"
	KindModelNotFound Kind = "model_not_found"
	KindBackend       Kind = "backend_error"
	KindTimeout       Kind = "generation_timeout"
	KindTransport     Kind = "transport_error"
	KindMalformed     Kind = "malformed_response"
)

// ErrUnreachable matches any preflight failure. It is the one category that
// stops the process from accepting work.
var ErrUnreachable = errors.New("generative backend unreachable")

// ModelListUnavailable is reported in place of the local model list when the
// backend cannot list its models.
const ModelListUnavailable = "无法获取模型列表"

type Error struct {
	Kind   Kind
	Model  string
	Status int
	Detail string
	// Models lists locally installed models; only set for KindModelNotFound.
	Models []string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(string(e.Kind))
	switch e.Kind {
	case KindModelNotFound:
		fmt.Fprintf(&b, ": model %q not found; local models: %s", e.Model, strings.Join(e.Models, ", "))
		return b.String()
	case KindBackend:
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == ErrUnreachable && e.Kind == KindUnreachable
}

// KindOf returns the classification of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e.Kind
	}
	return ""
}

// IsRetryable reports whether another attempt could plausibly succeed.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindTransport, KindMalformed:
		return true
	case KindBackend:
		return e.Status == 429 || e.Status >= 500
	default:
		return false
	}
}

// Sentinel is the text stored in a field's slot when generation failed.
// Timeouts get their own marker; every other failure reads as failed.
func Sentinel(field string, err error) string {
	if KindOf(err) == KindTimeout || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("[%s 生成超时]", field)
	}
	return fmt.Sprintf("[%s 生成失败]", field)
}

func isModelNotFound(status int, msg string) bool {
	if status != 404 {
		return false
	}
	m := strings.ToLower(msg)
	return strings.Contains(m, "model") && strings.Contains(m, "not found")
}

// Remediation is printed to the operator when preflight fails.
func Remediation(host string) string {
	return strings.Join([]string{
		"错误：无法连接到 Ollama API 服务。",
		"请求地址: " + strings.TrimRight(host, "/") + "/api/tags",
		"",
		"请执行以下检查：",
		"1. 确认 Ollama 应用正在您的电脑上运行。",
		"2. 确认 Ollama 服务没有被防火墙或代理阻止。",
		"3. 尝试更新 Ollama 到最新版本，或重新安装。",
	}, "\n")
}
