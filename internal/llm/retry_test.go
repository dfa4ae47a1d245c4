package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

type scriptedClient struct {
	errs  []error
	calls int
}

func (s *scriptedClient) Generate(ctx context.Context, prompt string) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return "ok", nil
}
func (s *scriptedClient) Ping(context.Context) error                   { return nil }
func (s *scriptedClient) ListModels(context.Context) ([]string, error) { return nil, nil }
func (s *scriptedClient) Model() string                                { return "m" }

func fastRetry(c Client, n int) *Retrying {
	return WithRetry(c, RetryConfig{MaxRetries: n, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}, logger.Nop())
}

func TestRetryRecoversFromTransientErrors(t *testing.T) {
	inner := &scriptedClient{errs: []error{
		&Error{Kind: KindTransport, Err: errors.New("reset")},
		&Error{Kind: KindBackend, Status: 503},
	}}
	out, err := fastRetry(inner, 3).Generate(context.Background(), "p")
	if err != nil || out != "ok" {
		t.Fatalf("out=%q err=%v", out, err)
	}
	if inner.calls != 3 {
		t.Fatalf("calls=%d want 3", inner.calls)
	}
}

func TestRetryGivesUpAfterMaxRetries(t *testing.T) {
	fail := &Error{Kind: KindTransport, Err: errors.New("refused")}
	inner := &scriptedClient{errs: []error{fail, fail, fail, fail, fail}}
	_, err := fastRetry(inner, 2).Generate(context.Background(), "p")
	if KindOf(err) != KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("calls=%d want 3", inner.calls)
	}
}

func TestRetrySkipsPermanentErrors(t *testing.T) {
	for _, e := range []error{
		&Error{Kind: KindModelNotFound, Models: []string{"a"}},
		&Error{Kind: KindTimeout},
		&Error{Kind: KindBackend, Status: 400},
	} {
		inner := &scriptedClient{errs: []error{e}}
		_, err := fastRetry(inner, 3).Generate(context.Background(), "p")
		if KindOf(err) != KindOf(e) {
			t.Fatalf("got %v want %v", err, e)
		}
		if inner.calls != 1 {
			t.Fatalf("%s: calls=%d want 1", KindOf(e), inner.calls)
		}
	}
}

func TestRetryMalformedOnlyOnce(t *testing.T) {
	bad := &Error{Kind: KindMalformed}
	inner := &scriptedClient{errs: []error{bad, bad, bad}}
	_, err := fastRetry(inner, 5).Generate(context.Background(), "p")
	if KindOf(err) != KindMalformed {
		t.Fatalf("err=%v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("calls=%d want 2", inner.calls)
	}
}

func TestRetryDisabled(t *testing.T) {
	inner := &scriptedClient{errs: []error{&Error{Kind: KindTransport}}}
	if _, err := fastRetry(inner, 0).Generate(context.Background(), "p"); err == nil {
		t.Fatalf("expected error")
	}
	if inner.calls != 1 {
		t.Fatalf("calls=%d", inner.calls)
	}
}
