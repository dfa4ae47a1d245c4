package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestMetricsExposition(t *testing.T) {
	m := New()
	m.ObserveAPI("GET", "/api/files", "200", 30*time.Millisecond)
	m.ObserveLLMRequest("qwen3:1.7b", "/api/generate", "ok", 2*time.Second)
	m.TaskStarted()
	m.TaskFinished("completed", 90*time.Second)
	m.IncRecord("rendered")
	m.IncFieldFailure("教学资源", "model_not_found")

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`lp_api_requests_total{method="GET",route="/api/files",status="200"} 1`,
		`lp_llm_request_duration_seconds_bucket{model="qwen3:1.7b",status="ok",le="2.5"} 1`,
		`lp_tasks_finished_total{status="completed"} 1`,
		`lp_tasks_active 0`,
		`lp_field_failures_total{field="教学资源",kind="model_not_found"} 1`,
		"# TYPE lp_task_duration_seconds histogram",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Second)
	m.TaskStarted()
	m.TaskFinished("failed", time.Second)
	m.IncBroadcastDropped()
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil write: %v", err)
	}
}

func TestHistogramBuckets(t *testing.T) {
	h := NewHistogramVec("h", "help", []string{"k"}, []float64{1, 2})
	h.Observe(0.5, "a")
	h.Observe(1.5, "a")
	h.Observe(3, "a")
	if h.Count("a") != 3 {
		t.Fatalf("count=%d", h.Count("a"))
	}
	var buf bytes.Buffer
	_ = h.WritePrometheus(&buf)
	for _, want := range []string{`h_bucket{k="a",le="1"} 1`, `h_bucket{k="a",le="2"} 2`, `h_bucket{k="a",le="+Inf"} 3`, `h_sum{k="a"} 5`} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("missing %q in %s", want, buf.String())
		}
	}
}

func TestLabelEscaping(t *testing.T) {
	if got := labelString([]string{"a"}, []string{"x\"y\n"}); got != `{a="x\"y\n"}` {
		t.Fatalf("got %s", got)
	}
	if got := parseHeaders("a=1, b = 2 ,bad"); len(got) != 2 || got["b"] != "2" {
		t.Fatalf("headers=%v", got)
	}
}
