package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/lessonplan-backend/internal/platform/envutil"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	llmRequests *CounterVec
	llmLatency  *HistogramVec

	tasksFinished *CounterVec
	taskDuration  *HistogramVec
	tasksActive   *Gauge
	records       *CounterVec
	fieldFailures *CounterVec

	broadcastDropped *Counter

	redisUp   *Gauge
	redisPing *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

// Current returns the process metrics, or nil when disabled. Every method is
// safe to call on a nil receiver.
func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

// New builds an unregistered Metrics value; Init should be used by the process.
func New() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("lp_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"lp_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight: NewGauge("lp_api_inflight_requests", "In-flight API requests."),

		llmRequests: NewCounterVec("lp_llm_requests_total", "Generation calls by model/endpoint/outcome.", []string{"model", "endpoint", "status"}),
		llmLatency: NewHistogramVec(
			"lp_llm_request_duration_seconds",
			"Generation call latency by model/outcome.",
			[]string{"model", "status"},
			[]float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120, 180},
		),

		tasksFinished: NewCounterVec("lp_tasks_finished_total", "Batch tasks by terminal status.", []string{"status"}),
		taskDuration: NewHistogramVec(
			"lp_task_duration_seconds",
			"Wall time of batch tasks by terminal status.",
			[]string{"status"},
			[]float64{10, 30, 60, 120, 300, 600, 1200, 3600},
		),
		tasksActive:   NewGauge("lp_tasks_active", "Batch tasks currently executing."),
		records:       NewCounterVec("lp_records_total", "Lesson records by outcome (rendered/skipped).", []string{"outcome"}),
		fieldFailures: NewCounterVec("lp_field_failures_total", "Fields filled with a failure marker, by field and kind.", []string{"field", "kind"}),

		broadcastDropped: NewCounter("lp_broadcast_dropped_total", "Progress events dropped because a subscriber buffer was full."),

		redisUp:   NewGauge("lp_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPing: NewGauge("lp_redis_ping_seconds", "Redis ping latency in seconds."),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency,
		m.tasksFinished, m.taskDuration, m.tasksActive, m.records, m.fieldFailures,
		m.broadcastDropped,
		m.redisUp, m.redisPing,
	}
	for _, wr := range writers {
		if err := wr.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) ApiInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) ApiInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveLLMRequest(model, endpoint, status string, dur time.Duration) {
	if m == nil {
		return
	}
	model = strings.TrimSpace(model)
	m.llmRequests.Inc(model, endpoint, status)
	if dur > 0 {
		m.llmLatency.Observe(dur.Seconds(), model, status)
	}
}

func (m *Metrics) TaskStarted() {
	if m != nil {
		m.tasksActive.Inc()
	}
}

func (m *Metrics) TaskFinished(status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.tasksActive.Dec()
	m.tasksFinished.Inc(status)
	m.taskDuration.Observe(dur.Seconds(), status)
}

func (m *Metrics) IncRecord(outcome string) {
	if m != nil {
		m.records.Inc(outcome)
	}
}

func (m *Metrics) IncFieldFailure(field, kind string) {
	if m != nil {
		m.fieldFailures.Inc(field, kind)
	}
}

func (m *Metrics) IncBroadcastDropped() {
	if m != nil {
		m.broadcastDropped.Inc()
	}
}

// StartRedisCollector pings the progress bus redis on an interval.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	interval := envutil.Seconds("METRICS_SCRAPE_INTERVAL_SECONDS", 10*time.Second)
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = rdb.Close()
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
