package worker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

func TestExecutorBoundsConcurrency(t *testing.T) {
	ex := NewExecutor(context.Background(), logger.Nop(), 2)

	var running, peak atomic.Int32
	release := make(chan struct{})
	for i := 0; i < 5; i++ {
		ex.Submit(Job{TaskID: "t", Run: func(ctx context.Context) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-release
			running.Add(-1)
			return nil
		}})
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	ex.Wait()

	if p := peak.Load(); p != 2 {
		t.Fatalf("peak concurrency=%d want 2", p)
	}
}

func TestExecutorReportsPanicsAndErrors(t *testing.T) {
	ex := NewExecutor(context.Background(), logger.Nop(), 1)

	var mu sync.Mutex
	var failures []error
	fail := func(_ context.Context, err error) {
		mu.Lock()
		failures = append(failures, err)
		mu.Unlock()
	}

	ex.Submit(Job{TaskID: "p", Run: func(context.Context) error { panic("kaboom") }, Fail: fail})
	ex.Submit(Job{TaskID: "e", Run: func(context.Context) error { return errors.New("setup failed") }, Fail: fail})
	ex.Submit(Job{TaskID: "ok", Run: func(context.Context) error { return nil }, Fail: fail})
	ex.Wait()

	if len(failures) != 2 {
		t.Fatalf("failures=%v", failures)
	}
	var sawPanic, sawErr bool
	for _, err := range failures {
		sawPanic = sawPanic || strings.Contains(err.Error(), "kaboom")
		sawErr = sawErr || err.Error() == "setup failed"
	}
	if !sawPanic || !sawErr {
		t.Fatalf("unexpected failures: %v", failures)
	}
}
