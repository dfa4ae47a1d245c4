package orchestrator

import (
	"context"

	"github.com/yungbote/lessonplan-backend/internal/tasks"
)

// Setup occupies progress 0-20; the lesson loop occupies 20-90.
const (
	loopStartPct = 20
	loopSpanPct  = 70
)

// phase is one setup step run before the lesson loop. Its message is
// broadcast at Pct before Run starts.
type phase struct {
	Name string
	Pct  int
	Msg  string
	Run  func(ctx context.Context) error
}

func runPhases(ctx context.Context, task *tasks.Task, phases []phase) (string, error) {
	for _, p := range phases {
		task.Progress(ctx, p.Pct, "", p.Msg)
		if p.Run == nil {
			continue
		}
		if err := p.Run(ctx); err != nil {
			return p.Name, err
		}
	}
	return "", nil
}

// loopProgress is floor(20 + 70*i/total) for the i-th record (0-based).
func loopProgress(i, total int) int {
	if total <= 0 {
		return loopStartPct
	}
	return loopStartPct + loopSpanPct*i/total
}
