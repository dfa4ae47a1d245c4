package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/lessonplan-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lessonplan-backend/internal/domain"
	"github.com/yungbote/lessonplan-backend/internal/platform/dbctx"
)

func TestTaskRecordRepo(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewTaskRecordRepo(db, testutil.Logger(t))

	base := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	first := types.Task{ID: "t1", Status: types.TaskStopped, Progress: 48, Total: 5, Error: types.ErrUserTerminated,
		ResultFiles: []string{"第1周第1次课教案.docx", "第1周第2次课教案.docx"}, CreatedAt: base, UpdatedAt: base.Add(time.Minute)}
	second := types.Task{ID: "t2", Status: types.TaskCompleted, Progress: 100, Total: 1, CreatedAt: base, UpdatedAt: base.Add(time.Hour)}

	for _, task := range []types.Task{first, second} {
		if err := repo.Archive(dbc, task); err != nil {
			t.Fatalf("Archive %s: %v", task.ID, err)
		}
	}
	first.Progress = 50
	if err := repo.Archive(dbc, first); err != nil {
		t.Fatalf("re-archive: %v", err)
	}

	got, err := repo.GetByID(dbc, "t1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	var files []string
	if err := json.Unmarshal(got.ResultFiles, &files); err != nil || len(files) != 2 {
		t.Fatalf("result files=%s err=%v", got.ResultFiles, err)
	}
	if got.Progress != 50 || got.Error != types.ErrUserTerminated {
		t.Fatalf("record=%+v", got)
	}
	if rec, _ := repo.GetByID(dbc, "t2"); string(rec.ResultFiles) != "[]" {
		t.Fatalf("empty result files stored as %s", rec.ResultFiles)
	}

	list, err := repo.ListRecent(dbc, 10)
	if err != nil || len(list) != 2 || list[0].ID != "t2" {
		t.Fatalf("ListRecent: %+v %v", list, err)
	}
	if _, err := repo.GetByID(dbc, "nope"); !errors.Is(err, ErrTaskRecordNotFound) {
		t.Fatalf("unknown: %v", err)
	}
}
