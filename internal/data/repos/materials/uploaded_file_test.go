package materials

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/lessonplan-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lessonplan-backend/internal/domain"
	"github.com/yungbote/lessonplan-backend/internal/platform/dbctx"
)

func TestUploadedFileRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewUploadedFileRepo(db, testutil.Logger(t))

	sched := &types.UploadedFile{
		Kind:         types.FileKindSchedule,
		OriginalName: "进度表.xlsx",
		StoredName:   "a.xlsx",
		Path:         "/tmp/a.xlsx",
		Size:         10,
	}
	if _, err := repo.Create(dbc, sched); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sched.ID == uuid.Nil {
		t.Fatalf("BeforeCreate did not assign an id")
	}
	syl := &types.UploadedFile{Kind: types.FileKindSyllabus, OriginalName: "大纲.docx", StoredName: "b.docx", Path: "/tmp/b.docx"}
	if _, err := repo.Create(dbc, syl); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(dbc, sched.ID)
	if err != nil || got.OriginalName != "进度表.xlsx" {
		t.Fatalf("GetByID: %+v %v", got, err)
	}
	if all, err := repo.List(dbc, ""); err != nil || len(all) != 2 {
		t.Fatalf("List all: len=%d err=%v", len(all), err)
	}
	if only, err := repo.List(dbc, types.FileKindSchedule); err != nil || len(only) != 1 {
		t.Fatalf("List schedule: len=%d err=%v", len(only), err)
	}

	if err := repo.SaveParsed(dbc, sched.ID, datatypes.JSON(`{"total":3}`)); err != nil {
		t.Fatalf("SaveParsed: %v", err)
	}
	got, _ = repo.GetByID(dbc, sched.ID)
	if string(got.Parsed) != `{"total":3}` {
		t.Fatalf("parsed=%s", got.Parsed)
	}

	if err := repo.SoftDeleteByID(dbc, sched.ID); err != nil {
		t.Fatalf("SoftDeleteByID: %v", err)
	}
	if _, err := repo.GetByID(dbc, sched.ID); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("deleted file still visible: %v", err)
	}
	if err := repo.SoftDeleteByID(dbc, uuid.New()); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("delete unknown: %v", err)
	}
}
