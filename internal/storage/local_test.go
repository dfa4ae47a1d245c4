package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, ".docx")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()

	a, err := s.Put(ctx, "第1周第1次课教案.docx", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if a.Size != 5 || a.SHA256 != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Fatalf("artifact=%+v", a)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	list, err := s.List(ctx)
	if err != nil || len(list) != 1 || list[0].Name != "第1周第1次课教案.docx" {
		t.Fatalf("List: %+v %v", list, err)
	}

	rc, info, err := s.Open(ctx, a.Name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "hello" || info.Size != 5 {
		t.Fatalf("body=%q info=%+v", body, info)
	}

	if err := s.Delete(ctx, a.Name); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, err := s.Open(ctx, a.Name); !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("Open after delete: %v", err)
	}
}

func TestCleanNameRejectsTraversal(t *testing.T) {
	for _, name := range []string{"", "..", "../etc/passwd", "a/b.docx", `a\b.docx`, "x..docx"} {
		if _, err := CleanName(name); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("CleanName(%q) err=%v", name, err)
		}
	}
	if got, err := CleanName(" 第2周第1次课教案.docx "); err != nil || got != "第2周第1次课教案.docx" {
		t.Fatalf("CleanName valid: %q %v", got, err)
	}
}
