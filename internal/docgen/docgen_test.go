package docgen

import (
	"bytes"
	"context"
	"strings"
	"testing"

	types "github.com/yungbote/lessonplan-backend/internal/domain"
)

func TestDefaultTemplateListsEveryPlaceholder(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDefaultTemplate(&buf); err != nil {
		t.Fatalf("WriteDefaultTemplate: %v", err)
	}
	text, err := ExtractText(buf.Bytes())
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	want := []string{"{week}", "{lesson}", "{course_name}", "{chapter_content}", "{class_hours}"}
	for _, f := range types.DefaultFields {
		want = append(want, "{"+f+"}")
	}
	for _, w := range want {
		if !strings.Contains(text, w) {
			t.Fatalf("template text missing %s:\n%s", w, text)
		}
	}
}

func TestDocxRendererFillsPlaceholders(t *testing.T) {
	r, err := DefaultRenderer()
	if err != nil {
		t.Fatalf("DefaultRenderer: %v", err)
	}
	rec := types.LessonRecord{Week: 3, Lesson: 2, CourseName: "数据结构", ChapterContent: "链表", ClassHours: 2}
	content := types.ContentMap{}
	for _, f := range types.DefaultFields {
		content[f] = "OK:" + f
	}
	content["教学资源"] = "[教学资源 生成失败]"

	out, err := r.Render(context.Background(), rec, content)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	text, err := ExtractText(out)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	for _, want := range []string{"第3周第2次课教案", "数据结构", "链表", "OK:教学重点", "[教学资源 生成失败]"} {
		if !strings.Contains(text, want) {
			t.Fatalf("rendered text missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "{教学重点}") {
		t.Fatalf("placeholder left unreplaced:\n%s", text)
	}
}

func TestRendererRejectsBadTemplate(t *testing.T) {
	if _, err := NewDocxRenderer([]byte("not a zip")); err == nil {
		t.Fatalf("expected error for invalid template")
	}
	if _, err := ExtractText([]byte("nope")); err == nil {
		t.Fatalf("expected ErrNotDocx")
	}
}

func TestOutputName(t *testing.T) {
	got := OutputName(types.LessonRecord{Week: 12, Lesson: 1})
	if got != "第12周第1次课教案.docx" {
		t.Fatalf("OutputName=%q", got)
	}
}
