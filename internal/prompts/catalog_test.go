package prompts

import (
	"errors"
	"strings"
	"testing"

	types "github.com/yungbote/lessonplan-backend/internal/domain"
)

func TestDefaultCatalogRendersEveryField(t *testing.T) {
	c := Default()
	fields := c.Fields()
	if len(fields) != len(types.DefaultFields) {
		t.Fatalf("fields=%d want=%d", len(fields), len(types.DefaultFields))
	}
	for i, f := range types.DefaultFields {
		if fields[i] != f {
			t.Fatalf("field[%d]=%q want=%q", i, fields[i], f)
		}
	}

	rec := types.LessonRecord{Week: 3, Lesson: 2, CourseName: "网络基础", ChapterContent: "IP地址与子网划分", ClassHours: 4}
	for _, f := range fields {
		out, err := c.Render(f, ParamsFor(rec))
		if err != nil {
			t.Fatalf("Render(%s): %v", f, err)
		}
		if strings.Contains(out, "{") {
			t.Fatalf("Render(%s) left a placeholder: %q", f, out)
		}
		if !strings.Contains(out, "IP地址与子网划分") {
			t.Fatalf("Render(%s) missing chapter content", f)
		}
	}

	obj, _ := c.Render(types.DefaultFields[0], ParamsFor(rec))
	if !strings.Contains(obj, "第3周第2次课") || !strings.Contains(obj, "网络基础") {
		t.Fatalf("objectives prompt missing week/lesson/course: %q", obj)
	}
}

func TestRenderUnknownField(t *testing.T) {
	_, err := Default().Render("教学方法", Params{})
	var ue *UnknownFieldError
	if !errors.As(err, &ue) || ue.Field != "教学方法" {
		t.Fatalf("expected UnknownFieldError, got %v", err)
	}
}

func TestRenderMissingParameter(t *testing.T) {
	c := New(map[string]string{"a": "课程 {course_name} 第{week}周"}, []string{"a"})
	_, err := c.Render("a", Params{KeyCourseName: "x"})
	var me *MissingParameterError
	if !errors.As(err, &me) {
		t.Fatalf("expected MissingParameterError, got %v", err)
	}
	if me.Key != "week" || me.Field != "a" {
		t.Fatalf("unexpected error fields: %+v", me)
	}
}

func TestRenderLeavesNonPlaceholderBraces(t *testing.T) {
	c := New(map[string]string{"a": "json {} and {not a key} and {k}"}, nil)
	out, err := c.Render("a", Params{"k": "v"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "json {} and {not a key} and v" {
		t.Fatalf("out=%q", out)
	}
}

func TestNewOrdersUnlistedFieldsAlphabetically(t *testing.T) {
	c := New(map[string]string{"b": "", "a": "", "z": ""}, []string{"z", "missing"})
	got := strings.Join(c.Fields(), ",")
	if got != "z,a,b" {
		t.Fatalf("fields=%s", got)
	}
}

func TestWithSyllabus(t *testing.T) {
	if WithSyllabus("p", "  ") != "p" {
		t.Fatalf("empty excerpt should not change prompt")
	}
	if out := WithSyllabus("p", "大纲"); !strings.HasSuffix(out, "\n\np") || !strings.Contains(out, "大纲") {
		t.Fatalf("out=%q", out)
	}
}
