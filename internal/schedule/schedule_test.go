package schedule

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/yungbote/lessonplan-backend/internal/docgen"
	types "github.com/yungbote/lessonplan-backend/internal/domain"
)

func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		row := r
		if err := f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf
}

func TestParseSchedule(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"2024 秋季学期教学进度表"},
		[]interface{}{" 周次 ", "课次", "课程名称", "章节内容", "课时（节）"},
		[]interface{}{1, 1, "数据结构", "绪论", 2},
		[]interface{}{"第1周", "2", "", "线性表", "2.0"},
		[]interface{}{},
		[]interface{}{2, 1, "", "栈与队列", 2},
		[]interface{}{2, "x", "", "串", 2},
		[]interface{}{3, 1, "", "", 2},
	)
	s, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []types.LessonRecord{
		{Week: 1, Lesson: 1, CourseName: "数据结构", ChapterContent: "绪论", ClassHours: 2},
		{Week: 1, Lesson: 2, CourseName: "数据结构", ChapterContent: "线性表", ClassHours: 2},
		{Week: 2, Lesson: 1, CourseName: "数据结构", ChapterContent: "栈与队列", ClassHours: 2},
	}
	if len(s.Records) != len(want) {
		t.Fatalf("records=%+v", s.Records)
	}
	for i := range want {
		if s.Records[i] != want[i] {
			t.Fatalf("record %d = %+v want %+v", i, s.Records[i], want[i])
		}
	}
	if len(s.Rejected) != 2 || s.Rejected[0].Row != 7 || s.Rejected[1].Row != 8 {
		t.Fatalf("rejected=%v", s.Err())
	}
	var re *RowError
	if !errors.As(s.Err(), &re) {
		t.Fatalf("Err() should expose RowError")
	}
}

func TestParseScheduleMissingColumns(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"周次", "课次", "课程名称"},
		[]interface{}{1, 1, "数据结构"},
	)
	_, err := Parse(buf)
	var mc *MissingColumnError
	if !errors.As(err, &mc) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
	if len(mc.Columns) != 2 || mc.Columns[0] != "chapter_content" || mc.Columns[1] != "class_hours" {
		t.Fatalf("missing=%v", mc.Columns)
	}
}

func TestParseScheduleEmpty(t *testing.T) {
	buf := workbook(t, []interface{}{"周次", "课次", "课程名称", "章节内容", "课时"})
	if _, err := Parse(buf); !errors.Is(err, ErrEmptySchedule) {
		t.Fatalf("expected ErrEmptySchedule, got %v", err)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.xlsx")
	f := excelize.NewFile()
	_ = f.SetSheetRow("Sheet1", "A1", &[]interface{}{"教学周", "节次", "课程", "教学内容", "学时"})
	_ = f.SetSheetRow("Sheet1", "A2", &[]interface{}{4, 2, "操作系统", "进程调度", 3})
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	s, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(s.Records) != 1 || s.Records[0].Label() != "第4周第2次课" || s.Records[0].ClassHours != 3 {
		t.Fatalf("records=%+v", s.Records)
	}
}

func TestParseWeekRange(t *testing.T) {
	cases := []struct {
		in      string
		want    WeekRange
		wantErr bool
	}{
		{"", WeekRange{}, false},
		{"3", WeekRange{3, 3}, false},
		{"1-16", WeekRange{1, 16}, false},
		{" 2 ~ 5 ", WeekRange{2, 5}, false},
		{"5-2", WeekRange{}, true},
		{"0-3", WeekRange{}, true},
		{"a-b", WeekRange{}, true},
	}
	for _, tc := range cases {
		got, err := ParseWeekRange(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Fatalf("ParseWeekRange(%q) = %+v, %v", tc.in, got, err)
		}
	}
}

func TestFilterWeeksSortsStable(t *testing.T) {
	in := []types.LessonRecord{
		{Week: 3, Lesson: 1, ChapterContent: "c"},
		{Week: 1, Lesson: 2, ChapterContent: "b"},
		{Week: 1, Lesson: 1, ChapterContent: "a"},
		{Week: 5, Lesson: 1, ChapterContent: "e"},
		{Week: 1, Lesson: 1, ChapterContent: "a2"},
	}
	got := FilterWeeks(in, WeekRange{From: 1, To: 3})
	order := ""
	for _, r := range got {
		order += r.ChapterContent + " "
	}
	if order != "a a2 b c " {
		t.Fatalf("order=%q", order)
	}
	if all := FilterWeeks(in, WeekRange{}); len(all) != len(in) {
		t.Fatalf("zero range dropped records")
	}
}

func TestSyllabusAndExcerpt(t *testing.T) {
	var buf bytes.Buffer
	if err := docgen.WriteDefaultTemplate(&buf); err != nil {
		t.Fatalf("WriteDefaultTemplate: %v", err)
	}
	s, err := ParseSyllabus(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseSyllabus: %v", err)
	}
	if s.ParagraphCount == 0 || s.WordCount == 0 {
		t.Fatalf("syllabus=%+v", s)
	}
	if got := Excerpt("一二三四五", 3); got != "一二三" {
		t.Fatalf("Excerpt=%q", got)
	}
	if got := Excerpt(" abc ", 0); got != "abc" {
		t.Fatalf("Excerpt=%q", got)
	}
}
