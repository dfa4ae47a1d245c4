package lessonplan

import "testing"

func TestLessonRecordValidate(t *testing.T) {
	ok := LessonRecord{Week: 1, Lesson: 2, CourseName: "Go", ChapterContent: "并发", ClassHours: 2}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok.Label() != "第1周第2次课" {
		t.Fatalf("label=%q", ok.Label())
	}

	bad := LessonRecord{Week: 0, Lesson: 1, CourseName: " ", ChapterContent: "x", ClassHours: 0}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLessonRecordLess(t *testing.T) {
	a := LessonRecord{Week: 1, Lesson: 2}
	b := LessonRecord{Week: 2, Lesson: 1}
	c := LessonRecord{Week: 1, Lesson: 3}
	if !a.Less(b) || !a.Less(c) || b.Less(c) {
		t.Fatalf("unexpected ordering")
	}
}
