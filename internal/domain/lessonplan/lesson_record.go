package lessonplan

import (
	"errors"
	"fmt"
	"strings"
)

// LessonRecord is one scheduled class session taken from a teaching schedule.
type LessonRecord struct {
	Week           int    `json:"week"`
	Lesson         int    `json:"lesson"`
	CourseName     string `json:"course_name"`
	ChapterContent string `json:"chapter_content"`
	ClassHours     int    `json:"class_hours"`
}

// Label is the human readable descriptor used in progress messages.
func (r LessonRecord) Label() string {
	return fmt.Sprintf("第%d周第%d次课", r.Week, r.Lesson)
}

func (r LessonRecord) Validate() error {
	var errs []error
	if r.Week <= 0 {
		errs = append(errs, fmt.Errorf("week must be positive, got %d", r.Week))
	}
	if r.Lesson <= 0 {
		errs = append(errs, fmt.Errorf("lesson must be positive, got %d", r.Lesson))
	}
	if strings.TrimSpace(r.CourseName) == "" {
		errs = append(errs, errors.New("course_name is required"))
	}
	if strings.TrimSpace(r.ChapterContent) == "" {
		errs = append(errs, errors.New("chapter_content is required"))
	}
	if r.ClassHours <= 0 {
		errs = append(errs, fmt.Errorf("class_hours must be positive, got %d", r.ClassHours))
	}
	return errors.Join(errs...)
}

// Less orders records by (week, lesson).
func (r LessonRecord) Less(o LessonRecord) bool {
	if r.Week != o.Week {
		return r.Week < o.Week
	}
	return r.Lesson < o.Lesson
}
