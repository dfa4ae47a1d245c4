package prompts

import (
	"strconv"

	types "github.com/yungbote/lessonplan-backend/internal/domain"
)

const (
	KeyCourseName     = "course_name"
	KeyWeek           = "week"
	KeyLesson         = "lesson"
	KeyChapterContent = "chapter_content"
	KeyClassHours     = "class_hours"
)

func ParamsFor(rec types.LessonRecord) Params {
	return Params{
		KeyCourseName:     rec.CourseName,
		KeyWeek:           strconv.Itoa(rec.Week),
		KeyLesson:         strconv.Itoa(rec.Lesson),
		KeyChapterContent: rec.ChapterContent,
		KeyClassHours:     strconv.Itoa(rec.ClassHours),
	}
}
