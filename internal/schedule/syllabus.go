package schedule

import (
	"strings"
	"unicode/utf8"

	"github.com/yungbote/lessonplan-backend/internal/docgen"
)

// Syllabus is the plain-text form of an uploaded syllabus document.
type Syllabus struct {
	Content        string `json:"content"`
	WordCount      int    `json:"word_count"`
	ParagraphCount int    `json:"paragraph_count"`
}

func ParseSyllabusFile(path string) (*Syllabus, error) {
	text, err := docgen.ExtractTextFile(path)
	if err != nil {
		return nil, err
	}
	return newSyllabus(text), nil
}

func ParseSyllabus(b []byte) (*Syllabus, error) {
	text, err := docgen.ExtractText(b)
	if err != nil {
		return nil, err
	}
	return newSyllabus(text), nil
}

func newSyllabus(text string) *Syllabus {
	s := &Syllabus{Content: text}
	if text == "" {
		return s
	}
	s.ParagraphCount = strings.Count(text, "\n") + 1
	s.WordCount = utf8.RuneCountInString(strings.Join(strings.Fields(text), ""))
	return s
}

// Excerpt trims text to at most n runes for use as prompt context.
func Excerpt(text string, n int) string {
	text = strings.TrimSpace(text)
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	r := []rune(text)
	return string(r[:n])
}
