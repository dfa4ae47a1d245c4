package docgen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/lukasjarosch/go-docx"

	types "github.com/yungbote/lessonplan-backend/internal/domain"
)

// Renderer merges one lesson's record and generated content into a document.
type Renderer interface {
	Render(ctx context.Context, rec types.LessonRecord, content types.ContentMap) ([]byte, error)
}

// DocxRenderer fills {placeholder} markers in a .docx template. The
// template bytes are loaded once and every Render works on a fresh copy.
type DocxRenderer struct {
	template []byte
}

func NewDocxRenderer(template []byte) (*DocxRenderer, error) {
	if len(template) == 0 {
		return nil, errors.New("empty docx template")
	}
	doc, err := docx.OpenBytes(template)
	if err != nil {
		return nil, fmt.Errorf("open docx template: %w", err)
	}
	doc.Close()
	return &DocxRenderer{template: template}, nil
}

func LoadDocxRenderer(path string) (*DocxRenderer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return NewDocxRenderer(b)
}

// DefaultRenderer renders with the built-in template.
func DefaultRenderer() (*DocxRenderer, error) {
	var buf bytes.Buffer
	if err := WriteDefaultTemplate(&buf); err != nil {
		return nil, err
	}
	return NewDocxRenderer(buf.Bytes())
}

func (r *DocxRenderer) Render(ctx context.Context, rec types.LessonRecord, content types.ContentMap) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := docx.OpenBytes(r.template)
	if err != nil {
		return nil, fmt.Errorf("open docx template: %w", err)
	}
	defer doc.Close()

	if err := doc.ReplaceAll(Placeholders(rec, content)); err != nil {
		return nil, fmt.Errorf("replace placeholders: %w", err)
	}
	var out bytes.Buffer
	if err := doc.Write(&out); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return out.Bytes(), nil
}

// Placeholders is the substitution map for one lesson: the record's
// attributes plus one entry per generated field.
func Placeholders(rec types.LessonRecord, content types.ContentMap) docx.PlaceholderMap {
	m := docx.PlaceholderMap{
		"week":            strconv.Itoa(rec.Week),
		"lesson":          strconv.Itoa(rec.Lesson),
		"course_name":     rec.CourseName,
		"chapter_content": rec.ChapterContent,
		"class_hours":     strconv.Itoa(rec.ClassHours),
	}
	for field, text := range content {
		m[field] = text
	}
	return m
}

// OutputName is the file name of the lesson plan for rec.
func OutputName(rec types.LessonRecord) string {
	return fmt.Sprintf("第%d周第%d次课教案.docx", rec.Week, rec.Lesson)
}
