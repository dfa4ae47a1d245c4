package schedule

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	types "github.com/yungbote/lessonplan-backend/internal/domain"
)

const (
	colWeek           = "week"
	colLesson         = "lesson"
	colCourseName     = "course_name"
	colChapterContent = "chapter_content"
	colClassHours     = "class_hours"

	headerSearchRows = 5
)

var requiredColumns = []string{colWeek, colLesson, colCourseName, colChapterContent, colClassHours}

// headerAliases maps normalized header text to a column key.
var headerAliases = map[string]string{
	"周次": colWeek, "周": colWeek, "教学周": colWeek, "week": colWeek,
	"课次": colLesson, "次": colLesson, "节次": colLesson, "lesson": colLesson,
	"课程名称": colCourseName, "课程": colCourseName, "course_name": colCourseName,
	"章节内容": colChapterContent, "教学内容": colChapterContent, "内容": colChapterContent, "chapter_content": colChapterContent,
	"课时": colClassHours, "学时": colClassHours, "class_hours": colClassHours,
}

var headerReplacer = strings.NewReplacer(" ", "", "\t", "", "\n", "", "　", "", "（", "(", "）", ")")

// Schedule is the parse result: accepted records in file order plus the rows
// that were rejected.
type Schedule struct {
	Sheet    string               `json:"sheet"`
	Records  []types.LessonRecord `json:"records"`
	Rejected []*RowError          `json:"-"`
}

// Err joins every row rejection, or nil when all rows were accepted.
func (s *Schedule) Err() error {
	if len(s.Rejected) == 0 {
		return nil
	}
	errs := make([]error, len(s.Rejected))
	for i, r := range s.Rejected {
		errs[i] = r
	}
	return errors.Join(errs...)
}

func ParseFile(path string) (*Schedule, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open schedule: %w", err)
	}
	defer f.Close()
	return parseWorkbook(f)
}

func Parse(r io.Reader) (*Schedule, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open schedule: %w", err)
	}
	defer f.Close()
	return parseWorkbook(f)
}

func parseWorkbook(f *excelize.File) (*Schedule, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySchedule
	}
	sheet := sheets[0]
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	headerIdx, cols, err := locateHeader(rows)
	if err != nil {
		return nil, err
	}

	out := &Schedule{Sheet: sheet}
	lastCourse := ""
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if blankRow(row) {
			continue
		}
		course := cell(row, cols[colCourseName])
		if course == "" {
			course = lastCourse
		}
		rec, err := recordFromRow(row, cols, course)
		if err != nil {
			out.Rejected = append(out.Rejected, &RowError{Row: i + 1, Err: err})
			continue
		}
		lastCourse = rec.CourseName
		out.Records = append(out.Records, rec)
	}
	if len(out.Records) == 0 && len(out.Rejected) == 0 {
		return nil, ErrEmptySchedule
	}
	return out, nil
}

// locateHeader picks the first row among the leading rows that names every
// required column. When none does, the error lists what the best row lacked.
func locateHeader(rows [][]string) (int, map[string]int, error) {
	var best map[string]int
	for i := 0; i < len(rows) && i < headerSearchRows; i++ {
		cols := map[string]int{}
		for j, h := range rows[i] {
			key, ok := headerAliases[NormalizeHeader(h)]
			if !ok {
				continue
			}
			if _, dup := cols[key]; !dup {
				cols[key] = j
			}
		}
		if len(cols) == len(requiredColumns) {
			return i, cols, nil
		}
		if len(cols) > len(best) {
			best = cols
		}
	}
	if len(rows) == 0 {
		return 0, nil, ErrEmptySchedule
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := best[c]; !ok {
			missing = append(missing, c)
		}
	}
	return 0, nil, &MissingColumnError{Columns: missing}
}

// NormalizeHeader strips whitespace and folds full-width parentheses. A
// trailing unit in parentheses, as in "课时(节)", is dropped.
func NormalizeHeader(h string) string {
	h = headerReplacer.Replace(strings.TrimSpace(h))
	if i := strings.Index(h, "("); i > 0 {
		h = h[:i]
	}
	return strings.ToLower(h)
}

func recordFromRow(row []string, cols map[string]int, course string) (types.LessonRecord, error) {
	week, err := parsePositive(cell(row, cols[colWeek]), "周", "第")
	if err != nil {
		return types.LessonRecord{}, fmt.Errorf("week: %w", err)
	}
	lesson, err := parsePositive(cell(row, cols[colLesson]), "次", "课", "第", "节")
	if err != nil {
		return types.LessonRecord{}, fmt.Errorf("lesson: %w", err)
	}
	hours, err := parsePositive(cell(row, cols[colClassHours]), "课时", "学时", "节")
	if err != nil {
		return types.LessonRecord{}, fmt.Errorf("class_hours: %w", err)
	}
	rec := types.LessonRecord{
		Week:           week,
		Lesson:         lesson,
		CourseName:     course,
		ChapterContent: cell(row, cols[colChapterContent]),
		ClassHours:     hours,
	}
	if err := rec.Validate(); err != nil {
		return types.LessonRecord{}, err
	}
	return rec, nil
}

// parsePositive accepts "3", "3.0" or decorated forms like "第3周".
func parsePositive(s string, decorations ...string) (int, error) {
	for _, d := range decorations {
		s = strings.ReplaceAll(s, d, "")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty value")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if f <= 0 || f != math.Trunc(f) {
		return 0, fmt.Errorf("not a positive integer: %q", s)
	}
	return int(f), nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
