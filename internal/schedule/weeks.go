package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	types "github.com/yungbote/lessonplan-backend/internal/domain"
)

// WeekRange is an inclusive week filter. The zero value keeps every week.
type WeekRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (w WeekRange) IsZero() bool { return w.From == 0 && w.To == 0 }

func (w WeekRange) Contains(week int) bool {
	if w.IsZero() {
		return true
	}
	return week >= w.From && week <= w.To
}

func (w WeekRange) String() string {
	if w.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d-%d", w.From, w.To)
}

var rangeSeparators = strings.NewReplacer("~", "-", "－", "-", "—", "-", "至", "-", "到", "-")

// ParseWeekRange reads "1-16", "3" or "" (all weeks).
func ParseWeekRange(s string) (WeekRange, error) {
	s = strings.TrimSpace(rangeSeparators.Replace(s))
	if s == "" {
		return WeekRange{}, nil
	}
	from, to, found := strings.Cut(s, "-")
	a, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return WeekRange{}, fmt.Errorf("invalid week range %q", s)
	}
	b := a
	if found {
		if b, err = strconv.Atoi(strings.TrimSpace(to)); err != nil {
			return WeekRange{}, fmt.Errorf("invalid week range %q", s)
		}
	}
	if a <= 0 || b < a {
		return WeekRange{}, fmt.Errorf("invalid week range %q", s)
	}
	return WeekRange{From: a, To: b}, nil
}

// FilterWeeks keeps the records inside w, ordered by (week, lesson). Records
// with equal keys keep their input order.
func FilterWeeks(records []types.LessonRecord, w WeekRange) []types.LessonRecord {
	out := make([]types.LessonRecord, 0, len(records))
	for _, r := range records {
		if w.Contains(r.Week) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
