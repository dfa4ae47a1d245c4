package schedule

import (
	"errors"
	"fmt"
	"strings"
)

var ErrEmptySchedule = errors.New("schedule has no lesson rows")

// MissingColumnError names required headers absent from the sheet.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}

// RowError rejects one spreadsheet row. Row is 1-based as shown in Excel.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }
