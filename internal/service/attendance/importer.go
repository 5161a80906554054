package attendance

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-review/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-review/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-review/internal/pkg/spreadsheet"
)

type rawColumn int

const (
	colDate rawColumn = iota
	colTimeIn
	colTimeOut
	colBreakStart
	colBreakEnd
	colScheduleStart
	colScheduleEnd
	colHoursWorked
	colLateMinutes
	colStatus
	colRemarks
)

var rawHeaderAliases = map[string]rawColumn{
	"date":            colDate,
	"attendance date": colDate,
	"time in":         colTimeIn,
	"clock in":        colTimeIn,
	"check in":        colTimeIn,
	"time out":        colTimeOut,
	"clock out":       colTimeOut,
	"check out":       colTimeOut,
	"break start":     colBreakStart,
	"break in":        colBreakStart,
	"break end":       colBreakEnd,
	"break out":       colBreakEnd,
	"schedule start":  colScheduleStart,
	"shift start":     colScheduleStart,
	"schedule end":    colScheduleEnd,
	"shift end":       colScheduleEnd,
	"hours worked":    colHoursWorked,
	"total hours":     colHoursWorked,
	"work hours":      colHoursWorked,
	"late minutes":    colLateMinutes,
	"late":            colLateMinutes,
	"status":          colStatus,
	"remarks":         colRemarks,
	"notes":           colRemarks,
}

// ParseRawRows turns spreadsheet rows into raw records. The first row is the
// header. Row numbers in the result are 1-based spreadsheet rows. Rows that
// cannot be used are reported in the skipped list rather than failing the
// whole import; blank rows are ignored.
func ParseRawRows(rows [][]string, employeeID string, maxRows int) ([]attendance.Record, []attendance.SkippedRow, error) {
	if len(rows) < 2 {
		return nil, nil, attendance.ErrEmptySpreadsheet
	}
	if maxRows > 0 && len(rows)-1 > maxRows {
		return nil, nil, fmt.Errorf("%w: limit is %d", attendance.ErrTooManyRows, maxRows)
	}

	columns := make(map[rawColumn]int)
	for idx, header := range rows[0] {
		if col, ok := rawHeaderAliases[spreadsheet.NormalizeHeader(header)]; ok {
			if _, seen := columns[col]; !seen {
				columns[col] = idx
			}
		}
	}
	_, hasDate := columns[colDate]
	_, hasTimeIn := columns[colTimeIn]
	if !hasDate || !hasTimeIn {
		return nil, nil, fmt.Errorf("%w: date and time in are required", attendance.ErrMissingColumns)
	}

	cell := func(row []string, col rawColumn) string {
		idx, ok := columns[col]
		if !ok {
			return ""
		}
		return spreadsheet.CellValue(row, idx)
	}

	var (
		records []attendance.Record
		skipped []attendance.SkippedRow
		seen    = make(map[string]int)
	)

	for i, row := range rows[1:] {
		rowNumber := i + 2
		if spreadsheet.IsBlankRow(row) {
			continue
		}

		date, ok := spreadsheet.ParseDate(cell(row, colDate))
		if !ok {
			skipped = append(skipped, attendance.SkippedRow{Row: rowNumber, Reason: "invalid date"})
			continue
		}
		if first, dup := seen[date]; dup {
			skipped = append(skipped, attendance.SkippedRow{
				Row:    rowNumber,
				Reason: fmt.Sprintf("duplicate date %s, first seen on row %d", date, first),
			})
			continue
		}
		seen[date] = rowNumber

		rec := attendance.Record{
			EmployeeID:    employeeID,
			Date:          date,
			TimeIn:        rawClock(cell(row, colTimeIn)),
			TimeOut:       rawClock(cell(row, colTimeOut)),
			BreakStart:    rawOptionalTime(cell(row, colBreakStart)),
			BreakEnd:      rawOptionalTime(cell(row, colBreakEnd)),
			ScheduleStart: rawOptionalTime(cell(row, colScheduleStart)),
			ScheduleEnd:   rawOptionalTime(cell(row, colScheduleEnd)),
			Remarks:       cell(row, colRemarks),
			Source:        &attendance.RawSource{RowNumber: rowNumber},
		}

		if minutes, ok := spreadsheet.ParseHours(cell(row, colHoursWorked)); ok {
			rec.HoursWorkedMinutes = minutes
		}

		if minutes, ok := spreadsheet.ParseMinutes(cell(row, colLateMinutes)); ok {
			rec.LateMinutes = minutes
		} else if rec.TimeIn.IsSet() {
			rec.LateMinutes = CalculateLateMinutes(rec.TimeIn.Value(), derefString(rec.ScheduleStart))
		}

		if status, ok := attendance.ParseStatus(cell(row, colStatus)); ok {
			rec.Status = status
		} else {
			rec.Status = deriveRawStatus(rec)
		}

		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, skipped, attendance.ErrEmptySpreadsheet
	}
	return records, skipped, nil
}

// rawClock keeps sentinels as absent values and normalizes readable times
// to HH:MM. Unreadable text is kept as written so it shows up in comparisons.
func rawClock(value string) attendance.ClockValue {
	if clock.IsSentinel(value) {
		return attendance.AbsentClock(value)
	}
	if normalized, ok := spreadsheet.ParseClock(value); ok {
		return attendance.ClockAt(normalized)
	}
	return attendance.ClockFromString(value)
}

func rawOptionalTime(value string) *string {
	if value == "" {
		return nil
	}
	if normalized, ok := spreadsheet.ParseClock(value); ok {
		return &normalized
	}
	return &value
}

func deriveRawStatus(rec attendance.Record) attendance.Status {
	switch {
	case !rec.TimeIn.IsSet() && !rec.TimeOut.IsSet():
		return attendance.StatusNoTimeRecords
	case rec.LateMinutes > 0:
		return attendance.StatusLate
	default:
		return attendance.StatusPresent
	}
}

// mapSpreadsheetError translates reader errors into import errors.
func mapSpreadsheetError(err error) error {
	switch {
	case errors.Is(err, spreadsheet.ErrUnsupportedFormat):
		return attendance.ErrUnsupportedFile
	case errors.Is(err, spreadsheet.ErrNoWorksheet), errors.Is(err, spreadsheet.ErrEmptyWorksheet):
		return attendance.ErrEmptySpreadsheet
	}
	return fmt.Errorf("%w: %v", attendance.ErrUnreadableFile, err)
}
