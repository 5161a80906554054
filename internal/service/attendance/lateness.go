package attendance

import (
	"fmt"

	"github.com/cmlabs-hris/attendance-review/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-review/internal/pkg/clock"
)

// CalculateLateMinutes compares clock-in and scheduled start as same-day
// times. Date prefixes are ignored; unparsable or missing input yields 0.
// Shifts are assumed not to cross midnight here.
func CalculateLateMinutes(timeIn, scheduleStart string) int {
	if timeIn == "" || scheduleStart == "" {
		return 0
	}
	in, ok := clock.Parse(timeIn)
	if !ok {
		return 0
	}
	start, ok := clock.Parse(scheduleStart)
	if !ok {
		return 0
	}
	if in > start {
		return int(in - start)
	}
	return 0
}

// CalculateStatus only ever yields Present or Late. Absent, RestDay and
// NoTimeRecords are decided upstream.
func CalculateStatus(timeIn, scheduleStart string) attendance.Status {
	if CalculateLateMinutes(timeIn, scheduleStart) > 0 {
		return attendance.StatusLate
	}
	return attendance.StatusPresent
}

func GenerateRemarks(timeIn, scheduleStart string) string {
	late := CalculateLateMinutes(timeIn, scheduleStart)
	switch {
	case late == 1:
		return "Late by 1 minute"
	case late > 1:
		return fmt.Sprintf("Late by %d minutes", late)
	default:
		return "On Time"
	}
}

// applyLateCalculation recomputes late minutes, status and remarks in place
// for a record with a clock-in time. Records without one are left untouched.
func applyLateCalculation(rec *attendance.Record) {
	if !rec.TimeIn.IsSet() {
		return
	}
	timeIn := rec.TimeIn.Value()
	schedule := derefString(rec.ScheduleStart)
	rec.LateMinutes = CalculateLateMinutes(timeIn, schedule)
	rec.Status = CalculateStatus(timeIn, schedule)
	rec.Remarks = GenerateRemarks(timeIn, schedule)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
