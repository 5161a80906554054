package attendance

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-review/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-review/internal/pkg/clock"
)

const (
	// DefaultBreakMinutes is deducted when no break was recorded at all.
	DefaultBreakMinutes = 60

	// Breaks of this length or shorter are flagged.
	shortBreakMinutes = 5

	missingGlyph = "⚠"
)

// hasBreakTime reports whether a break timestamp counts as present.
func hasBreakTime(s *string) bool {
	if s == nil {
		return false
	}
	v := strings.TrimSpace(*s)
	return v != "" && v != "null" && v != clock.NoBreak
}

// InferBreak derives the break duration and its status from two optional
// timestamps, which may be bare "HH:MM" or full datetimes.
func InferBreak(start, end *string) attendance.BreakInfo {
	hasStart, hasEnd := hasBreakTime(start), hasBreakTime(end)

	switch {
	case hasStart && hasEnd:
		return completeBreak(*start, *end)
	case hasStart:
		return attendance.BreakInfo{
			Status:       attendance.BreakMissingEnd,
			DisplayText:  fmt.Sprintf("%s - %s Missing", clock.FormatTo12Hour(clock.StripDate(*start)), missingGlyph),
			WarningLevel: attendance.WarningError,
			Message:      "Break end time is missing",
		}
	case hasEnd:
		return attendance.BreakInfo{
			Status:       attendance.BreakMissingStart,
			DisplayText:  fmt.Sprintf("%s Missing - %s", missingGlyph, clock.FormatTo12Hour(clock.StripDate(*end))),
			WarningLevel: attendance.WarningError,
			Message:      "Break start time is missing",
		}
	default:
		return attendance.BreakInfo{
			Status:          attendance.BreakMissingBoth,
			DurationMinutes: DefaultBreakMinutes,
			IsDefault:       true,
			DisplayText:     "No break recorded",
			Badge:           clock.FormatDuration(DefaultBreakMinutes),
			WarningLevel:    attendance.WarningWarning,
			Message:         "No break recorded, 1-hour default deduction applied",
		}
	}
}

func completeBreak(start, end string) attendance.BreakInfo {
	startTime, startOK := clock.Parse(start)
	endTime, endOK := clock.Parse(end)
	if !startOK || !endOK {
		return attendance.BreakInfo{
			Status:       attendance.BreakComplete,
			DisplayText:  fmt.Sprintf("%s - %s", start, end),
			WarningLevel: attendance.WarningError,
			Message:      "Break times could not be read",
		}
	}

	duration := endTime.Sub(startTime)
	info := attendance.BreakInfo{
		Status:          attendance.BreakComplete,
		DurationMinutes: duration,
		DisplayText:     fmt.Sprintf("%s - %s", startTime.Format12(), endTime.Format12()),
		Badge:           clock.FormatDuration(duration),
		WarningLevel:    attendance.WarningNone,
	}
	if duration <= shortBreakMinutes {
		info.WarningLevel = attendance.WarningWarning
		info.Message = "Very short break recorded"
	}
	return info
}
