package attendance

import (
	"strings"

	"github.com/cmlabs-hris/attendance-review/internal/domain/attendance"
)

// BuildCandidate computes the record a reviewer should see once update is
// applied to base. A time_in edit also recomputes lateness so the row stays
// consistent. Other fields overlay only what was edited.
func BuildCandidate(base attendance.Record, update attendance.FieldUpdate) attendance.Record {
	candidate := base

	switch update.Field {
	case attendance.FieldTimeIn:
		if update.Value != nil {
			candidate.TimeIn = attendance.ClockAt(strings.TrimSpace(*update.Value))
			applyLateCalculation(&candidate)
		}
	case attendance.FieldTimeOut:
		if update.Value != nil {
			candidate.TimeOut = attendance.ClockAt(strings.TrimSpace(*update.Value))
		}
	case attendance.FieldSchedule:
		candidate.ScheduleStart = trimmedPtr(update.ScheduleStart)
		candidate.ScheduleEnd = trimmedPtr(update.ScheduleEnd)
	case attendance.FieldBreak:
		// nil leaves a side unchanged, an empty string clears it
		if update.BreakStart != nil {
			candidate.BreakStart = clearablePtr(*update.BreakStart)
		}
		if update.BreakEnd != nil {
			candidate.BreakEnd = clearablePtr(*update.BreakEnd)
		}
	}

	return candidate
}

// toFieldUpdate converts a validated request into the store update for recordID.
func toFieldUpdate(recordID string, req attendance.EditFieldRequest) attendance.FieldUpdate {
	return attendance.FieldUpdate{
		RecordID:      recordID,
		Field:         req.Field,
		Value:         trimmedPtr(req.Value),
		ScheduleStart: trimmedPtr(req.ScheduleStart),
		ScheduleEnd:   trimmedPtr(req.ScheduleEnd),
		BreakStart:    trimmedPtr(req.BreakStart),
		BreakEnd:      trimmedPtr(req.BreakEnd),
	}
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func clearablePtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
