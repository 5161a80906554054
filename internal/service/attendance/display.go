package attendance

import (
	"github.com/cmlabs-hris/attendance-review/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-review/internal/pkg/clock"
)

// toRowResponse renders a record for display. Set clock values are shown in
// 12-hour form; sentinels pass through untouched.
func toRowResponse(rec attendance.Record, state attendance.OverlayState) attendance.RowResponse {
	return attendance.RowResponse{
		ID:                 rec.ID,
		Date:               rec.Date,
		ScheduleStart:      formatOptional(rec.ScheduleStart),
		ScheduleEnd:        formatOptional(rec.ScheduleEnd),
		TimeIn:             formatClock(rec.TimeIn),
		TimeOut:            formatClock(rec.TimeOut),
		Break:              InferBreak(rec.BreakStart, rec.BreakEnd),
		LateMinutes:        rec.LateMinutes,
		LateText:           clock.FormatLateTime(rec.LateMinutes),
		Status:             rec.Status,
		HoursWorked:        clock.FormatHoursWorked(rec.HoursWorkedMinutes),
		HoursWorkedMinutes: rec.HoursWorkedMinutes,
		Remarks:            rec.Remarks,
		CorrectionStatus:   rec.CorrectionStatus,
		Editable:           rec.Editable(),
		OverlayState:       state,
	}
}

func formatClock(c attendance.ClockValue) attendance.ClockValue {
	if !c.IsSet() {
		return c
	}
	return attendance.ClockAt(clock.FormatTo12Hour(c.Value()))
}

func formatOptional(s *string) *string {
	if s == nil {
		return nil
	}
	formatted := clock.FormatTo12Hour(*s)
	return &formatted
}

func toComparisonSide(rec *attendance.Record) *attendance.ComparisonSide {
	if rec == nil {
		return nil
	}
	return &attendance.ComparisonSide{
		ID:          rec.ID,
		TimeIn:      formatClock(rec.TimeIn),
		TimeOut:     formatClock(rec.TimeOut),
		HoursWorked: clock.FormatHoursWorked(rec.HoursWorkedMinutes),
		Late:        clock.FormatLateTime(rec.LateMinutes),
		Status:      rec.Status,
		Remarks:     rec.Remarks,
	}
}

func toComparisonResponse(filter attendance.ComparisonFilter, entries []attendance.ComparisonEntry) attendance.ComparisonResponse {
	resp := attendance.ComparisonResponse{
		EmployeeID: filter.EmployeeID,
		StartDate:  filter.StartDate,
		EndDate:    filter.EndDate,
		Entries:    make([]attendance.ComparisonEntryResponse, 0, len(entries)),
	}

	for _, entry := range entries {
		if filter.Status != nil && *filter.Status != "" && string(entry.Status) != *filter.Status {
			continue
		}

		resp.Summary.Total++
		switch entry.Status {
		case attendance.ComparisonMatch:
			resp.Summary.Match++
		case attendance.ComparisonMismatch:
			resp.Summary.Mismatch++
		case attendance.ComparisonMissingRaw:
			resp.Summary.MissingRaw++
		case attendance.ComparisonMissingProcessed:
			resp.Summary.MissingProcessed++
		case attendance.ComparisonNoData:
			resp.Summary.NoData++
		}

		differences := entry.Differences
		if differences == nil {
			differences = []string{}
		}
		resp.Entries = append(resp.Entries, attendance.ComparisonEntryResponse{
			Date:           entry.Date,
			Status:         entry.Status,
			ReportedStatus: entry.ReportedStatus,
			Differences:    differences,
			Processed:      toComparisonSide(entry.Processed),
			Raw:            toComparisonSide(entry.Raw),
		})
	}
	return resp
}
