package attendance

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/attendance-review/internal/pkg/validator"
)

// maxSessionDays bounds how many dates one review session may load.
const maxSessionDays = 62

// ========================================
// SESSION DTOs
// ========================================

type OpenSessionRequest struct {
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date"` // YYYY-MM-DD
	EndDate    string `json:"end_date"`   // YYYY-MM-DD
}

func (r *OpenSessionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	errs = append(errs, validateDateRange(r.StartDate, r.EndDate)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SessionResponse struct {
	SessionID       string        `json:"session_id"`
	EmployeeID      string        `json:"employee_id"`
	StartDate       string        `json:"start_date"`
	EndDate         string        `json:"end_date"`
	OverlayPolicy   string        `json:"overlay_policy"`
	StreamToken     string        `json:"stream_token"`
	StreamExpiresIn int           `json:"stream_expires_in"`
	Rows            []RowResponse `json:"rows"`
}

// BreakInfo is the inferred break for a record. DurationMinutes is the policy
// default when IsDefault is set, not a measurement.
type BreakInfo struct {
	Status          BreakStatus  `json:"status"`
	DurationMinutes int          `json:"duration_minutes"`
	IsDefault       bool         `json:"is_default"`
	DisplayText     string       `json:"display_text"`
	Badge           string       `json:"badge"`
	WarningLevel    WarningLevel `json:"warning_level"`
	Message         string       `json:"message,omitempty"`
}

// RowResponse is one display row. Time fields are already formatted for display.
type RowResponse struct {
	ID                 string           `json:"id"`
	Date               string           `json:"date"`
	ScheduleStart      *string          `json:"schedule_start,omitempty"`
	ScheduleEnd        *string          `json:"schedule_end,omitempty"`
	TimeIn             ClockValue       `json:"time_in"`
	TimeOut            ClockValue       `json:"time_out"`
	Break              BreakInfo        `json:"break"`
	LateMinutes        int              `json:"late_minutes"`
	LateText           string           `json:"late_text"`
	Status             Status           `json:"status"`
	HoursWorked        string           `json:"hours_worked"`
	HoursWorkedMinutes int              `json:"hours_worked_minutes"`
	Remarks            string           `json:"remarks"`
	CorrectionStatus   CorrectionStatus `json:"correction_status,omitempty"`
	Editable           bool             `json:"editable"`
	OverlayState       OverlayState     `json:"overlay_state"`
}

// ========================================
// EDIT DTOs
// ========================================

type EditFieldRequest struct {
	SessionID     string    `json:"-"`
	Date          string    `json:"date"` // YYYY-MM-DD
	Field         EditField `json:"field"`
	Value         *string   `json:"value,omitempty"`
	ScheduleStart *string   `json:"schedule_start,omitempty"`
	ScheduleEnd   *string   `json:"schedule_end,omitempty"`
	BreakStart    *string   `json:"break_start,omitempty"`
	BreakEnd      *string   `json:"break_end,omitempty"`
}

func (r *EditFieldRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.SessionID) {
		errs = append(errs, validator.ValidationError{
			Field:   "session_id",
			Message: "session_id must be a valid session identifier",
		})
	}

	if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	switch r.Field {
	case FieldTimeIn, FieldTimeOut:
		if r.Value == nil || !validator.IsValidClock(*r.Value) {
			errs = append(errs, validator.ValidationError{
				Field:   "value",
				Message: "value must be a time in HH:MM format",
			})
		}
	case FieldSchedule:
		if r.ScheduleStart == nil || !validator.IsValidClock(*r.ScheduleStart) {
			errs = append(errs, validator.ValidationError{
				Field:   "schedule_start",
				Message: "schedule_start must be a time in HH:MM format",
			})
		}
		if r.ScheduleEnd == nil || !validator.IsValidClock(*r.ScheduleEnd) {
			errs = append(errs, validator.ValidationError{
				Field:   "schedule_end",
				Message: "schedule_end must be a time in HH:MM format",
			})
		}
	case FieldBreak:
		// Either side may be cleared, but not both at once through this field.
		if r.BreakStart != nil && *r.BreakStart != "" && !validator.IsValidClock(*r.BreakStart) {
			errs = append(errs, validator.ValidationError{
				Field:   "break_start",
				Message: "break_start must be empty or a time in HH:MM format",
			})
		}
		if r.BreakEnd != nil && *r.BreakEnd != "" && !validator.IsValidClock(*r.BreakEnd) {
			errs = append(errs, validator.ValidationError{
				Field:   "break_end",
				Message: "break_end must be empty or a time in HH:MM format",
			})
		}
		if isBlank(r.BreakStart) && isBlank(r.BreakEnd) {
			errs = append(errs, validator.ValidationError{
				Field:   "break",
				Message: "break_start or break_end is required",
			})
		}
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "field",
			Message: "field must be one of: time_in, time_out, schedule, break",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func isBlank(s *string) bool {
	return s == nil || validator.IsEmpty(*s)
}

type EditResultResponse struct {
	Date         string       `json:"date"`
	Field        EditField    `json:"field"`
	Sequence     uint64       `json:"sequence"`
	Outcome      EditOutcome  `json:"outcome"`
	OverlayState OverlayState `json:"overlay_state"`
	Row          RowResponse  `json:"row"`
}

// ========================================
// COMPARISON DTOs
// ========================================

type ComparisonFilter struct {
	EmployeeID string  `json:"employee_id"`
	StartDate  string  `json:"start_date"` // YYYY-MM-DD
	EndDate    string  `json:"end_date"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`
}

func (f *ComparisonFilter) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	errs = append(errs, validateDateRange(f.StartDate, f.EndDate)...)

	if f.Status != nil && *f.Status != "" {
		if !ComparisonStatus(*f.Status).IsValid() {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: match, mismatch, missing_raw, missing_processed, no_data",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ComparisonSide is the time-relevant view of one side of a comparison.
type ComparisonSide struct {
	ID          string     `json:"id"`
	TimeIn      ClockValue `json:"time_in"`
	TimeOut     ClockValue `json:"time_out"`
	HoursWorked string     `json:"hours_worked"`
	Late        string     `json:"late"`
	Status      Status     `json:"status"`
	Remarks     string     `json:"remarks"`
}

type ComparisonEntryResponse struct {
	Date           string           `json:"date"`
	Status         ComparisonStatus `json:"status"`
	ReportedStatus ComparisonStatus `json:"reported_status"`
	Differences    []string         `json:"differences"`
	Processed      *ComparisonSide  `json:"processed,omitempty"`
	Raw            *ComparisonSide  `json:"raw,omitempty"`
}

type ComparisonSummary struct {
	Total            int `json:"total"`
	Match            int `json:"match"`
	Mismatch         int `json:"mismatch"`
	MissingRaw       int `json:"missing_raw"`
	MissingProcessed int `json:"missing_processed"`
	NoData           int `json:"no_data"`
}

type ComparisonResponse struct {
	EmployeeID string                    `json:"employee_id"`
	StartDate  string                    `json:"start_date"`
	EndDate    string                    `json:"end_date"`
	Summary    ComparisonSummary         `json:"summary"`
	Entries    []ComparisonEntryResponse `json:"entries"`
}

// ========================================
// RAW IMPORT DTOs
// ========================================

type ImportRawRequest struct {
	EmployeeID string    `json:"employee_id"`
	File       io.Reader `json:"-"`
	Filename   string    `json:"-"`
	Size       int64     `json:"-"`
}

func (r *ImportRawRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	ext := strings.ToLower(filepath.Ext(r.Filename))
	if r.File == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "attendance spreadsheet is required",
		})
	} else if ext != ".xlsx" && ext != ".xls" {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "invalid file type: only xlsx, xls allowed",
		})
	} else if r.Size > 10<<20 { // 10MB
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "attendance spreadsheet size must not exceed 10MB",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type ImportRawResponse struct {
	BatchID         string       `json:"batch_id"`
	EmployeeID      string       `json:"employee_id"`
	Filename        string       `json:"filename"`
	RowsRead        int          `json:"rows_read"`
	RecordsImported int          `json:"records_imported"`
	Skipped         []SkippedRow `json:"skipped"`
}

func validateDateRange(startDate, endDate string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	start, startValid := validator.IsValidDate(startDate)
	if !startValid {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	end, endValid := validator.IsValidDate(endDate)
	if !endValid {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if startValid && endValid {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must not be before start_date",
			})
		} else if int(end.Sub(start).Hours()/24)+1 > maxSessionDays {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "date range must not exceed " + validator.Itoa(maxSessionDays) + " days",
			})
		}
	}

	return errs
}
