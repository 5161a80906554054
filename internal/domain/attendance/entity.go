package attendance

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-review/internal/pkg/clock"
)

type Status string

const (
	StatusPresent       Status = "Present"
	StatusLate          Status = "Late"
	StatusAbsent        Status = "Absent"
	StatusRestDay       Status = "Rest Day"
	StatusNoTimeRecords Status = "No Time Records"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent, StatusRestDay, StatusNoTimeRecords:
		return true
	}
	return false
}

// ParseStatus maps loosely formatted status text ("rest_day", "LATE") onto Status.
func ParseStatus(s string) (Status, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)
	switch normalized {
	case "present", "on time":
		return StatusPresent, true
	case "late":
		return StatusLate, true
	case "absent":
		return StatusAbsent, true
	case "rest day", "restday", "day off":
		return StatusRestDay, true
	case "no time records", "no time record":
		return StatusNoTimeRecords, true
	}
	return "", false
}

// CorrectionStatus is the review workflow state of a processed record.
// Only approved records may be edited inline.
type CorrectionStatus string

const (
	CorrectionNone     CorrectionStatus = ""
	CorrectionReviewed CorrectionStatus = "reviewed"
	CorrectionApproved CorrectionStatus = "approved"
)

type ClockKind int

const (
	// ClockUnset means no value was recorded at all.
	ClockUnset ClockKind = iota
	// ClockAbsent means the value is known to be absent ("No time in").
	ClockAbsent
	// ClockSet carries a time string.
	ClockSet
)

// ClockValue is a clock-in or clock-out value. It keeps "never recorded"
// (JSON null) apart from "known to be absent" (a sentinel string).
type ClockValue struct {
	kind  ClockKind
	value string
}

func UnsetClock() ClockValue { return ClockValue{} }

func AbsentClock(sentinel string) ClockValue {
	return ClockValue{kind: ClockAbsent, value: sentinel}
}

func ClockAt(value string) ClockValue {
	return ClockValue{kind: ClockSet, value: value}
}

// ClockFromString classifies a raw string: empty and "null" are unset,
// sentinels are absent, anything else is a time string.
func ClockFromString(s string) ClockValue {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || strings.EqualFold(s, "null"):
		return UnsetClock()
	case clock.IsSentinel(s):
		return AbsentClock(s)
	default:
		return ClockAt(s)
	}
}

// ClockFromPtr is ClockFromString for nullable columns.
func ClockFromPtr(s *string) ClockValue {
	if s == nil {
		return UnsetClock()
	}
	return ClockFromString(*s)
}

func (c ClockValue) Kind() ClockKind { return c.kind }
func (c ClockValue) IsSet() bool     { return c.kind == ClockSet }

// Value returns the time string, or "" when the value is not set.
func (c ClockValue) Value() string {
	if c.kind != ClockSet {
		return ""
	}
	return c.value
}

// String returns the time string or the sentinel; unset values render as "".
func (c ClockValue) String() string { return c.value }

// Ptr returns nil for unset values.
func (c ClockValue) Ptr() *string {
	if c.kind == ClockUnset {
		return nil
	}
	v := c.value
	return &v
}

func (c ClockValue) MarshalJSON() ([]byte, error) {
	if c.kind == ClockUnset {
		return []byte("null"), nil
	}
	return json.Marshal(c.value)
}

func (c *ClockValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = UnsetClock()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = ClockFromString(s)
	return nil
}

// RawSource identifies where an imported record came from.
type RawSource struct {
	ImportBatchID string
	RowNumber     int
}

// Record is one employee's attendance for one calendar date. Date is the
// record's key within an employee's record set.
type Record struct {
	ID                 string
	EmployeeID         string
	CompanyID          string
	Date               string // YYYY-MM-DD
	ScheduleStart      *string
	ScheduleEnd        *string
	TimeIn             ClockValue
	TimeOut            ClockValue
	BreakStart         *string
	BreakEnd           *string
	LateMinutes        int
	Status             Status
	HoursWorkedMinutes int
	Remarks            string
	CorrectionStatus   CorrectionStatus
	Source             *RawSource // raw records only
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// DTO
	EmployeeName *string
}

func (r Record) Editable() bool {
	return r.CorrectionStatus == CorrectionApproved
}

// EditField names the inline-editable fields of a processed record.
type EditField string

const (
	FieldTimeIn   EditField = "time_in"
	FieldTimeOut  EditField = "time_out"
	FieldSchedule EditField = "schedule"
	FieldBreak    EditField = "break"
)

func (f EditField) IsValid() bool {
	switch f {
	case FieldTimeIn, FieldTimeOut, FieldSchedule, FieldBreak:
		return true
	}
	return false
}

// FieldUpdate is what gets sent to the authoritative store for one edit.
// Composite fields carry their secondary values.
type FieldUpdate struct {
	RecordID      string
	Field         EditField
	Value         *string
	ScheduleStart *string
	ScheduleEnd   *string
	BreakStart    *string
	BreakEnd      *string
}

// RawImportBatch is a set of raw records read from one uploaded file.
type RawImportBatch struct {
	ID         string
	EmployeeID string
	CompanyID  string
	Filename   string
	Records    []Record
}

// OverlayState is the per-date state of an optimistic overlay.
type OverlayState string

const (
	OverlayClean      OverlayState = "clean"
	OverlayPending    OverlayState = "pending_overlay"
	OverlayReconciled OverlayState = "reconciled"
)

// EditOutcome describes what happened to an overlay after an edit event.
type EditOutcome string

const (
	OutcomeStaged     EditOutcome = "staged"
	OutcomeCleared    EditOutcome = "cleared"
	OutcomeRetained   EditOutcome = "retained"
	OutcomeRolledBack EditOutcome = "rolled_back"
	OutcomeStale      EditOutcome = "stale"
)
