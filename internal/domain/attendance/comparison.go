package attendance

type ComparisonStatus string

const (
	ComparisonMatch            ComparisonStatus = "match"
	ComparisonMismatch         ComparisonStatus = "mismatch"
	ComparisonMissingRaw       ComparisonStatus = "missing_raw"
	ComparisonMissingProcessed ComparisonStatus = "missing_processed"
	ComparisonNoData           ComparisonStatus = "no_data"
)

func (s ComparisonStatus) IsValid() bool {
	switch s {
	case ComparisonMatch, ComparisonMismatch, ComparisonMissingRaw, ComparisonMissingProcessed, ComparisonNoData:
		return true
	}
	return false
}

// ComparisonEntry pairs the processed and raw record for one date. A nil
// side means no record exists for that date. ReportedStatus is derived from
// the full difference list; Status is the value after time-only reconciliation.
type ComparisonEntry struct {
	Date           string
	Processed      *Record
	Raw            *Record
	ReportedStatus ComparisonStatus
	Status         ComparisonStatus
	Differences    []string
}

type BreakStatus string

const (
	BreakComplete     BreakStatus = "complete"
	BreakMissingStart BreakStatus = "missing_start"
	BreakMissingEnd   BreakStatus = "missing_end"
	BreakMissingBoth  BreakStatus = "missing_both"
)

type WarningLevel string

const (
	WarningNone    WarningLevel = "none"
	WarningWarning WarningLevel = "warning"
	WarningError   WarningLevel = "error"
)
