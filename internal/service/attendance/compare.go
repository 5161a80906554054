package attendance

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-review/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-review/internal/pkg/clock"
)

// Differences mentioning any of these are about remarks or metadata, not time.
var nonTimeKeywords = []string{
	"remark",
	"note",
	"comment",
	"description",
	"annotation",
	"import batch",
	"created at",
	"raw row",
}

// FilterTimeDifferences drops remark and metadata differences, keeping order.
func FilterTimeDifferences(differences []string) []string {
	filtered := make([]string, 0, len(differences))
	for _, diff := range differences {
		lower := strings.ToLower(diff)
		keep := true
		for _, keyword := range nonTimeKeywords {
			if strings.Contains(lower, keyword) {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, diff)
		}
	}
	return filtered
}

// NormalizeTimeValue reduces a displayed value to a comparable key. The
// second return is false for empty values and absence sentinels, which all
// compare equal to each other. Parseable times become 24-hour "HHMM", so
// "08:05 AM" and "08:05" normalize alike.
func NormalizeTimeValue(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || s == clock.NoTimeIn || s == clock.NoTimeOut {
		return "", false
	}
	if t, ok := clock.Parse(s); ok {
		return fmt.Sprintf("%02d%02d", t.Hour(), t.Minute()), true
	}

	lower := strings.ToLower(s)
	lower = strings.Join(strings.Fields(lower), "")
	lower = strings.ReplaceAll(lower, ":", "")
	lower = strings.TrimSuffix(strings.TrimSuffix(lower, "am"), "pm")
	return lower, true
}

func sameTimeValue(a, b string) bool {
	normA, presentA := NormalizeTimeValue(a)
	normB, presentB := NormalizeTimeValue(b)
	if presentA != presentB {
		return false
	}
	return normA == normB
}

// RecordsMatchOnTimeOnly compares time in, time out, formatted hours worked
// and formatted lateness. Remarks and metadata never take part.
func RecordsMatchOnTimeOnly(processed, raw *attendance.Record) bool {
	if processed == nil || raw == nil {
		return false
	}
	return sameTimeValue(processed.TimeIn.String(), raw.TimeIn.String()) &&
		sameTimeValue(processed.TimeOut.String(), raw.TimeOut.String()) &&
		sameTimeValue(clock.FormatHoursWorked(processed.HoursWorkedMinutes), clock.FormatHoursWorked(raw.HoursWorkedMinutes)) &&
		sameTimeValue(clock.FormatLateTime(processed.LateMinutes), clock.FormatLateTime(raw.LateMinutes))
}

// DiffRecords lists every discrepancy between a processed and a raw record,
// remarks and metadata included.
func DiffRecords(processed, raw attendance.Record) []string {
	var diffs []string

	addTimeDiff := func(label string, p, r string) {
		if !sameTimeValue(p, r) {
			diffs = append(diffs, fmt.Sprintf("%s: processed %s, raw %s", label, displayOrDash(clock.FormatTo12Hour(p)), displayOrDash(clock.FormatTo12Hour(r))))
		}
	}

	addTimeDiff("Time in", processed.TimeIn.String(), raw.TimeIn.String())
	addTimeDiff("Time out", processed.TimeOut.String(), raw.TimeOut.String())
	if raw.ScheduleStart != nil || raw.ScheduleEnd != nil {
		addTimeDiff("Schedule start", derefString(processed.ScheduleStart), derefString(raw.ScheduleStart))
		addTimeDiff("Schedule end", derefString(processed.ScheduleEnd), derefString(raw.ScheduleEnd))
	}
	addTimeDiff("Break start", breakValue(processed.BreakStart), breakValue(raw.BreakStart))
	addTimeDiff("Break end", breakValue(processed.BreakEnd), breakValue(raw.BreakEnd))

	if p, r := clock.FormatHoursWorked(processed.HoursWorkedMinutes), clock.FormatHoursWorked(raw.HoursWorkedMinutes); p != r {
		diffs = append(diffs, fmt.Sprintf("Hours worked: processed %s, raw %s", p, r))
	}
	if p, r := clock.FormatLateTime(processed.LateMinutes), clock.FormatLateTime(raw.LateMinutes); p != r {
		diffs = append(diffs, fmt.Sprintf("Late: processed %s, raw %s", p, r))
	}
	if processed.Status != raw.Status && raw.Status != "" {
		diffs = append(diffs, fmt.Sprintf("Status: processed %s, raw %s", processed.Status, raw.Status))
	}
	if strings.TrimSpace(processed.Remarks) != strings.TrimSpace(raw.Remarks) {
		diffs = append(diffs, fmt.Sprintf("Remarks: processed %q, raw %q", processed.Remarks, raw.Remarks))
	}
	if raw.Source != nil {
		if !processed.CreatedAt.IsZero() && !raw.CreatedAt.IsZero() && !processed.CreatedAt.Equal(raw.CreatedAt) {
			diffs = append(diffs, fmt.Sprintf("Created at: processed %s, raw %s (import batch %s, raw row %d)",
				processed.CreatedAt.Format("2006-01-02 15:04:05"), raw.CreatedAt.Format("2006-01-02 15:04:05"),
				raw.Source.ImportBatchID, raw.Source.RowNumber))
		}
	}

	return diffs
}

func breakValue(s *string) string {
	if !hasBreakTime(s) {
		return ""
	}
	return *s
}

func displayOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ReconcileStatus applies time-only matching to the reported status. A
// mismatch with no time differences left, or whose time fields match, is
// shown as a match. entry.Differences must already be filtered.
func ReconcileStatus(entry attendance.ComparisonEntry) attendance.ComparisonStatus {
	status := entry.ReportedStatus
	if status == attendance.ComparisonMismatch && len(entry.Differences) == 0 {
		return attendance.ComparisonMatch
	}
	if RecordsMatchOnTimeOnly(entry.Processed, entry.Raw) {
		return attendance.ComparisonMatch
	}
	return status
}

// BuildComparison pairs records by date. With no explicit dates, the union
// of both record sets is used. Entries come back sorted by date.
func BuildComparison(dates []string, processed, raw []attendance.Record) []attendance.ComparisonEntry {
	processedByDate := indexByDate(processed)
	rawByDate := indexByDate(raw)

	if len(dates) == 0 {
		seen := make(map[string]struct{})
		for date := range processedByDate {
			seen[date] = struct{}{}
		}
		for date := range rawByDate {
			seen[date] = struct{}{}
		}
		for date := range seen {
			dates = append(dates, date)
		}
	}
	sorted := append([]string(nil), dates...)
	sort.Strings(sorted)

	entries := make([]attendance.ComparisonEntry, 0, len(sorted))
	for _, date := range sorted {
		entry := attendance.ComparisonEntry{Date: date}
		if rec, ok := processedByDate[date]; ok {
			entry.Processed = &rec
		}
		if rec, ok := rawByDate[date]; ok {
			entry.Raw = &rec
		}

		var diffs []string
		switch {
		case entry.Processed == nil && entry.Raw == nil:
			entry.ReportedStatus = attendance.ComparisonNoData
		case entry.Processed == nil:
			entry.ReportedStatus = attendance.ComparisonMissingProcessed
		case entry.Raw == nil:
			entry.ReportedStatus = attendance.ComparisonMissingRaw
		default:
			diffs = DiffRecords(*entry.Processed, *entry.Raw)
			entry.ReportedStatus = attendance.ComparisonMatch
			if len(diffs) > 0 {
				entry.ReportedStatus = attendance.ComparisonMismatch
			}
		}

		entry.Differences = FilterTimeDifferences(diffs)
		entry.Status = ReconcileStatus(entry)
		entries = append(entries, entry)
	}
	return entries
}

func indexByDate(records []attendance.Record) map[string]attendance.Record {
	byDate := make(map[string]attendance.Record, len(records))
	for _, rec := range records {
		byDate[rec.Date] = rec
	}
	return byDate
}

// DateRange lists every date from start to end inclusive. Invalid input
// yields nil.
func DateRange(start, end string) []string {
	from, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil
	}
	to, err := time.Parse("2006-01-02", end)
	if err != nil || to.Before(from) {
		return nil
	}
	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates
}
