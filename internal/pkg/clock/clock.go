// Package clock provides a time-of-day value type and the display formatters
// used by attendance rows. None of the functions in this package return errors
// for malformed input: they fall back to the original string or a zero value.
package clock

import (
	"fmt"
	"strconv"
	"strings"
)

// Sentinel strings meaning "known to be absent", as opposed to an empty value.
const (
	NoTimeIn  = "No time in"
	NoTimeOut = "No time out"
	NoBreak   = "No break"
)

const minutesPerDay = 24 * 60

// IsSentinel reports whether s is one of the absence sentinels.
func IsSentinel(s string) bool {
	switch strings.TrimSpace(s) {
	case NoTimeIn, NoTimeOut, NoBreak:
		return true
	}
	return false
}

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
type TimeOfDay int

// New builds a TimeOfDay, reporting false if hour or minute is out of range.
func New(hour, minute int) (TimeOfDay, bool) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, false
	}
	return TimeOfDay(hour*60 + minute), true
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// String renders the value as 24-hour "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Format12 renders the value as "h:MM AM|PM".
func (t TimeOfDay) Format12() string {
	period := "AM"
	if t.Hour() >= 12 {
		period = "PM"
	}
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute(), period)
}

// Sub returns t-u in minutes. A negative result is wrapped by +24h, so the
// result is always in [0, 1440).
func (t TimeOfDay) Sub(u TimeOfDay) int {
	diff := int(t) - int(u)
	if diff < 0 {
		diff += minutesPerDay
	}
	return diff
}

// StripDate removes a leading "YYYY-MM-DD " or "YYYY-MM-DDT" prefix.
func StripDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 10 && isDate(s[:10]) && (s[10] == 'T' || s[10] == ' ') {
		return strings.TrimSpace(s[11:])
	}
	return s
}

func isDate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, r := range s {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Parse reads a time of day from "HH:MM", "HH:MM:SS", "h:MM AM", or any of
// those behind a date prefix. Seconds and zone suffixes are ignored.
func Parse(s string) (TimeOfDay, bool) {
	s = strings.ToUpper(StripDate(s))
	if s == "" {
		return 0, false
	}

	period := ""
	switch {
	case strings.HasSuffix(s, "AM"):
		period = "AM"
	case strings.HasSuffix(s, "PM"):
		period = "PM"
	}
	if period != "" {
		s = strings.TrimSpace(strings.TrimSuffix(s, period))
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, false
	}
	minute, err := strconv.Atoi(leadingDigits(parts[1]))
	if err != nil {
		return 0, false
	}

	if period != "" {
		if hour < 1 || hour > 12 {
			return 0, false
		}
		hour %= 12
		if period == "PM" {
			hour += 12
		}
	}
	return New(hour, minute)
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// FormatTo12Hour converts a 24-hour time string to "h:MM AM|PM". Empty input,
// sentinels, and anything that does not parse are returned unchanged.
func FormatTo12Hour(s string) string {
	if s == "" || s == NoTimeIn || s == NoTimeOut {
		return s
	}
	t, ok := Parse(s)
	if !ok {
		return s
	}
	return t.Format12()
}

// FormatHoursWorked renders worked minutes. Any day of eight hours or more is
// shown as a flat "8".
func FormatHoursWorked(minutes int) string {
	if minutes <= 0 {
		return "0"
	}
	if minutes >= 8*60 {
		return "8"
	}
	hours, rest := minutes/60, minutes%60
	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", rest)
	case rest == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh %dm", hours, rest)
	}
}

// FormatLateTime renders late minutes, "On time" when not late.
func FormatLateTime(lateMinutes int) string {
	if lateMinutes <= 0 {
		return "On time"
	}
	if lateMinutes < 60 {
		return fmt.Sprintf("%dm late", lateMinutes)
	}
	hours, rest := lateMinutes/60, lateMinutes%60
	if rest == 0 {
		return fmt.Sprintf("%dh late", hours)
	}
	return fmt.Sprintf("%dh %dm late", hours, rest)
}

// FormatDuration renders a duration badge such as "45m", "1h" or "1h 15m".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	hours, rest := minutes/60, minutes%60
	if rest == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, rest)
}
