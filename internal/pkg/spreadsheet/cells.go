package spreadsheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// NormalizeHeader lowercases a header and collapses separators to single spaces.
func NormalizeHeader(header string) string {
	header = strings.ToLower(strings.TrimSpace(header))
	header = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(header)
	return strings.Join(strings.Fields(header), " ")
}

// CellValue returns the trimmed cell at idx, or "" when the row is shorter.
func CellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// IsBlankRow reports whether every cell in row is empty.
func IsBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// ParseDate accepts common written date formats and Excel date serials and
// returns the date as YYYY-MM-DD.
func ParseDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		// 1982-01-01 .. 2119-01-01, keeps plain years from parsing as serials
		if serial >= 30000 && serial <= 80000 {
			if parsed, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return parsed.Format("2006-01-02"), true
			}
		}
		return "", false
	}

	for _, layout := range dateFormats {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format("2006-01-02"), true
		}
	}
	return "", false
}

var clockFormats = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
	"03:04 PM",
	"3:04:05 PM",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05Z07:00",
}

// ParseClock accepts written times and Excel day fractions and returns the
// time as 24-hour HH:MM.
func ParseClock(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	if fraction, err := strconv.ParseFloat(value, 64); err == nil {
		// Excel stores a time of day as a fraction of a day, possibly with a date part.
		_, frac := math.Modf(fraction)
		if fraction < 0 || (fraction >= 1 && frac == 0 && !strings.Contains(value, ".")) {
			return "", false
		}
		minutes := int(math.Round(frac*24*60)) % (24 * 60)
		return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), true
	}

	upper := strings.ToUpper(value)
	for _, layout := range clockFormats {
		if parsed, err := time.Parse(layout, upper); err == nil {
			return parsed.Format("15:04"), true
		}
	}
	return "", false
}

// ParseMinutes reads a duration cell where plain numbers count minutes.
// "h:mm", "7h 30m" and "45m" are accepted as well.
func ParseMinutes(value string) (int, bool) {
	return parseDuration(value, 1)
}

// ParseHours reads a duration cell where plain numbers count hours, so "8"
// and "7.5" mean 480 and 450 minutes.
func ParseHours(value string) (int, bool) {
	return parseDuration(value, 60)
}

func parseDuration(value string, unitMinutes float64) (int, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return 0, false
	}

	if h, m, found := strings.Cut(value, ":"); found {
		hours, errH := strconv.Atoi(strings.TrimSpace(h))
		minutes, errM := strconv.Atoi(strings.TrimSpace(m))
		if errH != nil || errM != nil || hours < 0 || minutes < 0 || minutes > 59 {
			return 0, false
		}
		return hours*60 + minutes, true
	}

	if strings.ContainsAny(value, "hm") {
		if d, err := time.ParseDuration(strings.ReplaceAll(value, " ", "")); err == nil && d >= 0 {
			return int(d.Minutes()), true
		}
		return 0, false
	}

	n, err := strconv.ParseFloat(value, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return int(math.Round(n * unitMinutes)), true
}
