package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &cells))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadRows_XLSX(t *testing.T) {
	buf := buildWorkbook(t, [][]string{
		{"Date", "Time In", "Time Out"},
		{"2024-03-04", "08:10", "17:00"},
	})

	rows, err := ReadRows(buf, "march.XLSX", 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Date", "Time In", "Time Out"}, rows[0])
	assert.Equal(t, "08:10", rows[1][1])
}

func TestReadRows_EmptyWorksheet(t *testing.T) {
	buf := buildWorkbook(t, nil)

	_, err := ReadRows(buf, "empty.xlsx", 0)
	assert.ErrorIs(t, err, ErrEmptyWorksheet)
}

func TestReadRows_UnsupportedFormat(t *testing.T) {
	_, err := ReadRows(strings.NewReader("date,time in"), "march.csv", 0)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadRows_CorruptWorkbook(t *testing.T) {
	_, err := ReadRows(strings.NewReader("not a zip"), "march.xlsx", 0)
	assert.Error(t, err)
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "time in", NormalizeHeader("  Time_In "))
	assert.Equal(t, "break start", NormalizeHeader("Break-Start"))
	assert.Equal(t, "late minutes", NormalizeHeader("LATE   MINUTES"))
}

func TestCellValue(t *testing.T) {
	row := []string{" a ", "b"}
	assert.Equal(t, "a", CellValue(row, 0))
	assert.Equal(t, "", CellValue(row, 5))
	assert.Equal(t, "", CellValue(row, -1))
}

func TestIsBlankRow(t *testing.T) {
	assert.True(t, IsBlankRow(nil))
	assert.True(t, IsBlankRow([]string{"", "  "}))
	assert.False(t, IsBlankRow([]string{"", "x"}))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"2024-03-04", "2024-03-04", true},
		{"2024/03/04", "2024-03-04", true},
		{"Mar 4, 2024", "2024-03-04", true},
		{"45355", "2024-03-04", true},
		{"2024", "", false},
		{"", "", false},
		{"yesterday", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"08:10", "08:10", true},
		{"8:10", "08:10", true},
		{"17:00:59", "17:00", true},
		{"5:30 pm", "17:30", true},
		{"2024-03-04 08:10:00", "08:10", true},
		{"0.5", "12:00", true},
		{"45355.75", "18:00", true},
		{"8", "", false},
		{"No time in", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseClock(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMinutesAndHours(t *testing.T) {
	minutes, ok := ParseMinutes("25")
	assert.True(t, ok)
	assert.Equal(t, 25, minutes)

	minutes, ok = ParseMinutes("1:05")
	assert.True(t, ok)
	assert.Equal(t, 65, minutes)

	minutes, ok = ParseHours("8")
	assert.True(t, ok)
	assert.Equal(t, 480, minutes)

	minutes, ok = ParseHours("7.5")
	assert.True(t, ok)
	assert.Equal(t, 450, minutes)

	minutes, ok = ParseHours("7h 30m")
	assert.True(t, ok)
	assert.Equal(t, 450, minutes)

	_, ok = ParseMinutes("-3")
	assert.False(t, ok)

	_, ok = ParseHours("1:75")
	assert.False(t, ok)
}
