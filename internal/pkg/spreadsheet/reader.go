package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrNoWorksheet       = errors.New("no worksheet found")
	ErrEmptyWorksheet    = errors.New("worksheet is empty")
)

// ReadRows returns the cells of the first worksheet. The format is chosen by
// the filename extension. maxRows bounds how many rows are read from legacy
// .xls files; zero means no bound beyond the reader's default.
func ReadRows(reader io.Reader, filename string, maxRows int) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		return readXLS(data, maxRows)
	case ".xlsx":
		return readXLSX(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func readXLS(data []byte, maxRows int) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls workbook: %w", err)
	}
	if workbook.NumSheets() == 0 {
		return nil, ErrNoWorksheet
	}

	limit := 100000
	if maxRows > 0 {
		// header row plus one past the limit so callers can tell it was exceeded
		limit = maxRows + 2
	}
	rows := workbook.ReadAllCells(limit)
	if len(rows) == 0 {
		return nil, ErrEmptyWorksheet
	}
	return rows, nil
}

func readXLSX(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoWorksheet
	}

	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorksheet
	}
	return rows, nil
}
