package attendance

import "errors"

// Attendance review domain errors
var (
	// Record errors
	ErrRecordNotFound    = errors.New("attendance record not found")
	ErrRecordNotEditable = errors.New("attendance record is not approved for inline editing")

	// Session errors
	ErrSessionNotFound  = errors.New("review session not found or expired")
	ErrSubmissionFailed = errors.New("failed to save attendance edit")

	// Import errors
	ErrEmployeeNotFound = errors.New("employee not found in this company")
	ErrUnsupportedFile  = errors.New("unsupported file type: only xlsx and xls allowed")
	ErrUnreadableFile   = errors.New("spreadsheet could not be read")
	ErrEmptySpreadsheet = errors.New("spreadsheet contains no attendance rows")
	ErrMissingColumns   = errors.New("spreadsheet is missing required columns")
	ErrTooManyRows      = errors.New("spreadsheet exceeds the maximum number of rows")
)
