package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-review/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-review/internal/domain/user"
	"github.com/cmlabs-hris/attendance-review/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Access errors
	case errors.Is(err, user.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid or missing token")
	case errors.Is(err, user.ErrCompanyIDRequired):
		Forbidden(w, "Company membership is required")
	case errors.Is(err, user.ErrManagerAccessRequired):
		Forbidden(w, "Manager or owner access required")

	// Review errors. A failed submission can wrap a missing record, which wins.
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrSessionNotFound):
		NotFound(w, "Review session not found or expired")
	case errors.Is(err, attendance.ErrRecordNotEditable):
		Conflict(w, "Attendance record must be approved before it can be edited")
	case errors.Is(err, attendance.ErrSubmissionFailed):
		BadGateway(w, "Failed to save the edit, changes were reverted")

	// Import errors
	case errors.Is(err, attendance.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, attendance.ErrUnsupportedFile):
		BadRequest(w, "Unsupported file type: only xlsx and xls allowed", nil)
	case errors.Is(err, attendance.ErrUnreadableFile):
		BadRequest(w, "Spreadsheet could not be read", nil)
	case errors.Is(err, attendance.ErrEmptySpreadsheet):
		UnprocessableEntity(w, "EMPTY_SPREADSHEET", "Spreadsheet contains no attendance rows")
	case errors.Is(err, attendance.ErrMissingColumns):
		UnprocessableEntity(w, "MISSING_COLUMNS", err.Error())
	case errors.Is(err, attendance.ErrTooManyRows):
		UnprocessableEntity(w, "TOO_MANY_ROWS", err.Error())

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
