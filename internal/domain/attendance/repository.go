package attendance

import (
	"context"
)

// RecordFilter selects one employee's records over an inclusive date range.
type RecordFilter struct {
	EmployeeID string
	StartDate  string // YYYY-MM-DD
	EndDate    string // YYYY-MM-DD
}

// AttendanceRepository defines data access for processed and raw attendance.
// All methods include companyID to prevent cross-company data access.
type AttendanceRepository interface {
	// ListProcessed retrieves the system-computed records ordered by date
	ListProcessed(ctx context.Context, filter RecordFilter, companyID string) ([]Record, error)

	// ListRaw retrieves imported source records ordered by date.
	// When a date was imported more than once the latest import wins.
	ListRaw(ctx context.Context, filter RecordFilter, companyID string) ([]Record, error)

	// GetByID retrieves a processed record with company isolation
	GetByID(ctx context.Context, id string, companyID string) (Record, error)

	// UpdateField persists a single inline edit and returns the stored record
	UpdateField(ctx context.Context, update FieldUpdate, companyID string) (Record, error)

	// CreateRawBatch stores an imported batch and returns the number of records written
	CreateRawBatch(ctx context.Context, batch RawImportBatch) (int, error)

	// ListPendingRecalculation returns processed records edited since their last recalculation
	ListPendingRecalculation(ctx context.Context, limit int) ([]Record, error)

	// SaveRecalculation stores recomputed late minutes, status and remarks and clears the pending flag
	SaveRecalculation(ctx context.Context, record Record) error
}
