package attendance

import (
	"context"
)

// ReviewService defines the attendance review workflow: session-scoped
// display rows with optimistic inline edits, and processed-vs-raw comparison.
type ReviewService interface {
	// OpenSession loads an employee's processed records into a new review session
	OpenSession(ctx context.Context, req OpenSessionRequest) (SessionResponse, error)

	// CloseSession discards a session and any overlay it still holds
	CloseSession(ctx context.Context, sessionID string) error

	// ListRows returns display rows, preferring overlay values over stored ones
	ListRows(ctx context.Context, sessionID string) ([]RowResponse, error)

	// GetRow returns the display row for one date
	GetRow(ctx context.Context, sessionID string, date string) (RowResponse, error)

	// SubmitEdit applies an optimistic overlay and sends the edit to the store
	SubmitEdit(ctx context.Context, req EditFieldRequest) (EditResultResponse, error)

	// Compare pairs processed and raw records per date using time-only matching
	Compare(ctx context.Context, filter ComparisonFilter) (ComparisonResponse, error)

	// ImportRaw reads a spreadsheet of source records and stores it as one batch
	ImportRaw(ctx context.Context, req ImportRawRequest) (ImportRawResponse, error)
}
