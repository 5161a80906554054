package attendance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-review/internal/domain/attendance"
)

// LateRecalculator brings stored late minutes, status and remarks back in
// line with edited clock-in times.
type LateRecalculator struct {
	repo attendance.AttendanceRepository
}

func NewLateRecalculator(repo attendance.AttendanceRepository) *LateRecalculator {
	return &LateRecalculator{repo: repo}
}

// RecalculateEdited processes up to limit pending records and returns how
// many were saved. A failing record is logged and skipped.
func (r *LateRecalculator) RecalculateEdited(ctx context.Context, limit int) (int, error) {
	records, err := r.repo.ListPendingRecalculation(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list records pending recalculation: %w", err)
	}

	saved := 0
	for _, rec := range records {
		applyLateCalculation(&rec)
		if err := r.repo.SaveRecalculation(ctx, rec); err != nil {
			slog.Error("Failed to save recalculated attendance", "attendance_id", rec.ID, "error", err)
			continue
		}
		saved++
	}
	return saved, nil
}
