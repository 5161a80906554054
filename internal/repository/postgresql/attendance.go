package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-review/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-review/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-review/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// Clock columns are rendered in the branch's local time so they compare
// directly with schedule times.
const processedSelect = `
	SELECT
		a.id, a.employee_id, a.company_id, to_char(a.date, 'YYYY-MM-DD'),
		to_char(COALESCE(a.schedule_start, wst.clock_in_time), 'HH24:MI'),
		to_char(COALESCE(a.schedule_end, wst.clock_out_time), 'HH24:MI'),
		to_char(a.clock_in AT TIME ZONE COALESCE(b.timezone, 'UTC'), 'YYYY-MM-DD HH24:MI:SS'),
		to_char(a.clock_out AT TIME ZONE COALESCE(b.timezone, 'UTC'), 'YYYY-MM-DD HH24:MI:SS'),
		to_char(a.break_start AT TIME ZONE COALESCE(b.timezone, 'UTC'), 'YYYY-MM-DD HH24:MI:SS'),
		to_char(a.break_end AT TIME ZONE COALESCE(b.timezone, 'UTC'), 'YYYY-MM-DD HH24:MI:SS'),
		COALESCE(a.late_minutes, 0), a.status, COALESCE(a.work_hours_in_minutes, 0),
		COALESCE(a.remarks, ''), COALESCE(a.correction_status, ''),
		a.created_at, a.updated_at,
		e.full_name AS employee_name
	FROM attendances a
	JOIN employees e ON e.id = a.employee_id
	LEFT JOIN branches b ON b.id = e.branch_id
	LEFT JOIN work_schedule_times wst ON wst.id = a.work_schedule_time_id
`

func scanProcessed(row pgx.Row) (attendance.Record, error) {
	var (
		rec               attendance.Record
		clockIn, clockOut *string
		status            string
		correction        string
	)
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.CompanyID, &rec.Date,
		&rec.ScheduleStart, &rec.ScheduleEnd,
		&clockIn, &clockOut, &rec.BreakStart, &rec.BreakEnd,
		&rec.LateMinutes, &status, &rec.HoursWorkedMinutes,
		&rec.Remarks, &correction,
		&rec.CreatedAt, &rec.UpdatedAt,
		&rec.EmployeeName,
	)
	if err != nil {
		return attendance.Record{}, err
	}

	// A stored record with no clock value means the value is known to be absent.
	rec.TimeIn = attendance.AbsentClock(clock.NoTimeIn)
	if clockIn != nil {
		rec.TimeIn = attendance.ClockAt(*clockIn)
	}
	rec.TimeOut = attendance.AbsentClock(clock.NoTimeOut)
	if clockOut != nil {
		rec.TimeOut = attendance.ClockAt(*clockOut)
	}
	rec.Status = storedStatus(status, clockIn != nil)
	rec.CorrectionStatus = attendance.CorrectionStatus(correction)
	return rec, nil
}

// storedStatus maps the lowercase status column onto display statuses.
func storedStatus(s string, hasClockIn bool) attendance.Status {
	if status, ok := attendance.ParseStatus(s); ok {
		return status
	}
	switch {
	case s == "holiday":
		return attendance.StatusRestDay
	case hasClockIn:
		return attendance.StatusPresent
	case s == "on_leave":
		return attendance.StatusAbsent
	default:
		return attendance.StatusNoTimeRecords
	}
}

func statusColumn(s attendance.Status) string {
	return strings.ReplaceAll(strings.ToLower(string(s)), " ", "_")
}

func (a *attendanceRepository) queryProcessed(ctx context.Context, query string, args ...interface{}) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanProcessed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListProcessed implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListProcessed(ctx context.Context, filter attendance.RecordFilter, companyID string) ([]attendance.Record, error) {
	query := processedSelect + `
		WHERE a.employee_id = $1 AND a.company_id = $2
		  AND a.date BETWEEN $3 AND $4
		ORDER BY a.date ASC
	`
	records, err := a.queryProcessed(ctx, query, filter.EmployeeID, companyID, filter.StartDate, filter.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list processed attendances: %w", err)
	}
	return records, nil
}

// ListRaw implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListRaw(ctx context.Context, filter attendance.RecordFilter, companyID string) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT DISTINCT ON (r.date)
			r.id, r.employee_id, r.company_id, to_char(r.date, 'YYYY-MM-DD'),
			r.schedule_start, r.schedule_end, r.time_in, r.time_out,
			r.break_start, r.break_end,
			r.late_minutes, r.status, r.hours_worked_minutes, r.remarks,
			r.import_batch_id, r.raw_row, r.created_at
		FROM raw_attendances r
		WHERE r.employee_id = $1 AND r.company_id = $2
		  AND r.date BETWEEN $3 AND $4
		ORDER BY r.date ASC, r.created_at DESC, r.raw_row DESC
	`

	rows, err := q.Query(ctx, query, filter.EmployeeID, companyID, filter.StartDate, filter.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list raw attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var (
			rec             attendance.Record
			timeIn, timeOut *string
			status          string
			source          attendance.RawSource
		)
		if err := rows.Scan(
			&rec.ID, &rec.EmployeeID, &rec.CompanyID, &rec.Date,
			&rec.ScheduleStart, &rec.ScheduleEnd, &timeIn, &timeOut,
			&rec.BreakStart, &rec.BreakEnd,
			&rec.LateMinutes, &status, &rec.HoursWorkedMinutes, &rec.Remarks,
			&source.ImportBatchID, &source.RowNumber, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan raw attendance: %w", err)
		}
		rec.TimeIn = attendance.ClockFromPtr(timeIn)
		rec.TimeOut = attendance.ClockFromPtr(timeOut)
		rec.Status = attendance.Status(status)
		rec.Source = &source
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string, companyID string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := processedSelect + `WHERE a.id = $1 AND a.company_id = $2`

	rec, err := scanProcessed(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance by ID: %w", err)
	}
	return rec, nil
}

// UpdateField implements attendance.AttendanceRepository.
// Times arrive as local HH:MM and are stored on the record's date in the
// branch timezone. The record is flagged for late recalculation.
func (a *attendanceRepository) UpdateField(ctx context.Context, update attendance.FieldUpdate, companyID string) (attendance.Record, error) {
	var (
		setClause string
		args      []interface{}
	)

	switch update.Field {
	case attendance.FieldTimeIn:
		setClause = "clock_in = (a.date + $3::time) AT TIME ZONE COALESCE(b.timezone, 'UTC')"
		args = []interface{}{update.Value}
	case attendance.FieldTimeOut:
		setClause = "clock_out = (a.date + $3::time) AT TIME ZONE COALESCE(b.timezone, 'UTC')"
		args = []interface{}{update.Value}
	case attendance.FieldSchedule:
		setClause = "schedule_start = $3::time, schedule_end = $4::time"
		args = []interface{}{update.ScheduleStart, update.ScheduleEnd}
	case attendance.FieldBreak:
		// NULL keeps a side, an empty string clears it
		setClause = `
			break_start = CASE WHEN $3::text IS NULL THEN a.break_start
				ELSE (a.date + NULLIF($3::text, '')::time) AT TIME ZONE COALESCE(b.timezone, 'UTC') END,
			break_end = CASE WHEN $4::text IS NULL THEN a.break_end
				ELSE (a.date + NULLIF($4::text, '')::time) AT TIME ZONE COALESCE(b.timezone, 'UTC') END`
		args = []interface{}{update.BreakStart, update.BreakEnd}
	default:
		return attendance.Record{}, fmt.Errorf("unsupported field %q", update.Field)
	}

	query := fmt.Sprintf(`
		UPDATE attendances a
		SET %s, needs_recalculation = TRUE, updated_at = NOW()
		FROM employees e
		LEFT JOIN branches b ON b.id = e.branch_id
		WHERE e.id = a.employee_id
		  AND a.id = $1 AND a.company_id = $2
		  AND a.correction_status = 'approved'
	`, setClause)

	var updated attendance.Record
	err := WithTransaction(ctx, a.db, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, append([]interface{}{update.RecordID, companyID}, args...)...)
		if err != nil {
			return fmt.Errorf("failed to update attendance %s: %w", update.Field, err)
		}
		if tag.RowsAffected() == 0 {
			return attendance.ErrRecordNotFound
		}

		updated, err = a.GetByID(ctx, update.RecordID, companyID)
		return err
	})
	if err != nil {
		return attendance.Record{}, err
	}
	return updated, nil
}

// CreateRawBatch implements attendance.AttendanceRepository.
func (a *attendanceRepository) CreateRawBatch(ctx context.Context, batch attendance.RawImportBatch) (int, error) {
	err := WithTransaction(ctx, a.db, func(ctx context.Context, tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1 AND company_id = $2)`,
			batch.EmployeeID, batch.CompanyID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check employee: %w", err)
		}
		if !exists {
			return attendance.ErrEmployeeNotFound
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO raw_attendance_imports (id, employee_id, company_id, filename, record_count)
			VALUES ($1, $2, $3, $4, $5)
		`, batch.ID, batch.EmployeeID, batch.CompanyID, batch.Filename, len(batch.Records))
		if err != nil {
			return fmt.Errorf("failed to create raw import batch: %w", err)
		}

		insert := `
			INSERT INTO raw_attendances (
				import_batch_id, raw_row, employee_id, company_id, date,
				schedule_start, schedule_end, time_in, time_out, break_start, break_end,
				late_minutes, status, hours_worked_minutes, remarks
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`
		pgBatch := &pgx.Batch{}
		for _, rec := range batch.Records {
			rowNumber := 0
			if rec.Source != nil {
				rowNumber = rec.Source.RowNumber
			}
			pgBatch.Queue(insert,
				batch.ID, rowNumber, batch.EmployeeID, batch.CompanyID, rec.Date,
				rec.ScheduleStart, rec.ScheduleEnd, rec.TimeIn.Ptr(), rec.TimeOut.Ptr(), rec.BreakStart, rec.BreakEnd,
				rec.LateMinutes, string(rec.Status), rec.HoursWorkedMinutes, rec.Remarks,
			)
		}

		results := tx.SendBatch(ctx, pgBatch)
		for i := range batch.Records {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("failed to insert raw attendance row %d: %w", i+1, err)
			}
		}
		return results.Close()
	})
	if err != nil {
		return 0, err
	}
	return len(batch.Records), nil
}

// ListPendingRecalculation implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListPendingRecalculation(ctx context.Context, limit int) ([]attendance.Record, error) {
	query := processedSelect + `
		WHERE a.needs_recalculation = TRUE
		ORDER BY a.updated_at ASC
		LIMIT $1
	`
	records, err := a.queryProcessed(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances pending recalculation: %w", err)
	}
	return records, nil
}

// SaveRecalculation implements attendance.AttendanceRepository.
// The flag stays set if the record was edited again after it was read.
func (a *attendanceRepository) SaveRecalculation(ctx context.Context, record attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	_, err := q.Exec(ctx, `
		UPDATE attendances
		SET late_minutes = $1, status = $2, remarks = $3, needs_recalculation = FALSE
		WHERE id = $4 AND company_id = $5 AND updated_at = $6
	`, record.LateMinutes, statusColumn(record.Status), record.Remarks, record.ID, record.CompanyID, record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save recalculated attendance: %w", err)
	}
	return nil
}
