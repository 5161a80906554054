package postgresql_test

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/attendance-review/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-review/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-review/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seededEmployee struct {
	CompanyID  string
	EmployeeID string
}

func seedEmployee(t *testing.T, setup *TestDatabaseSetup) seededEmployee {
	t.Helper()
	ctx := context.Background()

	var branchID, scheduleID, employeeID string
	companyID := uuid.NewString()

	err := setup.DB.QueryRow(ctx,
		`INSERT INTO branches (timezone) VALUES ('Asia/Jakarta') RETURNING id`,
	).Scan(&branchID)
	require.NoError(t, err)

	err = setup.DB.QueryRow(ctx,
		`INSERT INTO work_schedule_times (clock_in_time, clock_out_time) VALUES ('08:00', '17:00') RETURNING id`,
	).Scan(&scheduleID)
	require.NoError(t, err)

	err = setup.DB.QueryRow(ctx,
		`INSERT INTO employees (company_id, branch_id, full_name) VALUES ($1, $2, 'Budi Santoso') RETURNING id`,
		companyID, branchID,
	).Scan(&employeeID)
	require.NoError(t, err)

	_, err = setup.DB.Exec(ctx, `
		INSERT INTO attendances (employee_id, company_id, date, work_schedule_time_id,
			clock_in, clock_out, work_hours_in_minutes, late_minutes, status, remarks, correction_status)
		VALUES
			($1, $2, '2024-03-04', $3, '2024-03-04 08:00:00+07', '2024-03-04 17:00:00+07', 540, 0, 'present', 'On Time', 'approved'),
			($1, $2, '2024-03-05', $3, '2024-03-05 08:20:00+07', NULL, 0, 20, 'late', 'Late by 20 minutes', 'reviewed'),
			($1, $2, '2024-03-06', $3, NULL, NULL, 0, 0, 'absent', '', NULL)
	`, employeeID, companyID, scheduleID)
	require.NoError(t, err)

	return seededEmployee{CompanyID: companyID, EmployeeID: employeeID}
}

func TestAttendanceRepository_ListProcessed(t *testing.T) {
	setup := NewTestDatabase(t)
	seed := seedEmployee(t, setup)
	repo := postgresql.NewAttendanceRepository(setup.DB)
	ctx := context.Background()

	filter := attendance.RecordFilter{EmployeeID: seed.EmployeeID, StartDate: "2024-03-01", EndDate: "2024-03-31"}
	records, err := repo.ListProcessed(ctx, filter, seed.CompanyID)
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "2024-03-04", first.Date)
	assert.Equal(t, "2024-03-04 08:00:00", first.TimeIn.Value())
	assert.Equal(t, "08:00", *first.ScheduleStart)
	assert.Equal(t, "17:00", *first.ScheduleEnd)
	assert.Equal(t, attendance.StatusPresent, first.Status)
	assert.True(t, first.Editable())

	second := records[1]
	assert.Equal(t, attendance.StatusLate, second.Status)
	assert.Equal(t, attendance.ClockAbsent, second.TimeOut.Kind())
	assert.Equal(t, clock.NoTimeOut, second.TimeOut.String())
	assert.False(t, second.Editable())

	third := records[2]
	assert.Equal(t, attendance.StatusAbsent, third.Status)
	assert.Equal(t, clock.NoTimeIn, third.TimeIn.String())

	t.Run("other company sees nothing", func(t *testing.T) {
		records, err := repo.ListProcessed(ctx, filter, uuid.NewString())
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestAttendanceRepository_UpdateField(t *testing.T) {
	setup := NewTestDatabase(t)
	seed := seedEmployee(t, setup)
	repo := postgresql.NewAttendanceRepository(setup.DB)
	ctx := context.Background()

	records, err := repo.ListProcessed(ctx, attendance.RecordFilter{
		EmployeeID: seed.EmployeeID, StartDate: "2024-03-04", EndDate: "2024-03-05",
	}, seed.CompanyID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	t.Run("time in is stored in branch local time", func(t *testing.T) {
		value := "08:25"
		updated, err := repo.UpdateField(ctx, attendance.FieldUpdate{
			RecordID: records[0].ID,
			Field:    attendance.FieldTimeIn,
			Value:    &value,
		}, seed.CompanyID)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-04 08:25:00", updated.TimeIn.Value())

		pending, err := repo.ListPendingRecalculation(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, records[0].ID, pending[0].ID)
	})

	t.Run("break sides can be set independently", func(t *testing.T) {
		start := "12:00"
		updated, err := repo.UpdateField(ctx, attendance.FieldUpdate{
			RecordID:   records[0].ID,
			Field:      attendance.FieldBreak,
			BreakStart: &start,
		}, seed.CompanyID)
		require.NoError(t, err)
		require.NotNil(t, updated.BreakStart)
		assert.Equal(t, "2024-03-04 12:00:00", *updated.BreakStart)
		assert.Nil(t, updated.BreakEnd)
	})

	t.Run("record not approved", func(t *testing.T) {
		value := "17:30"
		_, err := repo.UpdateField(ctx, attendance.FieldUpdate{
			RecordID: records[1].ID,
			Field:    attendance.FieldTimeOut,
			Value:    &value,
		}, seed.CompanyID)
		assert.ErrorIs(t, err, attendance.ErrRecordNotFound)
	})
}

func TestAttendanceRepository_SaveRecalculation(t *testing.T) {
	setup := NewTestDatabase(t)
	seed := seedEmployee(t, setup)
	repo := postgresql.NewAttendanceRepository(setup.DB)
	ctx := context.Background()

	records, err := repo.ListProcessed(ctx, attendance.RecordFilter{
		EmployeeID: seed.EmployeeID, StartDate: "2024-03-04", EndDate: "2024-03-04",
	}, seed.CompanyID)
	require.NoError(t, err)
	require.Len(t, records, 1)

	value := "08:25"
	_, err = repo.UpdateField(ctx, attendance.FieldUpdate{
		RecordID: records[0].ID,
		Field:    attendance.FieldTimeIn,
		Value:    &value,
	}, seed.CompanyID)
	require.NoError(t, err)

	pending, err := repo.ListPendingRecalculation(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	rec := pending[0]
	rec.LateMinutes = 25
	rec.Status = attendance.StatusLate
	rec.Remarks = "Late by 25 minutes"
	require.NoError(t, repo.SaveRecalculation(ctx, rec))

	stored, err := repo.GetByID(ctx, rec.ID, seed.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, 25, stored.LateMinutes)
	assert.Equal(t, attendance.StatusLate, stored.Status)
	assert.Equal(t, "Late by 25 minutes", stored.Remarks)

	pending, err = repo.ListPendingRecalculation(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestAttendanceRepository_RawBatch(t *testing.T) {
	setup := NewTestDatabase(t)
	seed := seedEmployee(t, setup)
	repo := postgresql.NewAttendanceRepository(setup.DB)
	ctx := context.Background()

	schedStart, schedEnd := "08:00", "17:00"
	firstBatch := attendance.RawImportBatch{
		ID:         uuid.NewString(),
		EmployeeID: seed.EmployeeID,
		CompanyID:  seed.CompanyID,
		Filename:   "march.xlsx",
		Records: []attendance.Record{
			{
				Date:          "2024-03-04",
				ScheduleStart: &schedStart,
				ScheduleEnd:   &schedEnd,
				TimeIn:        attendance.ClockAt("08:10"),
				TimeOut:       attendance.ClockAt("17:00"),
				LateMinutes:   10,
				Status:        attendance.StatusLate,
				Source:        &attendance.RawSource{RowNumber: 2},
			},
		},
	}

	n, err := repo.CreateRawBatch(ctx, firstBatch)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	secondBatch := firstBatch
	secondBatch.ID = uuid.NewString()
	secondBatch.Records = []attendance.Record{
		{
			Date:    "2024-03-04",
			TimeIn:  attendance.ClockAt("08:00"),
			TimeOut: attendance.UnsetClock(),
			Status:  attendance.StatusPresent,
			Source:  &attendance.RawSource{RowNumber: 5},
		},
	}
	_, err = repo.CreateRawBatch(ctx, secondBatch)
	require.NoError(t, err)

	raw, err := repo.ListRaw(ctx, attendance.RecordFilter{
		EmployeeID: seed.EmployeeID, StartDate: "2024-03-01", EndDate: "2024-03-31",
	}, seed.CompanyID)
	require.NoError(t, err)
	require.Len(t, raw, 1)

	latest := raw[0]
	assert.Equal(t, "08:00", latest.TimeIn.Value())
	assert.Equal(t, attendance.ClockUnset, latest.TimeOut.Kind())
	require.NotNil(t, latest.Source)
	assert.Equal(t, secondBatch.ID, latest.Source.ImportBatchID)
	assert.Equal(t, 5, latest.Source.RowNumber)

	t.Run("unknown employee", func(t *testing.T) {
		batch := firstBatch
		batch.ID = uuid.NewString()
		batch.EmployeeID = uuid.NewString()
		_, err := repo.CreateRawBatch(ctx, batch)
		assert.ErrorIs(t, err, attendance.ErrEmployeeNotFound)
	})
}
