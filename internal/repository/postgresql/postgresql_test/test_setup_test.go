package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/cmlabs-hris/attendance-review/internal/pkg/database"
)

// testSchema holds the subset of the HRIS tables the review service reads,
// plus the raw import tables it owns.
const testSchema = `
	CREATE SCHEMA IF NOT EXISTS attendance_review_test;

	CREATE TABLE IF NOT EXISTS branches (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		timezone TEXT
	);

	CREATE TABLE IF NOT EXISTS employees (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		company_id UUID NOT NULL,
		branch_id UUID REFERENCES branches(id),
		full_name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS work_schedule_times (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		clock_in_time TIME NOT NULL,
		clock_out_time TIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS attendances (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		employee_id UUID NOT NULL REFERENCES employees(id),
		company_id UUID NOT NULL,
		date DATE NOT NULL,
		work_schedule_time_id UUID REFERENCES work_schedule_times(id),
		schedule_start TIME,
		schedule_end TIME,
		clock_in TIMESTAMPTZ,
		clock_out TIMESTAMPTZ,
		break_start TIMESTAMPTZ,
		break_end TIMESTAMPTZ,
		work_hours_in_minutes INT,
		late_minutes INT,
		status TEXT NOT NULL,
		remarks TEXT,
		correction_status TEXT,
		needs_recalculation BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS raw_attendance_imports (
		id UUID PRIMARY KEY,
		employee_id UUID NOT NULL,
		company_id UUID NOT NULL,
		filename TEXT NOT NULL,
		record_count INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS raw_attendances (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		import_batch_id UUID NOT NULL REFERENCES raw_attendance_imports(id),
		raw_row INT NOT NULL,
		employee_id UUID NOT NULL,
		company_id UUID NOT NULL,
		date DATE NOT NULL,
		schedule_start TEXT,
		schedule_end TEXT,
		time_in TEXT,
		time_out TEXT,
		break_start TEXT,
		break_end TEXT,
		late_minutes INT NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT '',
		hours_worked_minutes INT NOT NULL DEFAULT 0,
		remarks TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
	);
`

// TestDatabaseSetup holds a connection to an isolated test schema
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and skips the test when it is not set
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn+sep+"search_path=attendance_review_test", 4, 1)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	setup := &TestDatabaseSetup{DB: db}
	if _, err := db.Exec(ctx, testSchema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}
	if err := setup.TruncateAllTables(ctx); err != nil {
		db.Close()
		t.Fatalf("%v", err)
	}
	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes all rows from the test tables
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"raw_attendances",
		"raw_attendance_imports",
		"attendances",
		"work_schedule_times",
		"employees",
		"branches",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// Close closes the database connection
func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
