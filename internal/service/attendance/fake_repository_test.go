package attendance

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/attendance-review/internal/domain/attendance"
)

// fakeRepository is an in-memory attendance.AttendanceRepository.
type fakeRepository struct {
	mu        sync.Mutex
	processed []attendance.Record
	raw       []attendance.Record
	pending   []attendance.Record
	saved     map[string]attendance.Record
	saveErr   map[string]error
	batches   []attendance.RawImportBatch
	listErr   error

	// onUpdate, when set, decides the outcome of UpdateField.
	onUpdate func(update attendance.FieldUpdate) (attendance.Record, error)
}

func newFakeRepository(processed ...attendance.Record) *fakeRepository {
	return &fakeRepository{
		processed: processed,
		saved:     make(map[string]attendance.Record),
		saveErr:   make(map[string]error),
	}
}

func inRange(rec attendance.Record, filter attendance.RecordFilter) bool {
	return rec.EmployeeID == filter.EmployeeID && rec.Date >= filter.StartDate && rec.Date <= filter.EndDate
}

func (f *fakeRepository) ListProcessed(ctx context.Context, filter attendance.RecordFilter, companyID string) ([]attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []attendance.Record
	for _, rec := range f.processed {
		if rec.CompanyID == companyID && inRange(rec, filter) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListRaw(ctx context.Context, filter attendance.RecordFilter, companyID string) ([]attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []attendance.Record
	for _, rec := range f.raw {
		if rec.CompanyID == companyID && inRange(rec, filter) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeRepository) GetByID(ctx context.Context, id string, companyID string) (attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.processed {
		if rec.ID == id && rec.CompanyID == companyID {
			return rec, nil
		}
	}
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (f *fakeRepository) UpdateField(ctx context.Context, update attendance.FieldUpdate, companyID string) (attendance.Record, error) {
	if f.onUpdate != nil {
		return f.onUpdate(update)
	}
	current, err := f.GetByID(ctx, update.RecordID, companyID)
	if err != nil {
		return attendance.Record{}, err
	}
	return BuildCandidate(current, update), nil
}

func (f *fakeRepository) CreateRawBatch(ctx context.Context, batch attendance.RawImportBatch) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, batch)
	f.raw = append(f.raw, batch.Records...)
	return len(batch.Records), nil
}

func (f *fakeRepository) ListPendingRecalculation(ctx context.Context, limit int) ([]attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeRepository) SaveRecalculation(ctx context.Context, record attendance.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.saveErr[record.ID]; err != nil {
		return err
	}
	f.saved[record.ID] = record
	return nil
}
