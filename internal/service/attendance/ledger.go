package attendance

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cmlabs-hris/attendance-review/internal/domain/attendance"
)

// ReconcilePolicy decides whether a successful server response replaces the
// locally computed overlay for a date.
type ReconcilePolicy interface {
	Name() string
	ShouldClear(local, server attendance.Record) bool
}

const (
	PolicyHeuristic   = "heuristic"
	PolicyTrustServer = "trust_server"
)

// HeuristicPolicy clears the overlay only when the server reports lateness
// itself. Otherwise the local computation keeps winning.
type HeuristicPolicy struct{}

func (HeuristicPolicy) Name() string { return PolicyHeuristic }

func (HeuristicPolicy) ShouldClear(_, server attendance.Record) bool {
	return server.LateMinutes > 0 && strings.Contains(server.Remarks, "Late")
}

// TrustServerPolicy always prefers the authoritative response.
type TrustServerPolicy struct{}

func (TrustServerPolicy) Name() string { return PolicyTrustServer }

func (TrustServerPolicy) ShouldClear(_, _ attendance.Record) bool { return true }

// PolicyByName resolves a configured policy name.
func PolicyByName(name string) (ReconcilePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyHeuristic:
		return HeuristicPolicy{}, nil
	case PolicyTrustServer:
		return TrustServerPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown overlay policy %q", name)
}

type overlayEntry struct {
	record attendance.Record
	seq    uint64
}

// Ledger holds one session's authoritative records and optimistic overlays,
// both keyed by date. Every staged edit gets a sequence number; only the
// response carrying the latest sequence for its date may settle the overlay.
type Ledger struct {
	mu        sync.Mutex
	policy    ReconcilePolicy
	records   map[string]attendance.Record
	overlays  map[string]overlayEntry
	sequences map[string]uint64
	states    map[string]attendance.OverlayState
}

func NewLedger(policy ReconcilePolicy) *Ledger {
	if policy == nil {
		policy = HeuristicPolicy{}
	}
	return &Ledger{
		policy:    policy,
		records:   make(map[string]attendance.Record),
		overlays:  make(map[string]overlayEntry),
		sequences: make(map[string]uint64),
		states:    make(map[string]attendance.OverlayState),
	}
}

func (l *Ledger) Policy() ReconcilePolicy { return l.policy }

// Load replaces the authoritative records. Pending overlays survive.
func (l *Ledger) Load(records []attendance.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = make(map[string]attendance.Record, len(records))
	for _, rec := range records {
		l.records[rec.Date] = rec
	}
}

// Authoritative returns the stored record for a date, ignoring overlays.
func (l *Ledger) Authoritative(date string) (attendance.Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[date]
	return rec, ok
}

// Stage stores a candidate overlay and returns its sequence number.
func (l *Ledger) Stage(date string, candidate attendance.Record) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sequences[date]++
	seq := l.sequences[date]
	candidate.Date = date
	l.overlays[date] = overlayEntry{record: candidate, seq: seq}
	l.states[date] = attendance.OverlayPending
	return seq
}

// Confirm settles the overlay for date with a successful server response.
// The server record always becomes the authoritative one. The overlay is
// cleared or retained according to the policy.
func (l *Ledger) Confirm(date string, seq uint64, server attendance.Record) attendance.EditOutcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	if seq != l.sequences[date] {
		return attendance.OutcomeStale
	}
	entry, ok := l.overlays[date]
	if !ok || entry.seq != seq {
		return attendance.OutcomeStale
	}

	server.Date = date
	l.records[date] = server

	if l.policy.ShouldClear(entry.record, server) {
		delete(l.overlays, date)
		l.states[date] = attendance.OverlayClean
		return attendance.OutcomeCleared
	}
	l.states[date] = attendance.OverlayReconciled
	return attendance.OutcomeRetained
}

// Rollback discards the overlay for date after a failed submission.
func (l *Ledger) Rollback(date string, seq uint64) attendance.EditOutcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	if seq != l.sequences[date] {
		return attendance.OutcomeStale
	}
	entry, ok := l.overlays[date]
	if !ok || entry.seq != seq {
		return attendance.OutcomeStale
	}

	delete(l.overlays, date)
	l.states[date] = attendance.OverlayClean
	return attendance.OutcomeRolledBack
}

// State reports the overlay state for a date. Unknown dates are clean.
func (l *Ledger) State(date string) attendance.OverlayState {
	l.mu.Lock()
	defer l.mu.Unlock()

	if state, ok := l.states[date]; ok {
		return state
	}
	return attendance.OverlayClean
}

// DisplayData prefers the overlay, then the authoritative record. Dates with
// neither get an empty record with no time records.
func (l *Ledger) DisplayData(date string) attendance.Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.displayLocked(date)
}

func (l *Ledger) displayLocked(date string) attendance.Record {
	if entry, ok := l.overlays[date]; ok {
		return entry.record
	}
	if rec, ok := l.records[date]; ok {
		return rec
	}
	return attendance.Record{Date: date, Status: attendance.StatusNoTimeRecords}
}

func (l *Ledger) DisplayStatus(date string) attendance.Status {
	return l.DisplayData(date).Status
}

func (l *Ledger) DisplayRemarks(date string) string {
	return l.DisplayData(date).Remarks
}

// Dates lists every date holding a record or an overlay, sorted.
func (l *Ledger) Dates() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]struct{}, len(l.records))
	for date := range l.records {
		seen[date] = struct{}{}
	}
	for date := range l.overlays {
		seen[date] = struct{}{}
	}
	dates := make([]string, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}
