package attendance

import (
	"sync"
	"testing"

	"github.com/cmlabs-hris/attendance-review/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = "2024-03-04"

func approvedRecord() attendance.Record {
	return attendance.Record{
		ID:               "att-1",
		Date:             day,
		ScheduleStart:    strPtr("08:00"),
		ScheduleEnd:      strPtr("17:00"),
		TimeIn:           attendance.ClockAt("08:00"),
		TimeOut:          attendance.ClockAt("17:00"),
		Status:           attendance.StatusPresent,
		Remarks:          "On Time",
		CorrectionStatus: attendance.CorrectionApproved,
	}
}

func lateCandidate() attendance.Record {
	rec := approvedRecord()
	rec.TimeIn = attendance.ClockAt("08:20")
	applyLateCalculation(&rec)
	return rec
}

func TestLedger_DisplayPrefersOverlay(t *testing.T) {
	l := NewLedger(HeuristicPolicy{})
	l.Load([]attendance.Record{approvedRecord()})

	assert.Equal(t, attendance.StatusPresent, l.DisplayStatus(day))
	assert.Equal(t, attendance.OverlayClean, l.State(day))

	l.Stage(day, lateCandidate())

	assert.Equal(t, attendance.OverlayPending, l.State(day))
	assert.Equal(t, attendance.StatusLate, l.DisplayStatus(day))
	assert.Equal(t, "Late by 20 minutes", l.DisplayRemarks(day))
	assert.Equal(t, 20, l.DisplayData(day).LateMinutes)

	stored, ok := l.Authoritative(day)
	require.True(t, ok)
	assert.Equal(t, attendance.StatusPresent, stored.Status)
}

func TestLedger_DisplayDefaultForUnknownDate(t *testing.T) {
	l := NewLedger(nil)

	rec := l.DisplayData("2024-03-09")
	assert.Equal(t, "2024-03-09", rec.Date)
	assert.Equal(t, attendance.StatusNoTimeRecords, rec.Status)
	assert.False(t, rec.Editable())
}

func TestLedger_RollbackRestoresStoredValues(t *testing.T) {
	l := NewLedger(HeuristicPolicy{})
	l.Load([]attendance.Record{approvedRecord()})

	seq := l.Stage(day, lateCandidate())
	require.Equal(t, attendance.StatusLate, l.DisplayStatus(day))

	assert.Equal(t, attendance.OutcomeRolledBack, l.Rollback(day, seq))
	assert.Equal(t, attendance.OverlayClean, l.State(day))
	assert.Equal(t, attendance.StatusPresent, l.DisplayStatus(day))
	assert.Equal(t, "On Time", l.DisplayRemarks(day))
}

func TestLedger_HeuristicPolicy(t *testing.T) {
	t.Run("server reports lateness, overlay cleared", func(t *testing.T) {
		l := NewLedger(HeuristicPolicy{})
		l.Load([]attendance.Record{approvedRecord()})
		seq := l.Stage(day, lateCandidate())

		server := lateCandidate()
		server.Remarks = "Late by 20 minutes (corrected)"
		assert.Equal(t, attendance.OutcomeCleared, l.Confirm(day, seq, server))
		assert.Equal(t, attendance.OverlayClean, l.State(day))
		assert.Equal(t, "Late by 20 minutes (corrected)", l.DisplayRemarks(day))
	})

	t.Run("server disagrees, overlay retained", func(t *testing.T) {
		l := NewLedger(HeuristicPolicy{})
		l.Load([]attendance.Record{approvedRecord()})
		seq := l.Stage(day, lateCandidate())

		server := approvedRecord()
		server.TimeIn = attendance.ClockAt("08:20")
		assert.Equal(t, attendance.OutcomeRetained, l.Confirm(day, seq, server))
		assert.Equal(t, attendance.OverlayReconciled, l.State(day))
		assert.Equal(t, attendance.StatusLate, l.DisplayStatus(day))

		stored, _ := l.Authoritative(day)
		assert.Equal(t, "08:20", stored.TimeIn.Value())
	})
}

func TestLedger_TrustServerPolicy(t *testing.T) {
	l := NewLedger(TrustServerPolicy{})
	l.Load([]attendance.Record{approvedRecord()})
	seq := l.Stage(day, lateCandidate())

	server := approvedRecord()
	server.TimeIn = attendance.ClockAt("08:20")
	assert.Equal(t, attendance.OutcomeCleared, l.Confirm(day, seq, server))
	assert.Equal(t, attendance.StatusPresent, l.DisplayStatus(day))
}

func TestLedger_StaleResponsesAreDiscarded(t *testing.T) {
	l := NewLedger(TrustServerPolicy{})
	l.Load([]attendance.Record{approvedRecord()})

	first := l.Stage(day, lateCandidate())
	second := l.Stage(day, lateCandidate())
	assert.Greater(t, second, first)

	// the older request fails after the newer one was staged
	assert.Equal(t, attendance.OutcomeStale, l.Rollback(day, first))
	assert.Equal(t, attendance.OverlayPending, l.State(day))
	assert.Equal(t, attendance.StatusLate, l.DisplayStatus(day))

	// and an older success cannot clear the newer overlay either
	assert.Equal(t, attendance.OutcomeStale, l.Confirm(day, first, approvedRecord()))
	assert.Equal(t, attendance.OverlayPending, l.State(day))

	assert.Equal(t, attendance.OutcomeCleared, l.Confirm(day, second, lateCandidate()))
	assert.Equal(t, attendance.OutcomeStale, l.Confirm(day, second, lateCandidate()))
}

func TestLedger_SequencesArePerDate(t *testing.T) {
	l := NewLedger(nil)

	a := l.Stage("2024-03-04", approvedRecord())
	b := l.Stage("2024-03-05", approvedRecord())
	assert.Equal(t, uint64(1), a)
	assert.Equal(t, uint64(1), b)
	assert.Equal(t, "2024-03-05", l.DisplayData("2024-03-05").Date)
}

func TestLedger_ConcurrentStage(t *testing.T) {
	l := NewLedger(nil)
	l.Load([]attendance.Record{approvedRecord()})

	var wg sync.WaitGroup
	seqs := make(chan uint64, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seqs <- l.Stage(day, lateCandidate())
		}()
	}
	wg.Wait()
	close(seqs)

	seen := make(map[uint64]bool)
	for seq := range seqs {
		assert.False(t, seen[seq], "sequence %d issued twice", seq)
		seen[seq] = true
	}
	assert.Len(t, seen, 50)
	assert.Equal(t, []string{day}, l.Dates())
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("")
	require.NoError(t, err)
	assert.Equal(t, PolicyHeuristic, p.Name())

	p, err = PolicyByName("TRUST_SERVER")
	require.NoError(t, err)
	assert.Equal(t, PolicyTrustServer, p.Name())

	_, err = PolicyByName("optimistic")
	assert.Error(t, err)
}
