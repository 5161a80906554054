package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-review/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-review/internal/domain/user"
	"github.com/cmlabs-hris/attendance-review/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-review/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/attendance-review/internal/pkg/sse"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

// Session events published to the review stream.
const (
	EventOverlayStaged     = "overlay_staged"
	EventOverlayCleared    = "overlay_cleared"
	EventOverlayRetained   = "overlay_retained"
	EventOverlayRolledBack = "overlay_rolled_back"
	EventStaleResponse     = "stale_response"
	EventSessionClosed     = "session_closed"
)

type ReviewServiceImpl struct {
	attendance.AttendanceRepository
	sessions      *SessionStore
	hub           *sse.Hub
	jwtService    jwt.Service
	policy        ReconcilePolicy
	maxImportRows int
}

func NewReviewService(
	attendanceRepo attendance.AttendanceRepository,
	sessions *SessionStore,
	hub *sse.Hub,
	jwtService jwt.Service,
	policy ReconcilePolicy,
	maxImportRows int,
) attendance.ReviewService {
	if policy == nil {
		policy = HeuristicPolicy{}
	}
	return &ReviewServiceImpl{
		AttendanceRepository: attendanceRepo,
		sessions:             sessions,
		hub:                  hub,
		jwtService:           jwtService,
		policy:               policy,
		maxImportRows:        maxImportRows,
	}
}

type reviewerClaims struct {
	userID    string
	companyID string
}

func claimsFromContext(ctx context.Context) (reviewerClaims, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return reviewerClaims{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return reviewerClaims{}, fmt.Errorf("%w: company_id claim is missing or invalid", user.ErrInvalidToken)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return reviewerClaims{}, fmt.Errorf("%w: user_id claim is missing or invalid", user.ErrInvalidToken)
	}

	return reviewerClaims{userID: userID, companyID: companyID}, nil
}

func (s *ReviewServiceImpl) session(ctx context.Context, sessionID string) (*Session, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.sessions.Get(sessionID, claims.companyID, claims.userID)
}

// OpenSession implements attendance.ReviewService.
func (s *ReviewServiceImpl) OpenSession(ctx context.Context, req attendance.OpenSessionRequest) (attendance.SessionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SessionResponse{}, err
	}

	claims, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.SessionResponse{}, err
	}

	records, err := s.AttendanceRepository.ListProcessed(ctx, attendance.RecordFilter{
		EmployeeID: req.EmployeeID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	}, claims.companyID)
	if err != nil {
		return attendance.SessionResponse{}, fmt.Errorf("failed to list processed attendance: %w", err)
	}

	ledger := NewLedger(s.policy)
	ledger.Load(records)

	session, err := s.sessions.Create(claims.companyID, claims.userID, req.EmployeeID, req.StartDate, req.EndDate, ledger)
	if err != nil {
		return attendance.SessionResponse{}, err
	}

	streamToken, expiresIn, err := s.jwtService.GenerateStreamToken(session.ID, claims.userID)
	if err != nil {
		s.sessions.Delete(session.ID)
		return attendance.SessionResponse{}, fmt.Errorf("failed to generate stream token: %w", err)
	}

	slog.Info("Review session opened",
		"session_id", session.ID,
		"employee_id", req.EmployeeID,
		"company_id", claims.companyID,
		"records", len(records),
	)

	return attendance.SessionResponse{
		SessionID:       session.ID,
		EmployeeID:      req.EmployeeID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		OverlayPolicy:   s.policy.Name(),
		StreamToken:     streamToken,
		StreamExpiresIn: expiresIn,
		Rows:            s.rows(session),
	}, nil
}

// CloseSession implements attendance.ReviewService.
func (s *ReviewServiceImpl) CloseSession(ctx context.Context, sessionID string) error {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return err
	}

	s.sessions.Delete(session.ID)
	s.hub.Publish(session.ID, sse.Event{Event: EventSessionClosed})
	s.hub.Close(session.ID)
	return nil
}

// ListRows implements attendance.ReviewService.
func (s *ReviewServiceImpl) ListRows(ctx context.Context, sessionID string) ([]attendance.RowResponse, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.rows(session), nil
}

// GetRow implements attendance.ReviewService.
func (s *ReviewServiceImpl) GetRow(ctx context.Context, sessionID string, date string) (attendance.RowResponse, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return attendance.RowResponse{}, err
	}
	if date < session.StartDate || date > session.EndDate {
		return attendance.RowResponse{}, attendance.ErrRecordNotFound
	}
	return toRowResponse(session.Ledger.DisplayData(date), session.Ledger.State(date)), nil
}

// rows lists every date of the session range, with placeholders for dates
// that have no record.
func (s *ReviewServiceImpl) rows(session *Session) []attendance.RowResponse {
	dates := DateRange(session.StartDate, session.EndDate)
	rows := make([]attendance.RowResponse, 0, len(dates))
	for _, date := range dates {
		rows = append(rows, toRowResponse(session.Ledger.DisplayData(date), session.Ledger.State(date)))
	}
	return rows
}

// SubmitEdit implements attendance.ReviewService.
func (s *ReviewServiceImpl) SubmitEdit(ctx context.Context, req attendance.EditFieldRequest) (attendance.EditResultResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EditResultResponse{}, err
	}

	claims, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.EditResultResponse{}, err
	}

	session, err := s.sessions.Get(req.SessionID, claims.companyID, claims.userID)
	if err != nil {
		return attendance.EditResultResponse{}, err
	}
	ledger := session.Ledger

	stored, ok := ledger.Authoritative(req.Date)
	if !ok {
		return attendance.EditResultResponse{}, attendance.ErrRecordNotFound
	}
	if !stored.Editable() {
		return attendance.EditResultResponse{}, attendance.ErrRecordNotEditable
	}

	update := toFieldUpdate(stored.ID, req)
	candidate := BuildCandidate(ledger.DisplayData(req.Date), update)
	seq := ledger.Stage(req.Date, candidate)
	s.publishEdit(session.ID, EventOverlayStaged, req, seq, attendance.OutcomeStaged)

	saved, err := s.AttendanceRepository.UpdateField(ctx, update, claims.companyID)
	if err != nil {
		outcome := ledger.Rollback(req.Date, seq)
		slog.Error("Failed to save attendance edit",
			"session_id", session.ID,
			"attendance_id", stored.ID,
			"field", req.Field,
			"sequence", seq,
			"outcome", outcome,
			"error", err,
		)
		if outcome == attendance.OutcomeRolledBack {
			s.publishEdit(session.ID, EventOverlayRolledBack, req, seq, outcome)
		}
		return attendance.EditResultResponse{}, fmt.Errorf("%w: %w", attendance.ErrSubmissionFailed, err)
	}

	outcome := ledger.Confirm(req.Date, seq, saved)
	switch outcome {
	case attendance.OutcomeCleared:
		s.publishEdit(session.ID, EventOverlayCleared, req, seq, outcome)
	case attendance.OutcomeRetained:
		slog.Warn("Kept local attendance values over stored record",
			"session_id", session.ID,
			"attendance_id", stored.ID,
			"date", req.Date,
			"policy", s.policy.Name(),
			"stored_late_minutes", saved.LateMinutes,
			"stored_remarks", saved.Remarks,
		)
		s.publishEdit(session.ID, EventOverlayRetained, req, seq, outcome)
	case attendance.OutcomeStale:
		s.publishEdit(session.ID, EventStaleResponse, req, seq, outcome)
	}

	state := ledger.State(req.Date)
	return attendance.EditResultResponse{
		Date:         req.Date,
		Field:        req.Field,
		Sequence:     seq,
		Outcome:      outcome,
		OverlayState: state,
		Row:          toRowResponse(ledger.DisplayData(req.Date), state),
	}, nil
}

func (s *ReviewServiceImpl) publishEdit(sessionID, event string, req attendance.EditFieldRequest, seq uint64, outcome attendance.EditOutcome) {
	s.hub.Publish(sessionID, sse.Event{
		Event: event,
		Data: map[string]interface{}{
			"date":     req.Date,
			"field":    req.Field,
			"sequence": seq,
			"outcome":  outcome,
		},
	})
}

// Compare implements attendance.ReviewService.
func (s *ReviewServiceImpl) Compare(ctx context.Context, filter attendance.ComparisonFilter) (attendance.ComparisonResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ComparisonResponse{}, err
	}

	claims, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.ComparisonResponse{}, err
	}

	recordFilter := attendance.RecordFilter{
		EmployeeID: filter.EmployeeID,
		StartDate:  filter.StartDate,
		EndDate:    filter.EndDate,
	}

	processed, err := s.AttendanceRepository.ListProcessed(ctx, recordFilter, claims.companyID)
	if err != nil {
		return attendance.ComparisonResponse{}, fmt.Errorf("failed to list processed attendance: %w", err)
	}

	raw, err := s.AttendanceRepository.ListRaw(ctx, recordFilter, claims.companyID)
	if err != nil {
		return attendance.ComparisonResponse{}, fmt.Errorf("failed to list raw attendance: %w", err)
	}

	entries := BuildComparison(DateRange(filter.StartDate, filter.EndDate), processed, raw)
	return toComparisonResponse(filter, entries), nil
}

// ImportRaw implements attendance.ReviewService.
func (s *ReviewServiceImpl) ImportRaw(ctx context.Context, req attendance.ImportRawRequest) (attendance.ImportRawResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ImportRawResponse{}, err
	}

	claims, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.ImportRawResponse{}, err
	}

	rows, err := spreadsheet.ReadRows(req.File, req.Filename, s.maxImportRows)
	if err != nil {
		return attendance.ImportRawResponse{}, mapSpreadsheetError(err)
	}

	records, skipped, err := ParseRawRows(rows, req.EmployeeID, s.maxImportRows)
	if err != nil {
		return attendance.ImportRawResponse{}, err
	}

	batchID, err := uuid.NewV7()
	if err != nil {
		return attendance.ImportRawResponse{}, fmt.Errorf("failed to generate import batch id: %w", err)
	}
	for i := range records {
		records[i].CompanyID = claims.companyID
		records[i].Source.ImportBatchID = batchID.String()
	}

	imported, err := s.AttendanceRepository.CreateRawBatch(ctx, attendance.RawImportBatch{
		ID:         batchID.String(),
		EmployeeID: req.EmployeeID,
		CompanyID:  claims.companyID,
		Filename:   req.Filename,
		Records:    records,
	})
	if err != nil {
		return attendance.ImportRawResponse{}, fmt.Errorf("failed to store raw attendance batch: %w", err)
	}

	slog.Info("Raw attendance imported",
		"batch_id", batchID.String(),
		"employee_id", req.EmployeeID,
		"company_id", claims.companyID,
		"records", imported,
		"skipped", len(skipped),
	)

	if skipped == nil {
		skipped = []attendance.SkippedRow{}
	}
	return attendance.ImportRawResponse{
		BatchID:         batchID.String(),
		EmployeeID:      req.EmployeeID,
		Filename:        req.Filename,
		RowsRead:        len(rows) - 1,
		RecordsImported: imported,
		Skipped:         skipped,
	}, nil
}

// SessionSweeper evicts idle review sessions and disconnects their streams.
type SessionSweeper struct {
	sessions *SessionStore
	hub      *sse.Hub
}

func NewSessionSweeper(sessions *SessionStore, hub *sse.Hub) *SessionSweeper {
	return &SessionSweeper{sessions: sessions, hub: hub}
}

// SweepSessions returns how many sessions were removed.
func (s *SessionSweeper) SweepSessions(idle time.Duration) int {
	removed := s.sessions.Sweep(idle)
	for _, id := range removed {
		s.hub.Publish(id, sse.Event{Event: EventSessionClosed})
		s.hub.Close(id)
	}
	return len(removed)
}
