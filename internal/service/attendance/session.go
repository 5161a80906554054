package attendance

import (
	"fmt"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-review/internal/domain/attendance"
	"github.com/google/uuid"
)

// Session is one reviewer's view over one employee's date range.
type Session struct {
	ID         string
	CompanyID  string
	UserID     string
	EmployeeID string
	StartDate  string
	EndDate    string
	Ledger     *Ledger

	lastSeen time.Time
}

// SessionStore keeps review sessions in memory.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create registers a new session and assigns it an ID.
func (s *SessionStore) Create(companyID, userID, employeeID, startDate, endDate string, ledger *Ledger) (*Session, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	session := &Session{
		ID:         id.String(),
		CompanyID:  companyID,
		UserID:     userID,
		EmployeeID: employeeID,
		StartDate:  startDate,
		EndDate:    endDate,
		Ledger:     ledger,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session.lastSeen = s.now()
	s.sessions[session.ID] = session
	return session, nil
}

// Get returns the session only to the reviewer who opened it.
func (s *SessionStore) Get(id, companyID, userID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok || session.CompanyID != companyID || session.UserID != userID {
		return nil, attendance.ErrSessionNotFound
	}
	session.lastSeen = s.now()
	return session, nil
}

// OwnedBy reports whether the session exists and was opened by userID.
// It does not count as activity.
func (s *SessionStore) OwnedBy(id, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	return ok && session.UserID == userID
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

// Sweep removes sessions idle for longer than idle and returns their IDs.
func (s *SessionStore) Sweep(idle time.Duration) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	var removed []string
	for id, session := range s.sessions {
		if session.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}
