// Package sessions tracks in-flight verification runs. At most one live
// session exists per submission id.
package sessions

import (
	"fmt"
	"sync"
	"time"

	"github.com/JaimeStill/warden/internal/progress"
)

// Session is the transient record of one verification run.
type Session struct {
	SubmissionID string         `json:"submission_id"`
	UserID       string         `json:"user_id"`
	Stage        progress.Stage `json:"stage"`
	Progress     int            `json:"progress"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Registry holds live sessions keyed by submission id.
type Registry interface {
	// Register creates a queued session. Returns ErrActive if one is live.
	Register(submissionID, userID string) (Session, error)
	// Advance moves the session to stage and returns the recorded progress,
	// which never decreases.
	Advance(submissionID string, stage progress.Stage, pct int) (int, error)
	// Find returns a copy of the live session.
	Find(submissionID string) (Session, error)
	// Clear removes the session. Clearing a missing id is a no-op.
	Clear(submissionID string)
}

type memory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// New creates an in-memory Registry.
func New() Registry {
	return &memory{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

func (m *memory) Register(submissionID, userID string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[submissionID]; ok {
		return Session{}, fmt.Errorf("%w: %s", ErrActive, submissionID)
	}

	s := &Session{
		SubmissionID: submissionID,
		UserID:       userID,
		Stage:        progress.Queued,
		Progress:     progress.Queued.Percent(),
		CreatedAt:    m.now().UTC(),
	}
	m.sessions[submissionID] = s
	return *s, nil
}

func (m *memory) Advance(submissionID string, stage progress.Stage, pct int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[submissionID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, submissionID)
	}

	s.Stage = stage
	s.Progress = min(max(s.Progress, pct), 100)
	return s.Progress, nil
}

func (m *memory) Find(submissionID string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[submissionID]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, submissionID)
	}
	return *s, nil
}

func (m *memory) Clear(submissionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, submissionID)
}
