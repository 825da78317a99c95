// Package session runs career assessments end to end: it draws a
// non-repeating question set for a user, keeps the drawn session until the
// answers arrive, then scores the answers and recommends courses.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/p-n-ai/career-guide/internal/assessment"
)

var (
	// ErrNotFound is returned when a session does not exist or has expired.
	ErrNotFound = errors.New("session not found")
	// ErrUnknownStream is returned for a stream the question bank does not carry.
	ErrUnknownStream = errors.New("unknown stream")
	// ErrEmptyUserID is returned when a session is started without a user.
	ErrEmptyUserID = errors.New("user id is required")
	// ErrAlreadyCompleted is returned when answers are submitted twice.
	ErrAlreadyCompleted = errors.New("session already completed")
	// ErrNotCompleted is returned when a result is requested before answers arrive.
	ErrNotCompleted = errors.New("session not completed")
)

// Session is one drawn set of questions awaiting answers. Reset is true when
// the user's seen history was cleared to draw this set.
type Session struct {
	ID        string                `json:"id"`
	UserID    string                `json:"user_id"`
	Stream    assessment.Stream     `json:"stream"`
	Questions []assessment.Question `json:"questions"`
	Reset     bool                  `json:"reset"`
	StartedAt time.Time             `json:"started_at"`
	Result    *Result               `json:"result,omitempty"`
}

// Completed reports whether answers have been scored for the session.
func (s *Session) Completed() bool {
	return s.Result != nil
}

// Result is the scored outcome of a completed session.
type Result struct {
	SessionID       string                            `json:"session_id"`
	UserID          string                            `json:"user_id"`
	Stream          assessment.Stream                 `json:"stream"`
	Answered        int                               `json:"answered"`
	Scores          map[string]int                    `json:"scores"`
	TopTraits       []assessment.TraitScore           `json:"top_traits"`
	Recommendations []assessment.CourseRecommendation `json:"recommendations"`
	CompletedAt     time.Time                         `json:"completed_at"`
}

// Store persists sessions between drawing questions and scoring answers.
// Complete attaches a result only if the session has none yet, returning
// ErrAlreadyCompleted otherwise.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Complete(ctx context.Context, id string, res *Result) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	sessions map[string]Session
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
	}
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Complete(_ context.Context, id string, res *Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if s.Completed() {
		return ErrAlreadyCompleted
	}
	s.Result = res
	m.sessions[id] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
