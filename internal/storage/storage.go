package storage

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vanha-creative/autonamer/internal/models"
)

// Session is one analysis run and its editable groups.
type Session struct {
	ID        string            `json:"id"`
	Inputs    models.UserInputs `json:"inputs"`
	CreatedAt time.Time         `json:"created_at"`

	store *GroupStore
	mu    sync.Mutex
}

// NewSession wraps store in a session with a fresh id.
func NewSession(inputs models.UserInputs, store *GroupStore) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Inputs:    inputs,
		CreatedAt: time.Now(),
		store:     store,
	}
}

// Do runs fn with exclusive access to the session's group store.
func (s *Session) Do(fn func(store *GroupStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.store)
}

// SessionStore keeps analysis sessions by id and tracks the current one.
type SessionStore struct {
	sessions map[string]*Session
	current  string
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
	}
}

func (s *SessionStore) Get(sessionID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

// MaxSessions is how many sessions are kept. Set evicts the oldest beyond it.
const MaxSessions = 5

// Set stores session and makes it the current one.
func (s *SessionStore) Set(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	s.current = session.ID

	for len(s.sessions) > MaxSessions {
		var oldest *Session
		for id, v := range s.sessions {
			if id == s.current {
				continue
			}
			if oldest == nil || v.CreatedAt.Before(oldest.CreatedAt) {
				oldest = v
			}
		}
		slog.Debug("Evicting session", "session_id", oldest.ID)
		delete(s.sessions, oldest.ID)
	}
}

// Current returns the most recently stored session.
func (s *SessionStore) Current() (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[s.current]
	if !ok {
		return nil, ErrNotReady
	}
	return session, nil
}

// List returns all sessions, oldest first.
func (s *SessionStore) List() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Session, 0, len(s.sessions))
	for _, v := range s.sessions {
		result = append(result, v)
	}
	slices.SortFunc(result, func(a, b *Session) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return result
}

func (s *SessionStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	delete(s.sessions, sessionID)
	if s.current == sessionID {
		s.current = ""
	}
	return nil
}
