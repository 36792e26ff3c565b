package loginsession

import (
	"fmt"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-attendance-portal/internal/errors"
	"github.com/jrsteele09/go-attendance-portal/sessions"
)

var _ Repo = (*InMemoryLoginSessionRepo)(nil)

// InMemoryLoginSessionRepo is an in-memory implementation of Repo
type InMemoryLoginSessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]sessions.Session
	now      func() time.Time
}

// NewInMemoryLoginSessionRepo creates a new in-memory login session repository
func NewInMemoryLoginSessionRepo() *InMemoryLoginSessionRepo {
	return &InMemoryLoginSessionRepo{
		sessions: make(map[string]sessions.Session),
		now:      time.Now,
	}
}

// Upsert creates or updates a session. Last write wins.
func (r *InMemoryLoginSessionRepo) Upsert(sessionID string, session sessions.Session) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[sessionID] = session
	return nil
}

// Update replaces a session only while it is still stored.
func (r *InMemoryLoginSessionRepo) Update(sessionID string, session sessions.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return apperrors.ErrSessionNotFound
	}
	r.sessions[sessionID] = session
	return nil
}

// Get retrieves a session, dropping it if it has expired
func (r *InMemoryLoginSessionRepo) Get(sessionID string) (sessions.Session, error) {
	if sessionID == "" {
		return sessions.Session{}, apperrors.ErrSessionNotFound
	}

	r.mu.RLock()
	session, ok := r.sessions[sessionID]
	r.mu.RUnlock()

	if !ok {
		return sessions.Session{}, apperrors.ErrSessionNotFound
	}
	if session.Expired(r.now()) {
		_ = r.Delete(sessionID)
		return sessions.Session{}, apperrors.ErrSessionExpired
	}
	return session, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (r *InMemoryLoginSessionRepo) Delete(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

// PurgeExpired removes every expired session and returns how many were dropped.
func (r *InMemoryLoginSessionRepo) PurgeExpired() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	purged := 0
	for id, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, id)
			purged++
		}
	}
	return purged
}
