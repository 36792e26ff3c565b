package loginsession

import "github.com/jrsteele09/go-attendance-portal/sessions"

// Repo stores portal sessions keyed by the opaque session cookie value.
type Repo interface {
	Upsert(sessionID string, session sessions.Session) error
	// Update replaces an existing session and fails with ErrSessionNotFound
	// when the id is gone, e.g. after a logout.
	Update(sessionID string, session sessions.Session) error
	Get(sessionID string) (sessions.Session, error)
	Delete(sessionID string) error
}
