package server

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-attendance-portal/gate"
	"github.com/jrsteele09/go-attendance-portal/sessions"
	"github.com/jrsteele09/go-attendance-portal/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the caller's session
	ContextKeySession ContextKey = "session"
	// ContextKeySessionID stores the session cookie value
	ContextKeySessionID ContextKey = "session_id"
)

// RequireSession loads the session named by the cookie and runs the gate
// against the requested path on every request.
func (s *Server) RequireSession() Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sessionID, session := s.loadSession(r)

			decision := gate.Authorize(session, r.URL.Path)
			if !decision.Allowed() {
				if decision.Redirect() == gate.PathLogin && sessionID != "" {
					s.ClearLoginSessionCookie(w, r)
				}
				redirectSuccess(w, r, decision.Redirect())
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, session)
			ctx = context.WithValue(ctx, ContextKeySessionID, sessionID)
			next(w, r.WithContext(ctx))
		}
	}
}

// loadSession returns the stored session, or an empty one when the cookie is
// missing, unknown or expired.
func (s *Server) loadSession(r *http.Request) (string, sessions.Session) {
	sessionID := sessionIDFromCookie(r)
	if sessionID == "" {
		return "", sessions.Session{}
	}
	session, err := s.loginSessions.Get(sessionID)
	if err != nil {
		return sessionID, sessions.Session{}
	}
	if s.config.GetEnforceTokenExpiry() && token.Expired(session.AccessToken, s.now()) {
		log.Debug().Str("user", session.Username).Msg("access token expired")
		return sessionID, sessions.Session{}
	}
	return sessionID, session
}

func sessionFromContext(ctx context.Context) (string, sessions.Session) {
	session, _ := ctx.Value(ContextKeySession).(sessions.Session)
	sessionID, _ := ctx.Value(ContextKeySessionID).(string)
	return sessionID, session
}

// saveSession writes back a session changed by a handler. A session removed
// meanwhile (logout, expiry purge) stays removed.
func (s *Server) saveSession(sessionID string, session sessions.Session) error {
	return s.loginSessions.Update(sessionID, session)
}
