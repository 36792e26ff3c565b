package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-attendance-portal/attendance"
	"github.com/jrsteele09/go-attendance-portal/internal/logging"
	"github.com/jrsteele09/go-attendance-portal/sessions"
)

const (
	msgInvalidCredentials = "Invalid username or password."
	msgLoginFailed        = "Something went wrong. Please try again."
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	Error    string
	Username string // Preserve username on error
	Action   string
}

// LoginPageUIHandler displays the login page (GET /login)
func (s *Server) LoginPageUIHandler() (http.HandlerFunc, error) {
	loginTmpl, err := ParseTemplate("login.html")
	if err != nil {
		return nil, fmt.Errorf("[Server LoginPageUIHandler] failed to parse login template: %w", err)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := LoginPageData{
			Error:    r.URL.Query().Get("error"),
			Username: r.URL.Query().Get("username"),
			Action:   RouteLogin,
		}
		s.renderPage(w, r, sessions.Session{}, "Login", loginTmpl, data)
	}, nil
}

// LoginSubmissionHandler exchanges the form credentials with the attendance
// API and starts a portal session.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		if username == "" || password == "" {
			s.renderLoginError(w, r, msgInvalidCredentials, username)
			return
		}

		identity, err := s.api.Login(r.Context(), username, password)
		if err != nil {
			var apiErr *attendance.APIError
			if errors.As(err, &apiErr) {
				logging.FromContext(r.Context()).Info().Int("status", apiErr.StatusCode).Str("username", username).Msg("login rejected")
				s.renderLoginError(w, r, msgInvalidCredentials, username)
				return
			}
			logging.FromContext(r.Context()).Err(err).Msg("login failed")
			s.renderLoginError(w, r, msgLoginFailed, username)
			return
		}

		// A fresh id on every login; any previous session is discarded.
		if oldID := sessionIDFromCookie(r); oldID != "" {
			_ = s.loginSessions.Delete(oldID)
		}

		maxAge := s.config.GetMaxSessionAge()
		session := sessions.New(identity.AccessToken, identity.RefreshToken, identity.UserID, identity.Username, identity.Role, s.now(), maxAge)
		sessionID := uuid.NewString()
		if err := s.loginSessions.Upsert(sessionID, session); err != nil {
			log.Err(err).Msg("Failed to store login session")
			s.renderLoginError(w, r, msgLoginFailed, username)
			return
		}
		s.SetLoginSessionCookie(w, r, sessionID, int(maxAge.Seconds()))

		if session.IsAdmin() {
			redirectSuccess(w, r, RouteEmployeeHistory)
			return
		}
		redirectSuccess(w, r, RouteHome)
	}
}

// LogoutHandler clears every session field, forgets the session and sends
// the browser back to the login page.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, session := s.loadSession(r)
		session.Clear()
		if sessionID != "" {
			if err := s.loginSessions.Delete(sessionID); err != nil {
				log.Err(err).Msg("Failed to delete login session")
			}
		}
		s.ClearLoginSessionCookie(w, r)
		redirectSuccess(w, r, RouteLogin)
	}
}

// renderLoginError redirects to login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, username string) {
	q := url.Values{}
	q.Set("error", errorMsg)
	if username != "" {
		q.Set("username", username)
	}
	redirectSuccess(w, r, RouteLogin+"?"+q.Encode())
}
