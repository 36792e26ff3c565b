package sessions

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-attendance-portal/internal/errors"
	"github.com/jrsteele09/go-attendance-portal/users"
)

// Session is the signed-in user's identity, role and punch state. It is held
// server side and looked up per request by the session cookie.
type Session struct {
	AccessToken  string     // Bearer credential; presence alone means authenticated
	RefreshToken string     // Stored, never used
	UserID       string     // Integer id as issued by the attendance API
	Username     string     // Display name
	Role         users.Role // Governs menus and route gating
	IsPunchedIn  bool
	CheckinID    string // Set only while IsPunchedIn
	PunchInTime  *time.Time
	PunchOutTime *time.Time

	CreatedAt time.Time
	ExpiresAt time.Time
}

// New builds the session created by a successful login.
func New(accessToken, refreshToken, userID, username, role string, now time.Time, maxAge time.Duration) Session {
	return Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       userID,
		Username:     username,
		Role:         users.ParseRole(role),
		CreatedAt:    now,
		ExpiresAt:    now.Add(maxAge),
	}
}

func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

func (s Session) IsAdmin() bool {
	return s.Role.IsAdmin()
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// EmployeeID parses UserID, which the API expects as an integer.
func (s Session) EmployeeID() (int, error) {
	if strings.TrimSpace(s.UserID) == "" {
		return 0, apperrors.ErrMissingCredentials
	}
	id, err := strconv.Atoi(strings.TrimSpace(s.UserID))
	if err != nil {
		return 0, fmt.Errorf("[Session EmployeeID] user id %q: %w", s.UserID, apperrors.ErrInvalidID)
	}
	return id, nil
}

// MarkPunchedIn opens an attendance entry. The check-in id must be non-empty.
func (s *Session) MarkPunchedIn(checkinID string, at time.Time) error {
	if strings.TrimSpace(checkinID) == "" {
		return fmt.Errorf("[Session MarkPunchedIn] empty check-in id: %w", apperrors.ErrMalformedResponse)
	}
	s.IsPunchedIn = true
	s.CheckinID = checkinID
	s.PunchInTime = &at
	s.PunchOutTime = nil
	return nil
}

func (s *Session) MarkPunchedOut(at time.Time) {
	s.IsPunchedIn = false
	s.CheckinID = ""
	s.PunchOutTime = &at
}

// Clear zeroes every field.
func (s *Session) Clear() {
	*s = Session{}
}
