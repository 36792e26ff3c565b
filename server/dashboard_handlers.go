package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-attendance-portal/attendance"
	"github.com/jrsteele09/go-attendance-portal/geocode"
	apperrors "github.com/jrsteele09/go-attendance-portal/internal/errors"
	"github.com/jrsteele09/go-attendance-portal/internal/logging"
)

const (
	clockTimeLayout = "3:04:05 PM"
	clockDateLayout = "1/2/2006"

	msgPunchInOK        = "Punch In successful!"
	msgPunchInFailed    = "Failed to punch in. Please try again."
	msgPunchOutOK       = "Punch Out successful!"
	msgPunchOutFailed   = "Failed to punch out. Please try again."
	msgPunchError       = "An error occurred. Please try again."
	msgNoCheckinID      = "No Check-In ID found. Please Punch In first."
	msgAlreadyPunchedIn = "You are already punched in. Please Punch Out first."
	msgMissingIdentity  = "Employee ID or token is missing."
)

type clockReading struct {
	Time string `json:"time"`
	Date string `json:"date"`
	Day  string `json:"day"`
}

func readClock(now time.Time) clockReading {
	return clockReading{
		Time: now.Format(clockTimeLayout),
		Date: now.Format(clockDateLayout),
		Day:  now.Weekday().String(),
	}
}

type DashboardData struct {
	Username     string
	Clock        clockReading
	Location     string
	IsPunchedIn  bool
	PunchInTime  string
	PunchOutTime string
	Notice       *notice
	ReturnPath   string

	PunchInAction  string
	PunchOutAction string
	ClockURL       string
	LocationURL    string
}

func formatPunchTime(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format(clockTimeLayout)
}

// DashboardHandler renders the welcome page with the live clock and punch controls.
func (s *Server) DashboardHandler() (http.HandlerFunc, error) {
	tmpl, err := ParseTemplate("dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("[Server DashboardHandler] failed to parse dashboard template: %w", err)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		_, session := sessionFromContext(r.Context())
		loc := s.viewerLocation(r)

		data := DashboardData{
			Username:       session.Username,
			Clock:          readClock(s.now().In(loc)),
			Location:       geocode.Pending,
			IsPunchedIn:    session.IsPunchedIn,
			PunchInTime:    formatPunchTime(session.PunchInTime, loc),
			PunchOutTime:   formatPunchTime(session.PunchOutTime, loc),
			Notice:         noticeFromQuery(r.URL.Query()),
			ReturnPath:     r.URL.Path,
			PunchInAction:  RoutePunchIn,
			PunchOutAction: RoutePunchOut,
			ClockURL:       RouteClock,
			LocationURL:    RouteAPILocation,
		}
		s.renderPage(w, r, session, "Dashboard", tmpl, data)
	}, nil
}

// dashboardReturnPath sends punch results back to whichever dashboard
// route the form was posted from.
func dashboardReturnPath(r *http.Request) string {
	if r.FormValue("from") == RouteRoot {
		return RouteRoot
	}
	return RouteHome
}

// punchLocation prefers the location resolved in the browser and falls back
// to geocoding the posted coordinates.
func (s *Server) punchLocation(r *http.Request) string {
	if loc := strings.TrimSpace(r.FormValue("location")); loc != "" && loc != geocode.Pending {
		return loc
	}
	lat, lon := geocode.ParseCoordinates(r.FormValue("lat"), r.FormValue("lon"))
	return geocode.Describe(r.Context(), s.geocoder, lat, lon)
}

func (s *Server) PunchInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		back := dashboardReturnPath(r)
		sessionID, session := sessionFromContext(r.Context())

		if session.UserID == "" || !session.Authenticated() {
			redirectWithNotice(w, r, back, errorNotice(msgMissingIdentity))
			return
		}
		if session.IsPunchedIn {
			redirectWithNotice(w, r, back, errorNotice(msgAlreadyPunchedIn))
			return
		}

		now := s.now()
		req := attendance.CheckIn{
			Employee:     session.UserID,
			EmployeeName: session.Username,
			CheckinTime:  now,
			Location:     s.punchLocation(r),
			CreatedBy:    session.Username,
			ModifiedBy:   session.Username,
		}

		checkinID, err := s.api.CheckIn(r.Context(), session.AccessToken, req)
		if err != nil {
			logging.FromContext(r.Context()).Err(err).Msg("punch in failed")
			redirectWithNotice(w, r, back, errorNotice(punchFailure(err, msgPunchInFailed)))
			return
		}

		if err := session.MarkPunchedIn(checkinID, now); err != nil {
			logging.FromContext(r.Context()).Err(err).Msg("punch in returned no check-in id")
			redirectWithNotice(w, r, back, errorNotice(msgPunchError))
			return
		}
		if err := s.saveSession(sessionID, session); err != nil {
			logging.FromContext(r.Context()).Err(err).Msg("failed to store punch in")
			redirectWithNotice(w, r, back, errorNotice(msgPunchError))
			return
		}
		redirectWithNotice(w, r, back, successNotice(msgPunchInOK))
	}
}

func (s *Server) PunchOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		back := dashboardReturnPath(r)
		sessionID, session := sessionFromContext(r.Context())

		if session.CheckinID == "" {
			redirectWithNotice(w, r, back, errorNotice(msgNoCheckinID))
			return
		}
		employeeID, err := session.EmployeeID()
		if err != nil {
			logging.FromContext(r.Context()).Err(err).Msg("punch out without a usable employee id")
			redirectWithNotice(w, r, back, errorNotice(msgPunchError))
			return
		}

		now := s.now()
		req := attendance.CheckOut{
			Employee:     employeeID,
			CheckinID:    session.CheckinID,
			EmployeeName: session.Username,
			CheckoutTime: now,
			Location:     s.punchLocation(r),
			CreatedBy:    session.Username,
			ModifiedBy:   session.Username,
		}
		if err := s.api.CheckOut(r.Context(), session.AccessToken, req); err != nil {
			logging.FromContext(r.Context()).Err(err).Msg("punch out failed")
			redirectWithNotice(w, r, back, errorNotice(punchFailure(err, msgPunchOutFailed)))
			return
		}

		session.MarkPunchedOut(now)
		if err := s.saveSession(sessionID, session); err != nil {
			logging.FromContext(r.Context()).Err(err).Msg("failed to store punch out")
			redirectWithNotice(w, r, back, errorNotice(msgPunchError))
			return
		}
		redirectWithNotice(w, r, back, successNotice(msgPunchOutOK))
	}
}

// punchFailure distinguishes a rejected request from a transport or decoding failure.
func punchFailure(err error, rejected string) string {
	var apiErr *attendance.APIError
	if errors.As(err, &apiErr) {
		return rejected
	}
	if errors.Is(err, apperrors.ErrMissingCredentials) {
		return msgMissingIdentity
	}
	return msgPunchError
}

// ClockStreamHandler pushes the dashboard clock as server-sent events. The
// ticker lives exactly as long as the request.
func (s *Server) ClockStreamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		loc := s.viewerLocation(r)
		send := func() error {
			payload, err := json.Marshal(readClock(s.now().In(loc)))
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "event: clock\ndata: %s\n\n", payload); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		}

		if err := send(); err != nil {
			return
		}

		ticker := time.NewTicker(s.clockInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
				if err := send(); err != nil {
					return
				}
			}
		}
	}
}

type locationResponse struct {
	Location string `json:"location"`
}

// LocationHandler reverse geocodes ?lat=&lon= into the punch location string.
func (s *Server) LocationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, lon := geocode.ParseCoordinates(r.URL.Query().Get("lat"), r.URL.Query().Get("lon"))
		resp := locationResponse{Location: geocode.Describe(r.Context(), s.geocoder, lat, lon)}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logging.FromContext(r.Context()).Err(err).Msg("failed to write location")
		}
	}
}
