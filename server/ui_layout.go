package server

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-attendance-portal/sessions"
)

const contentTypeHTML = "text/html; charset=utf-8"

type menuItem struct {
	Text   string
	Path   string
	Active bool
}

// notice is a transient message shown once after a redirect.
type notice struct {
	Message string
	Kind    string // "success" or "error"
}

const (
	noticeSuccess = "success"
	noticeError   = "error"
)

func successNotice(msg string) notice { return notice{Message: msg, Kind: noticeSuccess} }
func errorNotice(msg string) notice   { return notice{Message: msg, Kind: noticeError} }

func noticeFromQuery(q url.Values) *notice {
	msg := strings.TrimSpace(q.Get("notice"))
	if msg == "" {
		return nil
	}
	kind := q.Get("kind")
	if kind != noticeSuccess {
		kind = noticeError
	}
	return &notice{Message: msg, Kind: kind}
}

// menuFor is the header menu: admins get account creation, everyone else the
// dashboard and their own attendance.
func menuFor(session sessions.Session, activePath string) []menuItem {
	var items []menuItem
	if session.IsAdmin() {
		items = []menuItem{{Text: "User Creation", Path: RouteCreateEmployee}}
	} else {
		items = []menuItem{
			{Text: "Dashboard", Path: RouteHome},
			{Text: "Attendance", Path: RouteAttendance},
		}
	}
	for i := range items {
		items[i].Active = items[i].Path == activePath
	}
	return items
}

type layoutData struct {
	AppName    string
	PageTitle  string
	Username   string
	ShowHeader bool
	Menu       []menuItem
	LogoutPath string
	Content    template.HTML
}

// renderPage executes content into the shared layout. The header is shown
// only to authenticated sessions and never on the login page.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, session sessions.Session, pageTitle string, content *template.Template, data any) {
	var contentBuf strings.Builder
	if err := content.Execute(&contentBuf, data); err != nil {
		log.Err(err).Str("template", content.Name()).Msg("Failed to render content")
		http.Error(w, "Failed to render content", http.StatusInternalServerError)
		return
	}

	layout := layoutData{
		AppName:    s.config.GetAppName(),
		PageTitle:  pageTitle,
		Username:   session.Username,
		ShowHeader: session.Authenticated() && r.URL.Path != RouteLogin,
		LogoutPath: RouteLogout,
		Content:    template.HTML(contentBuf.String()),
	}
	if layout.ShowHeader {
		layout.Menu = menuFor(session, r.URL.Path)
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	if err := s.layout.Execute(w, layout); err != nil {
		log.Err(err).Msg("Failed to render layout")
	}
}
