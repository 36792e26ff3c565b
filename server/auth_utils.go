package server

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// sessionCookieName holds the opaque key of the server-side session
	sessionCookieName = "session_id"
	// timezoneCookieName holds the viewer's IANA zone, set by app.js
	timezoneCookieName = "tz"
)

func (s *Server) SetLoginSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (s *Server) ClearLoginSessionCookie(w http.ResponseWriter, r *http.Request) {
	s.SetLoginSessionCookie(w, r, "", -1)
}

func sessionIDFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// viewerLocation is the zone dates are shown and filtered in: the browser's
// zone when app.js has reported it, otherwise the configured display zone.
func (s *Server) viewerLocation(r *http.Request) *time.Location {
	if cookie, err := r.Cookie(timezoneCookieName); err == nil && cookie.Value != "" {
		name, err := url.QueryUnescape(cookie.Value)
		if err == nil {
			if loc, err := time.LoadLocation(name); err == nil {
				return loc
			}
		}
	}
	return s.config.GetDisplayTimezone()
}

// clientIP is the peer address. The first X-Forwarded-For hop is used only
// when trustProxy is set, since clients can write that header freely.
func clientIP(r *http.Request, trustProxy bool) string {
	if fwd := r.Header.Get("X-Forwarded-For"); trustProxy && fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	redirectSuccess(w, r, path+"?error="+url.QueryEscape(errorMsg))
}

// redirectWithNotice carries a transient notice to the next page.
func redirectWithNotice(w http.ResponseWriter, r *http.Request, path string, n notice) {
	q := url.Values{}
	q.Set("notice", n.Message)
	q.Set("kind", n.Kind)
	redirectSuccess(w, r, path+"?"+q.Encode())
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
