// Package gate decides whether a session may view a portal page.
package gate

import "github.com/jrsteele09/go-attendance-portal/sessions"

const (
	PathLogin           = "/login"
	PathHome            = "/home"
	PathEmployeeHistory = "/employee-history"
)

// Decision is either Allow or a redirect to another page.
type Decision struct {
	redirect string
}

func Allow() Decision {
	return Decision{}
}

func RedirectTo(path string) Decision {
	return Decision{redirect: path}
}

func (d Decision) Allowed() bool {
	return d.redirect == ""
}

// Redirect returns the redirect target, or "" when the decision is Allow.
func (d Decision) Redirect() string {
	return d.redirect
}

func (d Decision) String() string {
	if d.Allowed() {
		return "allow"
	}
	return "redirect " + d.redirect
}

// Authorize checks token presence and role only. It makes no network call and
// never mutates the session.
func Authorize(s sessions.Session, requestedPath string) Decision {
	switch {
	case !s.Authenticated():
		return RedirectTo(PathLogin)
	case s.IsAdmin() && requestedPath == PathHome:
		return RedirectTo(PathEmployeeHistory)
	case !s.IsAdmin() && requestedPath == PathEmployeeHistory:
		return RedirectTo(PathHome)
	}
	return Allow()
}
