package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/jrsteele09/go-attendance-portal/internal/errors"
	"github.com/jrsteele09/go-attendance-portal/internal/logging"
	"github.com/jrsteele09/go-attendance-portal/internal/validator"
	"github.com/jrsteele09/go-attendance-portal/users"
)

const (
	msgInvalidAdminID = "Invalid admin ID"
	msgCreateFailed   = "Failed to create employee or admin"
	msgCreateOK       = "Employee/Admin created successfully"
)

type roleOption struct {
	Value    string
	Label    string
	Selected bool
}

type CreateEmployeePageData struct {
	Error    string
	Success  string
	Username string
	Roles    []roleOption
	Action   string
}

func roleOptions(selected string) []roleOption {
	return []roleOption{
		{Value: string(users.RoleEmployee), Label: "Employee", Selected: selected == string(users.RoleEmployee)},
		{Value: string(users.RoleAdmin), Label: "Admin", Selected: selected == string(users.RoleAdmin)},
	}
}

// CreateEmployeePageHandler renders the account creation form (GET /create-employee)
func (s *Server) CreateEmployeePageHandler() (http.HandlerFunc, error) {
	tmpl, err := ParseTemplate("create_employee.html")
	if err != nil {
		return nil, fmt.Errorf("[Server CreateEmployeePageHandler] failed to parse create employee template: %w", err)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		_, session := sessionFromContext(r.Context())
		q := r.URL.Query()
		data := CreateEmployeePageData{
			Error:    q.Get("error"),
			Success:  q.Get("success"),
			Username: q.Get("username"),
			Roles:    roleOptions(q.Get("role")),
			Action:   RouteCreateEmployee,
		}
		s.renderPage(w, r, session, "Create Employee", tmpl, data)
	}, nil
}

// CreateEmployeeSubmissionHandler validates the form locally, then creates
// an employee or, for the admin role, a superuser.
func (s *Server) CreateEmployeeSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		_, session := sessionFromContext(r.Context())

		roleValue := strings.TrimSpace(r.FormValue("role"))
		account := users.Account{
			Username: strings.TrimSpace(r.FormValue("username")),
			Password: r.FormValue("password"),
			Role:     users.ParseRole(roleValue),
		}

		fail := func(msg string) {
			q := url.Values{}
			q.Set("error", msg)
			if account.Username != "" {
				q.Set("username", account.Username)
			}
			if roleValue != "" {
				q.Set("role", string(account.Role))
			}
			redirectSuccess(w, r, RouteCreateEmployee+"?"+q.Encode())
		}

		if err := account.Validate(); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				fail(verrs.First())
				return
			}
			fail(err.Error())
			return
		}

		if err := users.ValidateAdminID(session.UserID); err != nil {
			fail(msgInvalidAdminID)
			return
		}
		adminID, err := session.EmployeeID()
		if err != nil {
			fail(msgInvalidAdminID)
			return
		}

		if err := s.api.CreateUser(r.Context(), session.AccessToken, adminID, account); err != nil {
			logging.FromContext(r.Context()).Err(err).Str("username", account.Username).Msg("failed to create account")
			if errors.Is(err, apperrors.ErrMissingCredentials) {
				fail(msgMissingIdentity)
				return
			}
			fail(msgCreateFailed)
			return
		}

		redirectSuccess(w, r, RouteCreateEmployee+"?success="+url.QueryEscape(msgCreateOK))
	}
}
