package users

import "github.com/jrsteele09/go-attendance-portal/internal/validator"

// Role is the closed set of roles the attendance API hands out.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// ParseRole maps anything other than the exact value "admin" to RoleEmployee
// so an unknown role can never be promoted to admin.
func ParseRole(s string) Role {
	if s == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleEmployee
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) String() string {
	if r == "" {
		return string(RoleEmployee)
	}
	return string(r)
}

// Account is a new employee or admin submitted from the creation form.
type Account struct {
	Username string
	Password string
	Role     Role
}

func (a Account) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(a.Username) {
		errs = append(errs, validator.ValidationError{Field: "username", Message: "Username is required"})
	}
	if validator.IsEmpty(a.Password) {
		errs = append(errs, validator.ValidationError{Field: "password", Message: "Password is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateAdminID checks the creating admin's user id before it is sent as
// the created_by reference.
func ValidateAdminID(id string) error {
	if !validator.IsNumeric(id) {
		return validator.ValidationErrors{{Field: "admin_id", Message: "Invalid admin ID"}}
	}
	return nil
}
