package validator

import (
	"regexp"
	"strings"

	apperrors "github.com/jrsteele09/go-attendance-portal/internal/errors"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

// Is lets errors.Is(err, ErrValidation) match any set of validation errors.
func (v ValidationErrors) Is(target error) bool {
	return target == apperrors.ErrValidation
}

// First returns the message of the first error, or "" when there are none.
func (v ValidationErrors) First() string {
	if len(v) == 0 {
		return ""
	}
	return v[0].Message
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var numericRegex = regexp.MustCompile(`^-?[0-9]+$`)

// IsNumeric reports whether s is a base-10 integer, ignoring surrounding space.
func IsNumeric(s string) bool {
	return numericRegex.MatchString(strings.TrimSpace(s))
}
