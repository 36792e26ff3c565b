package attendance

import (
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/go-attendance-portal/internal/errors"
)

// APIError is a non-2xx response from the attendance API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("attendance api returned status %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return apperrors.ErrNetworkOrServer
}

// Message is the text shown to the user for err: the API's response body
// when there is one, otherwise fallback.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if body := strings.TrimSpace(apiErr.Body); body != "" {
			return body
		}
	}
	return fallback
}
