package attendance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	apperrors "github.com/jrsteele09/go-attendance-portal/internal/errors"
	"github.com/jrsteele09/go-attendance-portal/records"
	"github.com/jrsteele09/go-attendance-portal/users"
)

const maxResponseBytes = 1 << 20

// API is the set of attendance backend operations the portal uses.
type API interface {
	Login(ctx context.Context, username, password string) (Identity, error)
	CheckIn(ctx context.Context, token string, req CheckIn) (string, error)
	CheckOut(ctx context.Context, token string, req CheckOut) error
	EmployeeHistory(ctx context.Context, token, employeeID string) ([]records.AttendanceRecord, error)
	AdminHistory(ctx context.Context, token string, adminID int) ([]records.AttendanceRecord, error)
	CreateUser(ctx context.Context, token string, adminID int, account users.Account) error
}

var _ API = (*Client)(nil)

// Client calls the attendance API over HTTP/JSON. No call is retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
	}
}

// Login exchanges credentials for tokens and the user's identity.
func (c *Client) Login(ctx context.Context, username, password string) (Identity, error) {
	var resp loginResponse
	if err := c.do(ctx, "", http.MethodPost, "/login/", loginRequest{Username: username, Password: password}, &resp); err != nil {
		return Identity{}, err
	}
	if err := resp.validate(); err != nil {
		return Identity{}, err
	}
	return Identity{
		UserID:       resp.User.ID.String(),
		Username:     resp.User.Username,
		Role:         resp.User.Role,
		AccessToken:  resp.UserToken.Access,
		RefreshToken: resp.UserToken.Refresh,
	}, nil
}

// CheckIn opens an attendance entry and returns its check-in id.
func (c *Client) CheckIn(ctx context.Context, token string, req CheckIn) (string, error) {
	req.CheckinTime = isoMillis(req.CheckinTime)
	var resp checkInResponse
	if err := c.do(ctx, token, http.MethodPost, "/checkin/", req, &resp); err != nil {
		return "", err
	}
	if resp.CheckinID == "" {
		return "", malformed("checkin", "checkin_id")
	}
	return resp.CheckinID.String(), nil
}

func (c *Client) CheckOut(ctx context.Context, token string, req CheckOut) error {
	req.CheckoutTime = isoMillis(req.CheckoutTime)
	return c.do(ctx, token, http.MethodPut, "/checkout/", req, nil)
}

// EmployeeHistory returns the employee's own attendance records in API order.
func (c *Client) EmployeeHistory(ctx context.Context, token, employeeID string) ([]records.AttendanceRecord, error) {
	if strings.TrimSpace(employeeID) == "" {
		return nil, apperrors.ErrMissingCredentials
	}
	var raw json.RawMessage
	if err := c.do(ctx, token, http.MethodGet, "/checkins/"+url.PathEscape(employeeID), nil, &raw); err != nil {
		return nil, err
	}
	return decodeRecords(raw)
}

// AdminHistory returns every employee's records visible to the admin.
func (c *Client) AdminHistory(ctx context.Context, token string, adminID int) ([]records.AttendanceRecord, error) {
	var raw json.RawMessage
	if err := c.do(ctx, token, http.MethodPost, "/admin/", adminHistoryRequest{ID: adminID}, &raw); err != nil {
		return nil, err
	}
	return decodeRecords(raw)
}

// CreateUser creates an employee, or a superuser when the account role is admin.
func (c *Client) CreateUser(ctx context.Context, token string, adminID int, account users.Account) error {
	path := "/create-employee/"
	if account.Role.IsAdmin() {
		path = "/create-superuser/"
	}
	req := createUserRequest{Username: account.Username, Password: account.Password, AdminID: adminID}
	return c.do(ctx, token, http.MethodPost, path, req, nil)
}

func isoMillis(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// client returns the bearer-authenticated client for token, or the plain
// client for public endpoints.
func (c *Client) client(ctx context.Context, token string) *http.Client {
	if token == "" {
		return c.httpClient
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
}

func (c *Client) do(ctx context.Context, token, method, path string, body, out any) error {
	if token == "" && path != "/login/" {
		return fmt.Errorf("[attendance %s %s] no access token: %w", method, path, apperrors.ErrMissingCredentials)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("[attendance %s %s] failed to marshal payload: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("[attendance %s %s] failed to create request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client(ctx, token).Do(req)
	if err != nil {
		return fmt.Errorf("[attendance %s %s] %w: %w", method, path, apperrors.ErrNetworkOrServer, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("[attendance %s %s] failed to read response: %w: %w", method, path, apperrors.ErrNetworkOrServer, err)
	}

	if resp.StatusCode >= 300 {
		log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("attendance api call failed")
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("[attendance %s %s] %v: %w", method, path, err, apperrors.ErrMalformedResponse)
	}
	return nil
}
