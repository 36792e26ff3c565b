package attendance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-attendance-portal/internal/errors"
	"github.com/jrsteele09/go-attendance-portal/records"
)

// FlexID accepts an identifier sent either as a JSON number or a JSON string.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) String() string {
	return string(f)
}

func (f FlexID) Int() (int, error) {
	return strconv.Atoi(string(f))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User *struct {
		ID       FlexID `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user"`
	UserToken *struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	} `json:"user_token"`
}

func (r loginResponse) validate() error {
	switch {
	case r.User == nil:
		return malformed("login", "user")
	case r.User.ID == "":
		return malformed("login", "user.id")
	case r.UserToken == nil:
		return malformed("login", "user_token")
	case r.UserToken.Access == "":
		return malformed("login", "user_token.access")
	}
	return nil
}

// Identity is the signed-in principal returned by Login.
type Identity struct {
	UserID       string
	Username     string
	Role         string
	AccessToken  string
	RefreshToken string
}

// CheckIn is the punch-in payload. Employee is sent as given.
type CheckIn struct {
	Employee     string    `json:"employee"`
	EmployeeName string    `json:"employee_name"`
	CheckinTime  time.Time `json:"checkin_time"`
	Location     string    `json:"location"`
	CreatedBy    string    `json:"created_by"`
	ModifiedBy   string    `json:"modified_by"`
}

type checkInResponse struct {
	CheckinID FlexID `json:"checkin_id"`
}

// CheckOut is the punch-out payload.
type CheckOut struct {
	Employee     int       `json:"employee"`
	CheckinID    string    `json:"checkin_id"`
	EmployeeName string    `json:"employee_name"`
	CheckoutTime time.Time `json:"checkout_time"`
	Location     string    `json:"location"`
	CreatedBy    string    `json:"created_by"`
	ModifiedBy   string    `json:"modified_by"`
}

type adminHistoryRequest struct {
	ID int `json:"id"`
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	AdminID  int    `json:"admin_id"`
}

type recordPayload struct {
	CheckinID    FlexID  `json:"checkin_id"`
	Employee     *FlexID `json:"employee"`
	EmployeeName *string `json:"employee_name"`
	CheckinTime  *string `json:"checkin_time"`
	CheckoutTime *string `json:"checkout_time"`
	Location     *string `json:"location"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// parseTimestamp accepts RFC 3339 and the zone-less forms some backends emit.
// Zone-less values are read as UTC.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func (p recordPayload) toRecord(i int) (records.AttendanceRecord, error) {
	if p.Employee == nil || *p.Employee == "" {
		return records.AttendanceRecord{}, malformed("history", fmt.Sprintf("[%d].employee", i))
	}
	employee, err := p.Employee.Int()
	if err != nil {
		return records.AttendanceRecord{}, malformed("history", fmt.Sprintf("[%d].employee", i))
	}
	if p.CheckinTime == nil || *p.CheckinTime == "" {
		return records.AttendanceRecord{}, malformed("history", fmt.Sprintf("[%d].checkin_time", i))
	}
	checkin, err := parseTimestamp(*p.CheckinTime)
	if err != nil {
		return records.AttendanceRecord{}, malformed("history", fmt.Sprintf("[%d].checkin_time", i))
	}

	rec := records.AttendanceRecord{
		CheckinID:    p.CheckinID.String(),
		Employee:     employee,
		EmployeeName: p.EmployeeName,
		CheckinTime:  checkin,
	}
	if p.Location != nil {
		rec.Location = *p.Location
	}
	if p.CheckoutTime != nil && *p.CheckoutTime != "" {
		checkout, err := parseTimestamp(*p.CheckoutTime)
		if err != nil {
			return records.AttendanceRecord{}, malformed("history", fmt.Sprintf("[%d].checkout_time", i))
		}
		rec.CheckoutTime = &checkout
	}
	return rec, nil
}

func decodeRecords(body []byte) ([]records.AttendanceRecord, error) {
	var payload []recordPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("[attendance decodeRecords] %v: %w", err, apperrors.ErrMalformedResponse)
	}
	out := make([]records.AttendanceRecord, 0, len(payload))
	for i, p := range payload {
		rec, err := p.toRecord(i)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func malformed(op, field string) error {
	return fmt.Errorf("[attendance %s] missing or invalid %s: %w", op, field, apperrors.ErrMalformedResponse)
}
