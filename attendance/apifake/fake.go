// Package apifake is an in-memory stand-in for the attendance API.
package apifake

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jrsteele09/go-attendance-portal/attendance"
	apperrors "github.com/jrsteele09/go-attendance-portal/internal/errors"
	"github.com/jrsteele09/go-attendance-portal/records"
	"github.com/jrsteele09/go-attendance-portal/users"
)

var _ attendance.API = (*FakeAPI)(nil)

type account struct {
	id       int
	password string
	role     users.Role
}

// FakeAPI keeps accounts and records in memory. Set Err to make every call fail.
type FakeAPI struct {
	lock     sync.RWMutex
	accounts map[string]account
	records  []records.AttendanceRecord
	nextID   int

	Err       error
	CheckIns  []attendance.CheckIn
	CheckOuts []attendance.CheckOut
	Created   []users.Account
}

func New() *FakeAPI {
	return &FakeAPI{
		accounts: make(map[string]account),
		nextID:   1,
	}
}

// AddUser registers credentials and returns the new user id.
func (f *FakeAPI) AddUser(username, password string, role users.Role) int {
	f.lock.Lock()
	defer f.lock.Unlock()

	id := len(f.accounts) + 1
	f.accounts[username] = account{id: id, password: password, role: role}
	return id
}

func (f *FakeAPI) AddRecords(recs ...records.AttendanceRecord) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.records = append(f.records, recs...)
}

func (f *FakeAPI) Login(_ context.Context, username, password string) (attendance.Identity, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()

	if f.Err != nil {
		return attendance.Identity{}, f.Err
	}
	acc, ok := f.accounts[username]
	if !ok || acc.password != password {
		return attendance.Identity{}, &attendance.APIError{StatusCode: 401, Body: `{"detail":"Invalid credentials"}`}
	}
	id := strconv.Itoa(acc.id)
	return attendance.Identity{
		UserID:       id,
		Username:     username,
		Role:         string(acc.role),
		AccessToken:  "access-" + id,
		RefreshToken: "refresh-" + id,
	}, nil
}

func (f *FakeAPI) CheckIn(_ context.Context, token string, req attendance.CheckIn) (string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if err := f.check(token); err != nil {
		return "", err
	}
	employee, _ := strconv.Atoi(req.Employee)
	checkinID := strconv.Itoa(f.nextID)
	f.nextID++

	f.CheckIns = append(f.CheckIns, req)
	name := req.EmployeeName
	f.records = append(f.records, records.AttendanceRecord{
		CheckinID:    checkinID,
		Employee:     employee,
		EmployeeName: &name,
		CheckinTime:  req.CheckinTime,
		Location:     req.Location,
	})
	return checkinID, nil
}

func (f *FakeAPI) CheckOut(_ context.Context, token string, req attendance.CheckOut) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	if err := f.check(token); err != nil {
		return err
	}
	for i := range f.records {
		if f.records[i].CheckinID == req.CheckinID {
			t := req.CheckoutTime
			f.records[i].CheckoutTime = &t
			f.CheckOuts = append(f.CheckOuts, req)
			return nil
		}
	}
	return &attendance.APIError{StatusCode: 404, Body: "check-in not found"}
}

func (f *FakeAPI) EmployeeHistory(_ context.Context, token, employeeID string) ([]records.AttendanceRecord, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()

	if err := f.check(token); err != nil {
		return nil, err
	}
	id, err := strconv.Atoi(employeeID)
	if err != nil {
		return nil, &attendance.APIError{StatusCode: 400, Body: "invalid employee id"}
	}
	var out []records.AttendanceRecord
	for _, r := range f.records {
		if r.Employee == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *FakeAPI) AdminHistory(_ context.Context, token string, _ int) ([]records.AttendanceRecord, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()

	if err := f.check(token); err != nil {
		return nil, err
	}
	return append([]records.AttendanceRecord(nil), f.records...), nil
}

func (f *FakeAPI) CreateUser(_ context.Context, token string, _ int, acc users.Account) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	if err := f.check(token); err != nil {
		return err
	}
	if _, exists := f.accounts[acc.Username]; exists {
		return &attendance.APIError{StatusCode: 400, Body: "username already exists"}
	}
	f.accounts[acc.Username] = account{id: len(f.accounts) + 1, password: acc.Password, role: acc.Role}
	f.Created = append(f.Created, acc)
	return nil
}

func (f *FakeAPI) check(token string) error {
	if f.Err != nil {
		return f.Err
	}
	if token == "" {
		return apperrors.ErrMissingCredentials
	}
	return nil
}

// At is a helper for building fixture timestamps.
func At(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
