package records

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// DateLayout is the format of the date filter, as sent by an HTML date input.
const DateLayout = "2006-01-02"

// Criteria holds the user-entered filters. An empty field is no constraint.
type Criteria struct {
	EmployeeName string
	EmployeeID   string
	Location     string
	Date         string

	// TimeZone is the viewer's zone used for the date comparison. Nil means UTC.
	TimeZone *time.Location
}

func (c Criteria) IsEmpty() bool {
	return strings.TrimSpace(c.EmployeeName) == "" &&
		strings.TrimSpace(c.EmployeeID) == "" &&
		strings.TrimSpace(c.Location) == "" &&
		strings.TrimSpace(c.Date) == ""
}

// matcher is Criteria compiled once per Filter call.
type matcher struct {
	fold     cases.Caser
	name     string
	location string

	hasID   bool
	idOK    bool
	id      int
	hasDate bool
	dateOK  bool
	y       int
	m       time.Month
	d       int
	loc     *time.Location
}

func (c Criteria) compile() *matcher {
	m := &matcher{fold: cases.Fold(), loc: c.TimeZone}
	if m.loc == nil {
		m.loc = time.UTC
	}
	m.name = m.fold.String(strings.TrimSpace(c.EmployeeName))
	m.location = m.fold.String(strings.TrimSpace(c.Location))

	if s := strings.TrimSpace(c.EmployeeID); s != "" {
		m.hasID = true
		id, err := strconv.Atoi(s)
		m.id, m.idOK = id, err == nil
	}
	if s := strings.TrimSpace(c.Date); s != "" {
		m.hasDate = true
		if t, err := time.Parse(DateLayout, s); err == nil {
			m.dateOK = true
			m.y, m.m, m.d = t.Date()
		}
	}
	return m
}

func (m *matcher) match(r AttendanceRecord) bool {
	if m.name != "" && !strings.Contains(m.fold.String(r.DisplayName()), m.name) {
		return false
	}
	// A non-numeric id filter hides every record.
	if m.hasID && (!m.idOK || r.Employee != m.id) {
		return false
	}
	if m.location != "" && !strings.Contains(m.fold.String(r.Location), m.location) {
		return false
	}
	if m.hasDate {
		if !m.dateOK {
			return false
		}
		y, mo, d := r.CheckinTime.In(m.loc).Date()
		if y != m.y || mo != m.m || d != m.d {
			return false
		}
	}
	return true
}

// Matches reports whether r satisfies every non-empty criterion.
func (c Criteria) Matches(r AttendanceRecord) bool {
	return c.compile().match(r)
}
