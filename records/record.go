// Package records filters and paginates attendance records for the table views.
package records

import "time"

const NotAvailable = "N/A"

// AttendanceRecord is one punch-in/punch-out pair owned by the attendance API.
type AttendanceRecord struct {
	CheckinID    string
	Employee     int
	EmployeeName *string
	CheckinTime  time.Time
	CheckoutTime *time.Time // nil while the employee is still punched in
	Location     string
}

// DisplayName is the employee name, or "N/A" when the API omitted it.
func (r AttendanceRecord) DisplayName() string {
	if r.EmployeeName == nil || *r.EmployeeName == "" {
		return NotAvailable
	}
	return *r.EmployeeName
}

func (r AttendanceRecord) StillPunchedIn() bool {
	return r.CheckoutTime == nil
}
