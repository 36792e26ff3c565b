package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-attendance-portal/attendance"
	apperrors "github.com/jrsteele09/go-attendance-portal/internal/errors"
	"github.com/jrsteele09/go-attendance-portal/internal/logging"
	"github.com/jrsteele09/go-attendance-portal/records"
)

const (
	rowDateLayout     = "1/2/2006"
	rowTimeLayout     = "3:04:05 PM"
	rowDateTimeLayout = "1/2/2006, 3:04:05 PM"

	msgAttendanceFetchFailed = "Failed to fetch attendance data."
	msgEmployeeFetchFailed   = "Failed to fetch employee data."
)

// maxPageIndex bounds the page query value; anything past the data renders empty anyway.
const maxPageIndex = 1 << 20

var (
	attendancePageSizes      = []int{10, 25, 50}
	employeeHistoryPageSizes = []int{5}
)

// Query keys carrying table state between requests.
const (
	queryPage     = "page"
	querySize     = "size"
	queryPrevSize = "prev_size"

	filterEmployeeName = "employee_name"
	filterEmployeeID   = "employee_id"
	filterLocation     = "location"
	filterDate         = "date"
)

// parseWindow rebuilds the table window from the query string. The window
// starts from the previously shown size so that a changed size resets the
// page index to 0.
func parseWindow(q url.Values, sizes []int, defaultSize int) records.Window {
	size := defaultSize
	if n, err := strconv.Atoi(q.Get(querySize)); err == nil && slices.Contains(sizes, n) {
		size = n
	}
	prev := size
	if n, err := strconv.Atoi(q.Get(queryPrevSize)); err == nil && n > 0 {
		prev = n
	}
	page, _ := strconv.Atoi(q.Get(queryPage))
	page = min(page, maxPageIndex)

	return records.NewWindow(prev).WithPageIndex(page).WithPageSize(size)
}

func parseCriteria(q url.Values, keys []string, loc *time.Location) records.Criteria {
	c := records.Criteria{TimeZone: loc}
	for _, k := range keys {
		v := strings.TrimSpace(q.Get(k))
		switch k {
		case filterEmployeeName:
			c.EmployeeName = v
		case filterEmployeeID:
			c.EmployeeID = v
		case filterLocation:
			c.Location = v
		case filterDate:
			c.Date = v
		}
	}
	return c
}

type hiddenField struct {
	Name  string
	Value string
}

type pageSizeOption struct {
	Size     int
	Selected bool
}

type paginationView struct {
	FirstRow  int
	LastRow   int
	Total     int
	PrevURL   string // empty on the first page
	NextURL   string // empty on the last page
	Size      int
	Sizes     []pageSizeOption
	SizeState []hiddenField // filters carried through a page size change
	Action    string
}

// tableQuery keeps the active filters and window in links.
type tableQuery struct {
	path    string
	filters url.Values
}

func newTableQuery(path string, q url.Values, keys []string) tableQuery {
	filters := url.Values{}
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			filters.Set(k, v)
		}
	}
	return tableQuery{path: path, filters: filters}
}

func (t tableQuery) pageURL(w records.Window) string {
	q := url.Values{}
	for k, v := range t.filters {
		q[k] = v
	}
	q.Set(queryPage, strconv.Itoa(w.PageIndex))
	q.Set(querySize, strconv.Itoa(w.PageSize))
	q.Set(queryPrevSize, strconv.Itoa(w.PageSize))
	return t.path + "?" + q.Encode()
}

func (t tableQuery) hidden() []hiddenField {
	var out []hiddenField
	for k := range t.filters {
		out = append(out, hiddenField{Name: k, Value: t.filters.Get(k)})
	}
	slices.SortFunc(out, func(a, b hiddenField) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func (t tableQuery) pagination(page records.Page, sizes []int) paginationView {
	view := paginationView{
		FirstRow:  page.FirstRow(),
		LastRow:   page.LastRow(),
		Total:     page.TotalCount,
		Size:      page.Window.PageSize,
		SizeState: append(t.hidden(), hiddenField{Name: queryPrevSize, Value: strconv.Itoa(page.Window.PageSize)}),
		Action:    t.path,
	}
	for _, n := range sizes {
		view.Sizes = append(view.Sizes, pageSizeOption{Size: n, Selected: n == page.Window.PageSize})
	}
	if page.HasPrev() {
		view.PrevURL = t.pageURL(page.Window.WithPageIndex(page.Window.PageIndex - 1))
	}
	if page.HasNext() {
		view.NextURL = t.pageURL(page.Window.WithPageIndex(page.Window.PageIndex + 1))
	}
	return view
}

type attendanceRow struct {
	Date         string
	CheckinTime  string
	CheckoutTime string
	Location     string
}

type locationOption struct {
	Value    string
	Selected bool
}

type AttendancePageData struct {
	Error      string
	Date       string
	Location   string
	Locations  []locationOption
	Rows       []attendanceRow
	Pagination paginationView
	ClearURL   string
	Action     string
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return records.NotAvailable
	}
	return s
}

func toAttendanceRows(recs []records.AttendanceRecord, loc *time.Location) []attendanceRow {
	rows := make([]attendanceRow, 0, len(recs))
	for _, rec := range recs {
		in := rec.CheckinTime.In(loc)
		row := attendanceRow{
			Date:         in.Format(rowDateLayout),
			CheckinTime:  in.Format(rowTimeLayout),
			CheckoutTime: records.NotAvailable,
			Location:     orNA(rec.Location),
		}
		if rec.CheckoutTime != nil {
			row.CheckoutTime = rec.CheckoutTime.In(loc).Format(rowTimeLayout)
		}
		rows = append(rows, row)
	}
	return rows
}

// historyError is the inline text for a failed history fetch.
func historyError(err error, fallback string) string {
	if errors.Is(err, apperrors.ErrMissingCredentials) {
		return msgMissingIdentity
	}
	return attendance.Message(err, fallback)
}

// AttendanceHandler lists the signed-in employee's own punches.
func (s *Server) AttendanceHandler() (http.HandlerFunc, error) {
	tmpl, err := ParseTemplate("attendance.html")
	if err != nil {
		return nil, fmt.Errorf("[Server AttendanceHandler] failed to parse attendance template: %w", err)
	}
	filterKeys := []string{filterDate, filterLocation}

	return func(w http.ResponseWriter, r *http.Request) {
		_, session := sessionFromContext(r.Context())
		q := r.URL.Query()
		loc := s.viewerLocation(r)
		tq := newTableQuery(RouteAttendance, q, filterKeys)
		window := parseWindow(q, attendancePageSizes, attendancePageSizes[0])
		criteria := parseCriteria(q, filterKeys, loc)

		data := AttendancePageData{
			Date:     criteria.Date,
			Location: criteria.Location,
			ClearURL: tq.withoutFilters().pageURL(window.WithPageIndex(0)),
			Action:   RouteAttendance,
		}

		if session.UserID == "" || !session.Authenticated() {
			data.Error = msgMissingIdentity
			s.renderPage(w, r, session, "Attendance History", tmpl, data)
			return
		}

		recs, err := s.api.EmployeeHistory(r.Context(), session.AccessToken, session.UserID)
		if err != nil {
			logging.FromContext(r.Context()).Err(err).Msg("failed to fetch attendance")
			data.Error = historyError(err, msgAttendanceFetchFailed)
			s.renderPage(w, r, session, "Attendance History", tmpl, data)
			return
		}

		for _, l := range records.Locations(recs) {
			data.Locations = append(data.Locations, locationOption{Value: l, Selected: l == criteria.Location})
		}
		page := records.Paginate(recs, criteria, window)
		data.Rows = toAttendanceRows(page.Rows, loc)
		data.Pagination = tq.pagination(page, attendancePageSizes)
		s.renderPage(w, r, session, "Attendance History", tmpl, data)
	}, nil
}

func (t tableQuery) withoutFilters() tableQuery {
	return tableQuery{path: t.path, filters: url.Values{}}
}

type employeeRow struct {
	Name     string
	ID       int
	Location string
	Checkin  string
	Checkout string
}

type EmployeeHistoryPageData struct {
	Error        string
	EmployeeName string
	EmployeeID   string
	Location     string
	Date         string
	Rows         []employeeRow
	Pagination   paginationView
	ClearURL     string
	Action       string
}

func toEmployeeRows(recs []records.AttendanceRecord, loc *time.Location) []employeeRow {
	rows := make([]employeeRow, 0, len(recs))
	for _, rec := range recs {
		row := employeeRow{
			Name:     rec.DisplayName(),
			ID:       rec.Employee,
			Location: rec.Location,
			Checkin:  rec.CheckinTime.In(loc).Format(rowDateTimeLayout),
			Checkout: records.NotAvailable,
		}
		if rec.CheckoutTime != nil {
			row.Checkout = rec.CheckoutTime.In(loc).Format(rowDateTimeLayout)
		}
		rows = append(rows, row)
	}
	return rows
}

// EmployeeHistoryHandler lists every employee's punches for an admin.
func (s *Server) EmployeeHistoryHandler() (http.HandlerFunc, error) {
	tmpl, err := ParseTemplate("employee_history.html")
	if err != nil {
		return nil, fmt.Errorf("[Server EmployeeHistoryHandler] failed to parse employee history template: %w", err)
	}
	filterKeys := []string{filterEmployeeName, filterEmployeeID, filterLocation, filterDate}

	return func(w http.ResponseWriter, r *http.Request) {
		_, session := sessionFromContext(r.Context())
		q := r.URL.Query()
		loc := s.viewerLocation(r)
		tq := newTableQuery(RouteEmployeeHistory, q, filterKeys)
		window := parseWindow(q, employeeHistoryPageSizes, employeeHistoryPageSizes[0])
		criteria := parseCriteria(q, filterKeys, loc)

		data := EmployeeHistoryPageData{
			EmployeeName: criteria.EmployeeName,
			EmployeeID:   criteria.EmployeeID,
			Location:     criteria.Location,
			Date:         criteria.Date,
			ClearURL:     tq.withoutFilters().pageURL(window.WithPageIndex(0)),
			Action:       RouteEmployeeHistory,
		}

		adminID, err := session.EmployeeID()
		if err != nil {
			logging.FromContext(r.Context()).Err(err).Msg("admin history without a usable admin id")
			data.Error = historyError(err, msgEmployeeFetchFailed)
			s.renderPage(w, r, session, "Employee History", tmpl, data)
			return
		}

		recs, err := s.api.AdminHistory(r.Context(), session.AccessToken, adminID)
		if err != nil {
			logging.FromContext(r.Context()).Err(err).Msg("failed to fetch employee history")
			data.Error = msgEmployeeFetchFailed
			if errors.Is(err, apperrors.ErrMissingCredentials) {
				data.Error = msgMissingIdentity
			}
			s.renderPage(w, r, session, "Employee History", tmpl, data)
			return
		}

		page := records.Paginate(recs, criteria, window)
		data.Rows = toEmployeeRows(page.Rows, loc)
		data.Pagination = tq.pagination(page, employeeHistoryPageSizes)
		s.renderPage(w, r, session, "Employee History", tmpl, data)
	}, nil
}
