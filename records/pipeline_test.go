package records

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-attendance-portal/internal/utils"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func sample() []AttendanceRecord {
	return []AttendanceRecord{
		{CheckinID: "1", Employee: 1, EmployeeName: utils.Ptr("Alice Smith"), CheckinTime: at("2024-05-01T09:00:00Z"), CheckoutTime: utils.Ptr(at("2024-05-01T17:00:00Z")), Location: "New York, NY, USA"},
		{CheckinID: "2", Employee: 2, EmployeeName: utils.Ptr("Bob Jones"), CheckinTime: at("2024-05-01T10:00:00Z"), Location: "San Francisco, CA, USA"},
		{CheckinID: "3", Employee: 1, EmployeeName: utils.Ptr("Alice Smith"), CheckinTime: at("2024-05-02T09:00:00Z"), Location: "new york, NY, USA"},
		{CheckinID: "4", Employee: 3, CheckinTime: at("2024-05-03T23:30:00Z"), Location: "Berlin, BE, Germany"},
	}
}

func ids(rows []AttendanceRecord) []string {
	out := []string{}
	for _, r := range rows {
		out = append(out, r.CheckinID)
	}
	return out
}

func TestDateFilterMatchesCalendarDay(t *testing.T) {
	recs := []AttendanceRecord{
		{CheckinID: "a", CheckinTime: at("2024-05-01T09:00:00Z"), Location: "NY"},
		{CheckinID: "b", CheckinTime: at("2024-05-02T09:00:00Z"), Location: "SF"},
	}
	page := Paginate(recs, Criteria{Date: "2024-05-01"}, Window{PageIndex: 0, PageSize: 10})
	assert.Equal(t, []string{"a"}, ids(page.Rows))
	assert.Equal(t, 1, page.TotalCount)
}

func TestDateFilterUsesViewerZone(t *testing.T) {
	// 23:30 UTC on the 3rd is already the 4th in Berlin.
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	assert.Equal(t, []string{"4"}, ids(Filter(sample(), Criteria{Date: "2024-05-03"})))
	assert.Empty(t, Filter(sample(), Criteria{Date: "2024-05-03", TimeZone: berlin}))
	assert.Equal(t, []string{"4"}, ids(Filter(sample(), Criteria{Date: "2024-05-04", TimeZone: berlin})))
}

func TestNonNumericIDHidesEverything(t *testing.T) {
	for _, id := range []string{"abc", "1.0", "12abc"} {
		page := Paginate(sample(), Criteria{EmployeeID: id}, Window{PageSize: 10})
		assert.Empty(t, page.Rows, id)
		assert.Equal(t, 0, page.TotalCount, id)
	}
}

func TestIDExactMatch(t *testing.T) {
	assert.Equal(t, []string{"1", "3"}, ids(Filter(sample(), Criteria{EmployeeID: " 1 "})))
	assert.Empty(t, Filter(sample(), Criteria{EmployeeID: "11"}))
}

func TestNameAndLocationAreCaseInsensitiveSubstrings(t *testing.T) {
	assert.Equal(t, []string{"1", "3"}, ids(Filter(sample(), Criteria{EmployeeName: "aLiCe"})))
	assert.Equal(t, []string{"1", "3"}, ids(Filter(sample(), Criteria{Location: "NEW YORK"})))
	assert.Equal(t, []string{"4"}, ids(Filter(sample(), Criteria{EmployeeName: "n/a"})))
}

func TestCriteriaAreAnded(t *testing.T) {
	c := Criteria{EmployeeName: "alice", Location: "york", Date: "2024-05-02"}
	assert.Equal(t, []string{"3"}, ids(Filter(sample(), c)))

	c.EmployeeID = "2"
	assert.Empty(t, Filter(sample(), c))
}

func TestInvalidDateHidesEverything(t *testing.T) {
	assert.Empty(t, Filter(sample(), Criteria{Date: "05/01/2024"}))
}

func TestEmptyCriteriaKeepsOrder(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(Filter(sample(), Criteria{})))
}

func TestPaginateIsIdempotent(t *testing.T) {
	c := Criteria{Location: "usa"}
	w := Window{PageIndex: 1, PageSize: 2}
	assert.Equal(t, Paginate(sample(), c, w), Paginate(sample(), c, w))
}

func TestTotalCountIndependentOfWindow(t *testing.T) {
	var recs []AttendanceRecord
	for i := 0; i < 23; i++ {
		recs = append(recs, AttendanceRecord{CheckinID: fmt.Sprint(i), Employee: i % 3, CheckinTime: at("2024-05-01T09:00:00Z")})
	}
	c := Criteria{EmployeeID: "1"}
	want := len(Filter(recs, c))
	for _, w := range []Window{{0, 1}, {0, 5}, {3, 2}, {100, 10}} {
		assert.Equal(t, want, Paginate(recs, c, w).TotalCount)
	}
}

func TestPaginateSlices(t *testing.T) {
	var recs []AttendanceRecord
	for i := 0; i < 23; i++ {
		recs = append(recs, AttendanceRecord{CheckinID: fmt.Sprint(i)})
	}

	page := Paginate(recs, Criteria{}, Window{PageIndex: 2, PageSize: 10})
	assert.Equal(t, []string{"20", "21", "22"}, ids(page.Rows))
	assert.Equal(t, 23, page.TotalCount)
	assert.Equal(t, 3, page.PageCount())
	assert.True(t, page.HasPrev())
	assert.False(t, page.HasNext())
	assert.Equal(t, 21, page.FirstRow())
	assert.Equal(t, 23, page.LastRow())

	page = Paginate(recs, Criteria{}, Window{PageIndex: 3, PageSize: 10})
	assert.Empty(t, page.Rows)
	assert.NotNil(t, page.Rows)
	assert.Equal(t, 23, page.TotalCount)
	assert.Equal(t, 0, page.FirstRow())
	assert.Equal(t, 0, page.LastRow())
}

func TestPaginateHugeIndex(t *testing.T) {
	var recs []AttendanceRecord
	for i := 0; i < 23; i++ {
		recs = append(recs, AttendanceRecord{CheckinID: fmt.Sprint(i)})
	}

	// Both indexes overflow PageIndex*PageSize: the first wraps negative,
	// the second wraps to a small non-negative offset.
	for _, index := range []int{922337203685477581, 1844674407370955162, math.MaxInt} {
		w := Window{PageIndex: index, PageSize: 10}
		require.NotPanics(t, func() { Paginate(recs, Criteria{}, w) })

		page := Paginate(recs, Criteria{}, w)
		assert.Empty(t, page.Rows, index)
		assert.NotNil(t, page.Rows)
		assert.Equal(t, 23, page.TotalCount)
		assert.False(t, page.HasNext(), index)
		assert.Equal(t, 0, page.LastRow())
	}
}

func TestPaginateEmpty(t *testing.T) {
	page := Paginate(nil, Criteria{}, NewWindow(10))
	assert.Empty(t, page.Rows)
	assert.Equal(t, 0, page.TotalCount)
	assert.Equal(t, 0, page.PageCount())
	assert.False(t, page.HasNext())
}

func TestWindowWithPageSizeResetsIndex(t *testing.T) {
	w := Window{PageIndex: 3, PageSize: 10}
	assert.Equal(t, Window{PageIndex: 0, PageSize: 25}, w.WithPageSize(25))
	assert.Equal(t, w, w.WithPageSize(10))
	assert.Equal(t, w, w.WithPageSize(0))
	assert.Equal(t, 0, w.WithPageIndex(-1).PageIndex)
	assert.Equal(t, 30, w.Offset())
}

func TestLocations(t *testing.T) {
	assert.Equal(t, []string{"New York, NY, USA", "San Francisco, CA, USA", "new york, NY, USA", "Berlin, BE, Germany"}, Locations(sample()))
	assert.Nil(t, Locations(nil))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "N/A", AttendanceRecord{}.DisplayName())
	assert.Equal(t, "N/A", AttendanceRecord{EmployeeName: utils.Ptr("")}.DisplayName())
	assert.Equal(t, "Bob", AttendanceRecord{EmployeeName: utils.Ptr("Bob")}.DisplayName())
	assert.True(t, AttendanceRecord{}.StillPunchedIn())
}
