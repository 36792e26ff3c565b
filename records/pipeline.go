package records

// Page is the result of Paginate.
type Page struct {
	Rows       []AttendanceRecord
	TotalCount int // records matching the criteria, independent of the window
	Window     Window
}

// Filter returns the records matching c, preserving source order.
func Filter(all []AttendanceRecord, c Criteria) []AttendanceRecord {
	if c.IsEmpty() {
		return append([]AttendanceRecord(nil), all...)
	}
	m := c.compile()
	var out []AttendanceRecord
	for _, r := range all {
		if m.match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Paginate filters then slices [index*size, index*size+size). A window past
// the end yields no rows; callers reset the index when the criteria change.
func Paginate(all []AttendanceRecord, c Criteria, w Window) Page {
	filtered := Filter(all, c)
	page := Page{TotalCount: len(filtered), Window: w, Rows: []AttendanceRecord{}}
	if w.PageSize <= 0 || w.PageIndex < 0 {
		return page
	}
	// Checked before multiplying so a huge index cannot overflow the offset.
	if w.PageIndex > len(filtered)/w.PageSize {
		return page
	}

	start := w.Offset()
	if start >= len(filtered) {
		return page
	}
	end := min(start+w.PageSize, len(filtered))
	page.Rows = filtered[start:end]
	return page
}

func (p Page) PageCount() int {
	if p.Window.PageSize <= 0 || p.TotalCount == 0 {
		return 0
	}
	return (p.TotalCount + p.Window.PageSize - 1) / p.Window.PageSize
}

func (p Page) HasPrev() bool {
	return p.Window.PageIndex > 0
}

func (p Page) HasNext() bool {
	return p.Window.PageIndex < p.PageCount()-1
}

// FirstRow and LastRow are the 1-based row numbers shown in "1-10 of 23".
func (p Page) FirstRow() int {
	if len(p.Rows) == 0 {
		return 0
	}
	return p.Window.Offset() + 1
}

func (p Page) LastRow() int {
	if len(p.Rows) == 0 {
		return 0
	}
	return p.Window.Offset() + len(p.Rows)
}

// Locations lists the distinct non-empty locations in first-seen order.
func Locations(all []AttendanceRecord) []string {
	seen := make(map[string]struct{}, len(all))
	var out []string
	for _, r := range all {
		if r.Location == "" {
			continue
		}
		if _, ok := seen[r.Location]; ok {
			continue
		}
		seen[r.Location] = struct{}{}
		out = append(out, r.Location)
	}
	return out
}
