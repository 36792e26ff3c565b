package records

// Window is the visible page of a table.
type Window struct {
	PageIndex int
	PageSize  int
}

func NewWindow(pageSize int) Window {
	if pageSize <= 0 {
		pageSize = 1
	}
	return Window{PageSize: pageSize}
}

// WithPageSize changes the page size, going back to the first page whenever
// the size actually changes.
func (w Window) WithPageSize(size int) Window {
	if size <= 0 || size == w.PageSize {
		return w
	}
	return Window{PageIndex: 0, PageSize: size}
}

func (w Window) WithPageIndex(index int) Window {
	if index < 0 {
		index = 0
	}
	w.PageIndex = index
	return w
}

func (w Window) Offset() int {
	return w.PageIndex * w.PageSize
}
