package worklist

// Window is a backend-driven pagination request, clamped to the range the
// backend's reported total allows.
type Window struct {
	Page      int
	PageSize  int
	PageCount int
}

// Paginate computes the page window for a listing of total items. The
// backend's total is trusted; out-of-range page requests are clamped to the
// nearest valid page rather than rejected.
func Paginate(total, page, pageSize int) Window {
	if pageSize < 1 {
		pageSize = 20
	}

	pageCount := total / pageSize
	if total%pageSize != 0 || pageCount == 0 {
		pageCount++
	}

	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}

	return Window{Page: page, PageSize: pageSize, PageCount: pageCount}
}
