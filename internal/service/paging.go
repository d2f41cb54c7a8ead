package service

// DefaultPageSize is the number of rows per table page.
const DefaultPageSize = 10

// pageCount derives the number of pages from a row count. A page beyond the
// last one is still a valid request; it just renders no rows.
func pageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// pageWindow normalizes a 1-based page number and size into limit/offset.
func pageWindow(page, pageSize int) (limit, offset int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}
