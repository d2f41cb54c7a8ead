package viewmodel

// Pagination contains pagination metadata for list views. TotalPages is
// derived from the total row count, so the last page number is always known.
type Pagination struct {
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	StartIndex int
	EndIndex   int
	PrevURL    string
	NextURL    string
}
