package orm

// Pagination is the page metadata returned alongside a page of rows.
type Pagination struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PerPage  int   `json:"perPage"`
	LastPage int   `json:"lastPage"`
	HasNext  bool  `json:"hasNextPage"`
	HasPrev  bool  `json:"hasPreviousPage"`
	NextPage int   `json:"nextPage"`
	PrevPage int   `json:"previousPage"`
}

// NewPagination computes page metadata for total rows. Pages start at 1;
// page values below 1 are treated as 1.
func NewPagination(total int64, page, perPage int) Pagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}

	last := int((total + int64(perPage) - 1) / int64(perPage))
	return Pagination{
		Total:    total,
		Page:     page,
		PerPage:  perPage,
		LastPage: last,
		HasNext:  int64(perPage*page) < total,
		HasPrev:  page > 1,
		NextPage: page + 1,
		PrevPage: page - 1,
	}
}

// Offset is the number of rows to skip for this page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}
