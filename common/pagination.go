package common

// PageQuery carries the page/limit query parameters shared by the list
// endpoints. Out-of-range values are clamped, not rejected.
type PageQuery struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=10"`
}

const maxPageLimit = 100

// Clamp normalizes page to >= 1 and limit to [1, 100].
func (q *PageQuery) Clamp() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 1
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}
}

// Offset returns the row offset for the current page.
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPagination computes the pagination block for a page of results.
// totalPages is ceil(total/limit), 0 when the set is empty. A page past the
// end still reports hasPrev from its own position.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
