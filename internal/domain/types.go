package domain

// ID is used across domain entities.
type ID int64

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// Pagination carries paging params and totals.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total,omitempty"`
}

// Offset returns the row offset for the current page. Page is 1-based.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// NormalizePagination clamps page/limit the same way the list handlers do.
func NormalizePagination(page, limit int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return Pagination{Page: page, PageSize: limit}
}

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID    ID     `json:"userId"`
	Role      string `json:"role"`
	RequestID string `json:"-"`
}

func (r RequestContext) IsAdmin() bool { return r.Role == RoleAdmin }
