package store

// Page size bounds for offset pagination.
const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// PageParams contains offset pagination request parameters.
type PageParams struct {
	Page     int // 1-based page number (defaults to 1)
	PageSize int // Items per page (defaults to 10, capped at 50)
}

// PagedResult contains one page of data and paging metadata.
type PagedResult[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasMore  bool `json:"has_more"`
}

// Validate clamps page parameters to their allowed ranges.
func (p *PageParams) Validate() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset returns the number of items to skip for this page.
func (p *PageParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}
