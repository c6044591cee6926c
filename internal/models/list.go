package models

// Pagination bounds shared by every list endpoint
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListParams holds the requested page window
type ListParams struct {
	Page  int
	Limit int
}

// DefaultListParams returns page 1 with the default limit
func DefaultListParams() ListParams {
	return ListParams{Page: DefaultPage, Limit: DefaultLimit}
}

// Offset converts the page number into a row offset
func (p ListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Pagination is the pagination block of list responses
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// NewPagination builds the pagination block for a page of results.
// Total is the number of rows returned in this page, not a table-wide count.
func NewPagination(params ListParams, returned int) Pagination {
	return Pagination{
		Page:  params.Page,
		Limit: params.Limit,
		Total: returned,
	}
}

// ListResult is a page of items with its pagination block
type ListResult[T any] struct {
	Items      []T
	Pagination Pagination
}

// NewListResult wraps items for the response, replacing nil with an empty slice
func NewListResult[T any](params ListParams, items []T) *ListResult[T] {
	if items == nil {
		items = []T{}
	}
	return &ListResult[T]{
		Items:      items,
		Pagination: NewPagination(params, len(items)),
	}
}
