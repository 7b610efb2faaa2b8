package services

import "math"

// Pagination bounds
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is one page of a listing
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

// NewPage builds a page from a slice of items and the total count
func NewPage[T any](items []T, page, pageSize, total int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
}

// NormalizePage validates page and pageSize. A zero pageSize selects DefaultPageSize.
// Returns the page size to use and the row offset.
func NormalizePage(page, pageSize int) (int, int, error) {
	if page < 1 {
		return 0, 0, NewValidationError(Violation{
			Field: "page", Rule: "page.min", Message: "'Page' must be greater than or equal to 1.",
		})
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return 0, 0, NewValidationError(Violation{
			Field: "pageSize", Rule: "pageSize.range", Message: "'Page Size' must be between 1 and 100.",
		})
	}
	if page-1 > math.MaxInt/pageSize {
		return 0, 0, NewValidationError(Violation{
			Field: "page", Rule: "page.max", Message: "'Page' is out of range.",
		})
	}
	return pageSize, (page - 1) * pageSize, nil
}
