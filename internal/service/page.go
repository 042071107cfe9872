package service

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int64
	Size   int64
}

// NewPage clamps the request into range: number >= 1, 1 <= size <= MaxPageSize.
// A zero size selects DefaultPageSize.
func NewPage(number, size int64) Page {
	if number < 1 {
		number = 1
	}
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Skip() int64 { return (p.Number - 1) * p.Size }

// PageResult is one page of a listing.
type PageResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	TotalPages int64 `json:"totalPages"`
}

func newPageResult[T any](items []T, total int64, p Page) *PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PageResult[T]{
		Items:      items,
		Total:      total,
		Page:       p.Number,
		TotalPages: (total + p.Size - 1) / p.Size,
	}
}
