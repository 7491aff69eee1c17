package domain

import "math"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPageNumber keeps Offset within 32 bits for any page size.
	MaxPageNumber = math.MaxInt32 / MaxPageSize
)

type Page struct {
	Number int
	Size   int
}

func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Limit() int {
	return p.Size
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// PageResult is one page of a listing plus the size of the whole listing.
type PageResult[T any] struct {
	Items      []T
	TotalCount int
	PageSize   int
}

func (r PageResult[T]) TotalPages() int {
	if r.PageSize == 0 || r.TotalCount == 0 {
		return 0
	}
	return (r.TotalCount + r.PageSize - 1) / r.PageSize
}
