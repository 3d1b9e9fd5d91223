// Package page implements page/limit pagination: parameter clamping, offset
// arithmetic and the result envelope with total-count metadata.
package page

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps Offset within an int for every valid limit.
	MaxPage = math.MaxInt / MaxLimit
)

// Params are the requested page coordinates. Zero values mean "use default".
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps p into the valid range. Out-of-range values are never
// rejected: page < 1 becomes 1 and page > MaxPage becomes MaxPage; limit 0
// becomes DefaultLimit, negative limits become 1 and limits above MaxLimit
// become MaxLimit.
func (p Params) Normalize() Params {
	switch {
	case p.Page < DefaultPage:
		p.Page = DefaultPage
	case p.Page > MaxPage:
		p.Page = MaxPage
	}
	switch {
	case p.Limit == 0:
		p.Limit = DefaultLimit
	case p.Limit < 1:
		p.Limit = 1
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the number of records to skip. p must be normalized.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Metadata describes where a page sits within the full result set.
type Metadata struct {
	Total       int64
	CurrentPage int
	PageSize    int
	TotalPages  int
}

// Result is one page of T plus metadata.
type Result[T any] struct {
	Data     []T
	Metadata Metadata
}

// NewResult combines a page slice with the total count. p must be normalized.
func NewResult[T any](data []T, total int64, p Params) *Result[T] {
	if data == nil {
		data = []T{}
	}
	return &Result[T]{
		Data: data,
		Metadata: Metadata{
			Total:       total,
			CurrentPage: p.Page,
			PageSize:    p.Limit,
			TotalPages:  TotalPages(total, p.Limit),
		},
	}
}

// TotalPages returns ceil(total/limit), or 0 when there is nothing to page.
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	l := int64(limit)
	return int((total + l - 1) / l)
}
