// Package projection holds read-side shapes shared across bounded contexts.
package projection

import "math"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps Offset within int for every accepted page size.
	MaxPage = math.MaxInt / MaxPageSize
)

// PageRequest selects a zero-based page.
type PageRequest struct {
	Page int
	Size int
}

// Normalize applies the default size and clamps out-of-range values.
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 0 {
		r.Page = 0
	}
	if r.Page > MaxPage {
		r.Page = MaxPage
	}
	if r.Size <= 0 {
		r.Size = DefaultPageSize
	}
	if r.Size > MaxPageSize {
		r.Size = MaxPageSize
	}
	return r
}

// Offset is the number of elements before the page.
func (r PageRequest) Offset() int {
	return r.Page * r.Size
}

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Items         []T
	Page          int
	Size          int
	TotalElements int64
}

// TotalPages derives the page count from TotalElements and Size.
func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalElements + int64(p.Size) - 1) / int64(p.Size))
}

// Map converts the items of a page, keeping the paging fields.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := Page[U]{Page: p.Page, Size: p.Size, TotalElements: p.TotalElements, Items: make([]U, 0, len(p.Items))}
	for _, item := range p.Items {
		out.Items = append(out.Items, fn(item))
	}
	return out
}
