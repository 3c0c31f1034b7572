package repository

import "math"

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PageRequest struct {
	Page     int
	PageSize int
}

// clamp returns a request with the page defaulted and the size bounded,
// so repositories never see a zero or runaway window.
func (r PageRequest) clamp() PageRequest {
	page := r.Page
	if page < 1 {
		page = DefaultPage
	}
	pageSize := r.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return PageRequest{Page: page, PageSize: pageSize}
}

func (r PageRequest) offset() int {
	return (r.Page - 1) * r.PageSize
}

type PageResult[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

func (p *PageResult[T]) finish() {
	if p.Total <= 0 || p.PageSize <= 0 {
		p.TotalPages = 0
		return
	}
	p.TotalPages = int(math.Ceil(float64(p.Total) / float64(p.PageSize)))
}
