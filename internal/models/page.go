package models

// Page is one slice of a newest-first listing.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	Size    int  `json:"size"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

func (p Page[T]) NextPage() int {
	if !p.HasNext {
		return 0
	}
	return p.Page + 1
}

func (p Page[T]) PrevPage() int {
	if !p.HasPrev {
		return 0
	}
	return p.Page - 1
}

// NormalizePage clamps page numbers below 1 to the first page.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// PageOffset is the number of rows skipped before the given 1-based page.
func PageOffset(page, size int) int {
	return (NormalizePage(page) - 1) * size
}

// NewPage builds a page from rows fetched with LIMIT size+1: a surplus row
// means another page follows and is dropped from Items.
func NewPage[T any](rows []T, page, size int) Page[T] {
	page = NormalizePage(page)
	p := Page[T]{Page: page, Size: size, HasPrev: page > 1}
	if len(rows) > size {
		rows = rows[:size]
		p.HasNext = true
	}
	if rows == nil {
		rows = []T{}
	}
	p.Items = rows
	return p
}
