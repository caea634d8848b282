package store

// DefaultPerPage is the page size used when none is configured.
const DefaultPerPage = 10

// MaxPerPage caps caller-supplied page sizes.
const MaxPerPage = 100

// PageParams selects a 1-based page of an ordered listing.
type PageParams struct {
	Page    int
	PerPage int
}

// Normalize clamps the parameters to sane values.
func (p *PageParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
}

// Offset returns the number of rows to skip.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Page is one page of results plus the numbers needed to render a pager.
type Page[T any] struct {
	Items   []T `json:"items"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

// NewPage assembles a page from a normalized request.
func NewPage[T any](items []T, params PageParams, total int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Page: params.Page, PerPage: params.PerPage, Total: total}
}

// NumPages returns the page count; an empty listing still has one page.
func (p *Page[T]) NumPages() int {
	if p.Total == 0 || p.PerPage == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// HasNext reports whether a following page exists.
func (p *Page[T]) HasNext() bool {
	return p.Page < p.NumPages()
}

// HasPrevious reports whether a preceding page exists.
func (p *Page[T]) HasPrevious() bool {
	return p.Page > 1
}

// NextPage returns the following page number.
func (p *Page[T]) NextPage() int {
	return p.Page + 1
}

// PreviousPage returns the preceding page number.
func (p *Page[T]) PreviousPage() int {
	return p.Page - 1
}
