package api

import (
	"github.com/mybooks/mybooks-server/internal/store"
)

// PageQuery is the pagination part of list inputs.
type PageQuery struct {
	Page    int `query:"page" minimum:"1" default:"1" doc:"Page number, starting at 1"`
	PerPage int `query:"per_page" minimum:"0" maximum:"100" doc:"Items per page (default: server page size)"`
}

func (s *Server) pageParams(q PageQuery) store.PageParams {
	p := store.PageParams{Page: q.Page, PerPage: q.PerPage}
	if p.PerPage == 0 {
		p.PerPage = s.opts.PageSize
	}
	p.Normalize()
	return p
}

// PageResponse is a page of items with its position.
type PageResponse[T any] struct {
	Items   []T `json:"items" doc:"Items on this page"`
	Page    int `json:"page" doc:"Current page"`
	PerPage int `json:"per_page" doc:"Page size"`
	Total   int `json:"total" doc:"Total matching items"`
	Pages   int `json:"pages" doc:"Number of pages"`
}

func pageResponse[S, T any](p *store.Page[S], conv func(S) T) PageResponse[T] {
	items := make([]T, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, conv(it))
	}
	return PageResponse[T]{Items: items, Page: p.Page, PerPage: p.PerPage, Total: p.Total, Pages: p.NumPages()}
}
