package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/service"
	"github.com/mybooks/mybooks-server/internal/store"
)

// bookFields are the book form inputs, in display order.
var bookFields = []string{"title", "authors", "categories", "publisher", "year", "isbn", "description", "thumbnail", "rank", "owned"}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// formValues copies the named fields from a parsed form.
func formValues(form url.Values, fields ...string) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f] = form.Get(f)
	}
	return out
}

// bookInput converts submitted form values. A malformed number is
// reported in errs instead of being silently dropped.
func bookInput(values map[string]string) (service.BookInput, map[string]string) {
	in := service.BookInput{
		Title:       values["title"],
		Thumbnail:   strings.TrimSpace(values["thumbnail"]),
		Description: values["description"],
		ISBN:        strings.TrimSpace(values["isbn"]),
		Authors:     values["authors"],
		Categories:  values["categories"],
		Publisher:   values["publisher"],
		Owned:       values["owned"],
	}

	var errs map[string]string
	if y := strings.TrimSpace(values["year"]); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			errs = map[string]string{"year": "Enter a whole number."}
		} else {
			in.Year = &year
		}
	}
	if rk := strings.TrimSpace(values["rank"]); rk != "" {
		if rank, err := strconv.ParseFloat(rk, 64); err == nil {
			in.Rank = &rank
		}
	}
	return in, errs
}

// bookFormValues renders a service input back into form fields.
func bookFormValues(in service.BookInput) map[string]string {
	values := map[string]string{
		"title":       in.Title,
		"authors":     in.Authors,
		"categories":  in.Categories,
		"publisher":   in.Publisher,
		"isbn":        in.ISBN,
		"description": in.Description,
		"thumbnail":   in.Thumbnail,
		"owned":       in.Owned,
	}
	if in.Year != nil {
		values["year"] = strconv.Itoa(*in.Year)
	}
	if in.Rank != nil {
		values["rank"] = strconv.FormatFloat(*in.Rank, 'f', -1, 64)
	}
	return values
}

// bookFilter reads the list filters. Empty values and unknown keys are
// ignored.
func bookFilter(q url.Values) store.BookFilter {
	return store.BookFilter{
		Title:       strings.TrimSpace(q.Get("title")),
		Year:        strings.TrimSpace(q.Get("year")),
		ISBN:        strings.TrimSpace(q.Get("isbn")),
		Description: strings.TrimSpace(q.Get("description")),
		Thumbnail:   strings.TrimSpace(q.Get("thumbnail")),
		Author:      strings.TrimSpace(q.Get("authors")),
		Category:    strings.TrimSpace(q.Get("categories")),
		Publisher:   strings.TrimSpace(q.Get("publisher")),
	}
}

// pager links list pages while keeping the active filters.
type pager struct {
	Page    int
	Pages   int
	Total   int
	PrevURL string
	NextURL string
}

func newPager[T any](r *http.Request, p *store.Page[T]) *pager {
	pg := &pager{Page: p.Page, Pages: p.NumPages(), Total: p.Total}

	link := func(n int) string {
		q := r.URL.Query()
		q.Del("page")
		if n > 1 {
			q.Set("page", strconv.Itoa(n))
		}
		if enc := q.Encode(); enc != "" {
			return r.URL.Path + "?" + enc
		}
		return r.URL.Path
	}

	if p.Page > 1 {
		pg.PrevURL = link(p.Page - 1)
	}
	if p.HasNext() {
		pg.NextURL = link(p.Page + 1)
	}
	return pg
}

func bookURL(id string) string { return "/book/" + id + "/" }

func catalogURL(kind domain.Kind, id string) string {
	return "/" + string(kind) + "/" + id + "/"
}

func profileURL(id string) string { return "/profile/" + id + "/" }
