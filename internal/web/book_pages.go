package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/service"
)

type bookListData struct {
	Books []*domain.Book
	Query map[string]string
}

type bookDetailData struct {
	*service.BookDetail
	CanModify bool
}

type bookFormData struct {
	Action string
	Book   *domain.Book // nil when creating
}

func (s *Server) handleBookList(w http.ResponseWriter, r *http.Request) {
	page, err := s.services.Books.List(r.Context(), bookFilter(r.URL.Query()), s.pageParams(r))
	if err != nil {
		s.fail(w, r, err, "", nil)
		return
	}

	v := s.newView(r, "Books")
	v.Data = bookListData{
		Books: page.Items,
		Query: formValues(r.URL.Query(), "title", "authors", "categories", "publisher", "year", "isbn"),
	}
	v.Pager = newPager(r, page)
	s.render(w, r, http.StatusOK, "book_list", v)
}

func (s *Server) handleBookDetail(w http.ResponseWriter, r *http.Request) {
	actor := domain.ActorFrom(r.Context())
	detail, err := s.services.Books.Detail(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, "", nil)
		return
	}
	s.renderBookDetail(w, r, http.StatusOK, detail, nil)
}

func (s *Server) renderBookDetail(w http.ResponseWriter, r *http.Request, status int, detail *service.BookDetail, errs map[string]string) {
	actor := domain.ActorFrom(r.Context())
	v := s.newView(r, detail.Book.Title)
	v.Errors = errs
	v.Data = bookDetailData{
		BookDetail: detail,
		CanModify:  actor != nil && domain.CanModify(actor, detail.Book.AddedBy).Allowed(),
	}
	if detail.MyVote != nil {
		v.Form["value"] = fmt.Sprint(detail.MyVote.Value)
	}
	s.render(w, r, status, "book_detail", v)
}

func (s *Server) handleBookCreateForm(w http.ResponseWriter, r *http.Request) {
	if !requireLogin(w, r) {
		return
	}

	v := s.newView(r, "Add book")
	if gid := chi.URLParam(r, "gid"); gid != "" {
		in, err := s.services.Metadata.Prefill(r.Context(), gid)
		if err != nil {
			s.fail(w, r, err, "/gbooks/", nil)
			return
		}
		v.Form = bookFormValues(in)
	}
	v.Data = bookFormData{Action: r.URL.Path}
	s.render(w, r, http.StatusOK, "book_form", v)
}

func (s *Server) handleBookCreate(w http.ResponseWriter, r *http.Request) {
	if !requireLogin(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	values := formValues(r.PostForm, bookFields...)
	rerender := func(errs map[string]string) {
		v := s.newView(r, "Add book")
		v.Form = values
		v.Errors = errs
		v.Data = bookFormData{Action: r.URL.Path}
		s.render(w, r, http.StatusOK, "book_form", v)
	}

	in, errs := bookInput(values)
	if errs != nil {
		rerender(errs)
		return
	}

	book, err := s.services.Books.Create(r.Context(), domain.ActorFrom(r.Context()), in)
	if err != nil {
		s.fail(w, r, err, "/book/list/", rerender)
		return
	}

	s.setFlash(w, "success", book.Title+" was created successfully!")
	redirect(w, r, bookURL(book.ID))
}

func (s *Server) handleBookUpdateForm(w http.ResponseWriter, r *http.Request) {
	if !requireLogin(w, r) {
		return
	}

	book, err := s.services.Books.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, "", nil)
		return
	}

	if !s.allowModify(w, r, book.AddedBy, service.DeniedMessage("book", "updated"), bookURL(book.ID)) {
		return
	}

	v := s.newView(r, "Edit "+book.Title)
	v.Form = bookFormValues(service.BookInputFrom(book))
	v.Data = bookFormData{Action: r.URL.Path, Book: book}
	s.render(w, r, http.StatusOK, "book_form", v)
}

func (s *Server) handleBookUpdate(w http.ResponseWriter, r *http.Request) {
	if !requireLogin(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	book, err := s.services.Books.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "", nil)
		return
	}

	values := formValues(r.PostForm, bookFields...)
	rerender := func(errs map[string]string) {
		v := s.newView(r, "Edit "+book.Title)
		v.Form = values
		v.Errors = errs
		v.Data = bookFormData{Action: r.URL.Path, Book: book}
		s.render(w, r, http.StatusOK, "book_form", v)
	}

	in, errs := bookInput(values)
	if errs != nil {
		rerender(errs)
		return
	}
	// The update form has no owned field; ownership is toggled separately.
	in.Owned = ""

	updated, err := s.services.Books.Update(r.Context(), domain.ActorFrom(r.Context()), id, in)
	if err != nil {
		s.fail(w, r, err, bookURL(id), rerender)
		return
	}

	s.setFlash(w, "success", updated.Title+" was updated successfully!")
	redirect(w, r, bookURL(id))
}

func (s *Server) handleBookDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	if !requireLogin(w, r) {
		return
	}

	book, err := s.services.Books.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, "", nil)
		return
	}

	if !s.allowModify(w, r, book.AddedBy, service.DeniedMessage("book", "deleted"), bookURL(book.ID)) {
		return
	}

	v := s.newView(r, "Delete "+book.Title)
	v.Data = confirmDeleteData{Name: book.Title, Cancel: bookURL(book.ID)}
	s.render(w, r, http.StatusOK, "confirm_delete", v)
}

func (s *Server) handleBookDelete(w http.ResponseWriter, r *http.Request) {
	if !requireLogin(w, r) {
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.services.Books.Delete(r.Context(), domain.ActorFrom(r.Context()), id); err != nil {
		s.fail(w, r, err, bookURL(id), nil)
		return
	}

	s.setFlash(w, "success", "Book was deleted successfully!")
	redirect(w, r, "/book/list/")
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	if !requireLogin(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	actor := domain.ActorFrom(r.Context())

	rerender := func(errs map[string]string) {
		detail, err := s.services.Books.Detail(r.Context(), actor, id)
		if err != nil {
			s.fail(w, r, err, "", nil)
			return
		}
		s.renderBookDetail(w, r, http.StatusOK, detail, errs)
	}

	value, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("value")))
	if err != nil {
		rerender(map[string]string{"value": "Enter a whole number."})
		return
	}

	if _, err := s.services.Votes.Cast(r.Context(), actor, id, service.VoteInput{Value: value}); err != nil {
		s.fail(w, r, err, bookURL(id), rerender)
		return
	}
	redirect(w, r, bookURL(id))
}

// confirmDeleteData feeds the shared delete confirmation page.
type confirmDeleteData struct {
	Name   string
	Cancel string
}
