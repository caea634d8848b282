package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mybooks/mybooks-server/internal/metadata/googlebooks"
)

type gbooksListData struct {
	Volumes  []googlebooks.Volume
	Searched bool
}

// handleGoogleBooksList shows the search form and, when any field is
// filled, the matching volumes. Provider failures show no results.
func (s *Server) handleGoogleBooksList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := googlebooks.SearchParams{
		Title:     strings.TrimSpace(q.Get("title")),
		Authors:   strings.TrimSpace(q.Get("authors")),
		Publisher: strings.TrimSpace(q.Get("publisher")),
		ISBN:      strings.TrimSpace(q.Get("isbn")),
	}

	v := s.newView(r, "Google Books")
	v.Form = formValues(q, "title", "authors", "publisher", "isbn")
	data := gbooksListData{Searched: !params.IsEmpty()}
	if data.Searched {
		data.Volumes = s.services.Metadata.Search(r.Context(), params)
	}
	v.Data = data
	s.render(w, r, http.StatusOK, "gbooks_list", v)
}

func (s *Server) handleGoogleBooksDetail(w http.ResponseWriter, r *http.Request) {
	volume, err := s.services.Metadata.Get(r.Context(), chi.URLParam(r, "gid"))
	if err != nil {
		s.fail(w, r, err, "/gbooks/", nil)
		return
	}

	v := s.newView(r, volume.Title)
	v.Data = volume
	s.render(w, r, http.StatusOK, "gbooks_detail", v)
}
