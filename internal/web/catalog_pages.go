package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/service"
	"github.com/mybooks/mybooks-server/internal/store"
)

type catalogHandlerFunc func(w http.ResponseWriter, r *http.Request, kind domain.Kind)

// catalogHandler binds a handler shared by authors, categories and
// publishers to one kind.
func (s *Server) catalogHandler(kind domain.Kind, h catalogHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(w, r, kind)
	}
}

type catalogListData struct {
	Kind     domain.Kind
	Entities []*domain.CatalogEntity
	Name     string
}

type catalogDetailData struct {
	Entity    *domain.CatalogEntity
	Books     []*domain.Book
	CanModify bool
}

type catalogFormData struct {
	Kind   domain.Kind
	Action string
	Entity *domain.CatalogEntity // nil when creating
}

func (s *Server) handleCatalogList(w http.ResponseWriter, r *http.Request, kind domain.Kind) {
	name := r.URL.Query().Get("name")
	page, err := s.services.Catalog.List(r.Context(), kind, store.NameFilter{Name: name}, s.pageParams(r))
	if err != nil {
		s.fail(w, r, err, "", nil)
		return
	}

	v := s.newView(r, kind.PluralLabel())
	v.Data = catalogListData{Kind: kind, Entities: page.Items, Name: name}
	v.Pager = newPager(r, page)
	s.render(w, r, http.StatusOK, "catalog_list", v)
}

func (s *Server) handleCatalogDetail(w http.ResponseWriter, r *http.Request, kind domain.Kind) {
	id := chi.URLParam(r, "id")
	entity, err := s.services.Catalog.Get(r.Context(), kind, id)
	if err != nil {
		s.fail(w, r, err, "", nil)
		return
	}
	books, err := s.services.Catalog.BooksFor(r.Context(), kind, id)
	if err != nil {
		s.fail(w, r, err, "", nil)
		return
	}

	actor := domain.ActorFrom(r.Context())
	v := s.newView(r, entity.Name)
	v.Data = catalogDetailData{
		Entity:    entity,
		Books:     books,
		CanModify: actor != nil && domain.CanModify(actor, entity.AddedBy).Allowed(),
	}
	s.render(w, r, http.StatusOK, "catalog_detail", v)
}

func (s *Server) handleCatalogCreateForm(w http.ResponseWriter, r *http.Request, kind domain.Kind) {
	if !requireLogin(w, r) {
		return
	}
	v := s.newView(r, "Add "+kind.Label())
	v.Data = catalogFormData{Kind: kind, Action: r.URL.Path}
	s.render(w, r, http.StatusOK, "catalog_form", v)
}

func (s *Server) handleCatalogCreate(w http.ResponseWriter, r *http.Request, kind domain.Kind) {
	if !requireLogin(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	name := r.PostForm.Get("name")
	entity, err := s.services.Catalog.Create(r.Context(), domain.ActorFrom(r.Context()), kind, service.CatalogInput{Name: name})
	if err != nil {
		s.fail(w, r, err, "/"+string(kind)+"/list/", func(errs map[string]string) {
			v := s.newView(r, "Add "+kind.Label())
			v.Form["name"] = name
			v.Errors = errs
			v.Data = catalogFormData{Kind: kind, Action: r.URL.Path}
			s.render(w, r, http.StatusOK, "catalog_form", v)
		})
		return
	}

	s.setFlash(w, "success", entity.Name+" was created successfully!")
	redirect(w, r, catalogURL(kind, entity.ID))
}

func (s *Server) handleCatalogUpdateForm(w http.ResponseWriter, r *http.Request, kind domain.Kind) {
	if !requireLogin(w, r) {
		return
	}
	entity, err := s.services.Catalog.Get(r.Context(), kind, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, "", nil)
		return
	}

	if !s.allowModify(w, r, entity.AddedBy, service.DeniedMessage(kind, "updated"), catalogURL(kind, entity.ID)) {
		return
	}

	v := s.newView(r, "Edit "+entity.Name)
	v.Form["name"] = entity.Name
	v.Data = catalogFormData{Kind: kind, Action: r.URL.Path, Entity: entity}
	s.render(w, r, http.StatusOK, "catalog_form", v)
}

func (s *Server) handleCatalogUpdate(w http.ResponseWriter, r *http.Request, kind domain.Kind) {
	if !requireLogin(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	name := r.PostForm.Get("name")
	entity, err := s.services.Catalog.Update(r.Context(), domain.ActorFrom(r.Context()), kind, id, service.CatalogInput{Name: name})
	if err != nil {
		s.fail(w, r, err, catalogURL(kind, id), func(errs map[string]string) {
			v := s.newView(r, "Edit "+kind.Label())
			v.Form["name"] = name
			v.Errors = errs
			v.Data = catalogFormData{Kind: kind, Action: r.URL.Path, Entity: &domain.CatalogEntity{ID: id, Kind: kind}}
			s.render(w, r, http.StatusOK, "catalog_form", v)
		})
		return
	}

	s.setFlash(w, "success", entity.Name+" was updated successfully!")
	redirect(w, r, catalogURL(kind, id))
}

func (s *Server) handleCatalogDeleteConfirm(w http.ResponseWriter, r *http.Request, kind domain.Kind) {
	if !requireLogin(w, r) {
		return
	}
	entity, err := s.services.Catalog.Get(r.Context(), kind, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, "", nil)
		return
	}

	if !s.allowModify(w, r, entity.AddedBy, service.DeniedMessage(kind, "deleted"), catalogURL(kind, entity.ID)) {
		return
	}

	v := s.newView(r, "Delete "+entity.Name)
	v.Data = confirmDeleteData{Name: entity.Name, Cancel: catalogURL(kind, entity.ID)}
	s.render(w, r, http.StatusOK, "confirm_delete", v)
}

func (s *Server) handleCatalogDelete(w http.ResponseWriter, r *http.Request, kind domain.Kind) {
	if !requireLogin(w, r) {
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.services.Catalog.Delete(r.Context(), domain.ActorFrom(r.Context()), kind, id); err != nil {
		s.fail(w, r, err, catalogURL(kind, id), nil)
		return
	}

	s.setFlash(w, "success", kind.Label()+" was deleted successfully!")
	redirect(w, r, "/"+string(kind)+"/list/")
}
