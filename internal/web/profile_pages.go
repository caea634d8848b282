package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/service"
	"github.com/mybooks/mybooks-server/internal/store"
)

type profileListData struct {
	Profiles []*domain.Profile
	Name     string
}

type profileFormData struct {
	Action  string
	Profile *domain.Profile
}

// Profile pages are for members only.
func (s *Server) handleProfileList(w http.ResponseWriter, r *http.Request) {
	if !requireLogin(w, r) {
		return
	}

	name := r.URL.Query().Get("name")
	page, err := s.services.Profiles.List(r.Context(), store.NameFilter{Name: name}, s.pageParams(r))
	if err != nil {
		s.fail(w, r, err, "", nil)
		return
	}

	v := s.newView(r, "Profiles")
	v.Data = profileListData{Profiles: page.Items, Name: name}
	v.Pager = newPager(r, page)
	s.render(w, r, http.StatusOK, "profile_list", v)
}

func (s *Server) handleProfileDetail(w http.ResponseWriter, r *http.Request) {
	if !requireLogin(w, r) {
		return
	}

	detail, err := s.services.Profiles.Detail(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, "", nil)
		return
	}

	v := s.newView(r, detail.Profile.Name)
	v.Data = detail
	s.render(w, r, http.StatusOK, "profile_detail", v)
}

func (s *Server) handleProfileUpdateForm(w http.ResponseWriter, r *http.Request) {
	if !requireLogin(w, r) {
		return
	}

	id := chi.URLParam(r, "id")
	profile, err := s.services.Profiles.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "", nil)
		return
	}
	if !domain.CanManageProfile(domain.ActorFrom(r.Context()), id) {
		s.setFlash(w, "error", "You have no power here!")
		redirect(w, r, profileURL(id))
		return
	}

	v := s.newView(r, "Edit profile")
	v.Form["name"] = profile.Name
	v.Data = profileFormData{Action: r.URL.Path, Profile: profile}
	s.render(w, r, http.StatusOK, "profile_form", v)
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	if !requireLogin(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	name := r.PostForm.Get("name")
	profile, err := s.services.Profiles.Update(r.Context(), domain.ActorFrom(r.Context()), id, service.ProfileInput{Name: name})
	if err != nil {
		s.fail(w, r, err, profileURL(id), func(errs map[string]string) {
			v := s.newView(r, "Edit profile")
			v.Form["name"] = name
			v.Errors = errs
			v.Data = profileFormData{Action: r.URL.Path, Profile: &domain.Profile{ID: id}}
			s.render(w, r, http.StatusOK, "profile_form", v)
		})
		return
	}

	redirect(w, r, profileURL(profile.ID))
}

// handleFriendToggle reads are_friends ("True" or "False") and returns to
// the friend's page.
func (s *Server) handleFriendToggle(w http.ResponseWriter, r *http.Request) {
	if !requireLogin(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	id, friendID := chi.URLParam(r, "id"), chi.URLParam(r, "friendID")
	_, err := s.services.Profiles.SetFriend(r.Context(), domain.ActorFrom(r.Context()), id, friendID, r.PostForm.Get("are_friends"))
	if err != nil {
		s.fail(w, r, err, profileURL(friendID), nil)
		return
	}
	redirect(w, r, profileURL(friendID))
}

// handleOwnedToggle reads owned ("True" or "False") and returns to the
// book's page.
func (s *Server) handleOwnedToggle(w http.ResponseWriter, r *http.Request) {
	if !requireLogin(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	id, bookID := chi.URLParam(r, "id"), chi.URLParam(r, "bookID")
	_, err := s.services.Profiles.SetOwned(r.Context(), domain.ActorFrom(r.Context()), id, bookID, r.PostForm.Get("owned"))
	if err != nil {
		s.fail(w, r, err, bookURL(bookID), nil)
		return
	}
	redirect(w, r, bookURL(bookID))
}
