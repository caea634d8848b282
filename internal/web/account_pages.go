package web

import (
	"net/http"

	"github.com/mybooks/mybooks-server/internal/auth"
	domainerrors "github.com/mybooks/mybooks-server/internal/errors"
	"github.com/mybooks/mybooks-server/internal/service"
)

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	v := s.newView(r, "Log in")
	v.Form["next"] = r.URL.Query().Get("next")
	s.render(w, r, http.StatusOK, "login", v)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	username := r.PostForm.Get("username")
	next := r.PostForm.Get("next")
	if next == "" {
		next = r.URL.Query().Get("next")
	}

	res, err := s.services.Auth.Login(r.Context(), service.LoginInput{
		Username: username,
		Password: r.PostForm.Get("password"),
	}, auth.TokenKindSession)
	if err != nil {
		// Bad credentials re-render the form like any validation error.
		v := s.newView(r, "Log in")
		v.Form["username"] = username
		v.Form["next"] = next
		var domainErr *domainerrors.Error
		switch {
		case domainerrors.FieldErrors(err) != nil:
			v.Errors = domainerrors.FieldErrors(err)
		case domainerrors.As(err, &domainErr):
			v.Errors = map[string]string{"form": domainErr.Message}
		default:
			s.logger.Error("login failed", "error", err)
			v.Errors = map[string]string{"form": "Something went wrong. Please try again."}
		}
		s.render(w, r, http.StatusOK, "login", v)
		return
	}

	s.setSession(w, res.Token, res.ExpiresAt)
	redirect(w, r, safeNext(next))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearCookie(w, sessionCookie)
	redirect(w, r, "/login/")
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register", s.newView(r, "Register"))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	values := formValues(r.PostForm, "username", "email")
	if r.PostForm.Get("password2") == "" {
		v := s.newView(r, "Register")
		v.Form = values
		v.Errors = map[string]string{"password2": "is required"}
		s.render(w, r, http.StatusOK, "register", v)
		return
	}

	_, _, err := s.services.Auth.Register(r.Context(), service.RegisterInput{
		Username:        values["username"],
		Password:        r.PostForm.Get("password1"),
		PasswordConfirm: r.PostForm.Get("password2"),
		Email:           values["email"],
	})
	if err != nil {
		s.fail(w, r, err, "/register/", func(errs map[string]string) {
			v := s.newView(r, "Register")
			v.Form = values
			v.Errors = registerErrors(errs)
			s.render(w, r, http.StatusOK, "register", v)
		})
		return
	}

	s.setFlash(w, "success", "Account created. Please log in.")
	redirect(w, r, "/login/")
}

// registerErrors maps service field names onto the form's inputs.
func registerErrors(errs map[string]string) map[string]string {
	out := make(map[string]string, len(errs))
	for k, msg := range errs {
		switch k {
		case "password":
			k = "password1"
		case "password_confirm":
			k = "password2"
		}
		out[k] = msg
	}
	return out
}
