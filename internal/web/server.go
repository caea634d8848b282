// Package web serves the server-rendered catalog pages.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/ratelimit"
	"github.com/mybooks/mybooks-server/internal/service"
	"github.com/mybooks/mybooks-server/internal/store"
)

//go:embed templates/*.html
var templates embed.FS

// Services groups the business services the pages use.
type Services struct {
	Auth     *service.AuthService
	Books    *service.BookService
	Catalog  *service.CatalogService
	Profiles *service.ProfileService
	Votes    *service.VoteService
	Metadata *service.MetadataService
}

// Options configures the web surface.
type Options struct {
	// SecureCookies marks session and flash cookies Secure; enable behind TLS.
	SecureCookies bool
	PageSize      int
	// LoginLimiter throttles login and registration posts per client IP.
	LoginLimiter *ratelimit.KeyedRateLimiter
}

// Server renders pages and handles form posts.
type Server struct {
	services *Services
	opts     Options
	pages    map[string]*template.Template
	logger   *slog.Logger
}

// NewServer parses the embedded templates and registers the pages on router.
func NewServer(router chi.Router, services *Services, opts Options, logger *slog.Logger) (*Server, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = store.DefaultPerPage
	}

	pages, err := parsePages(templates)
	if err != nil {
		return nil, err
	}

	s := &Server{
		services: services,
		opts:     opts,
		pages:    pages,
		logger:   logger,
	}

	router.Group(func(r chi.Router) {
		r.Use(s.loadSession)
		s.routes(r)
	})
	return s, nil
}

func (s *Server) routes(r chi.Router) {
	r.Get("/", s.handleBookList)

	r.Route("/book", func(r chi.Router) {
		r.Get("/list/", s.handleBookList)
		r.Get("/create/", s.handleBookCreateForm)
		r.Post("/create/", s.handleBookCreate)
		r.Get("/create/{gid}/", s.handleBookCreateForm)
		r.Post("/create/{gid}/", s.handleBookCreate)
		r.Get("/{id}/", s.handleBookDetail)
		r.Get("/{id}/update/", s.handleBookUpdateForm)
		r.Post("/{id}/update/", s.handleBookUpdate)
		r.Get("/{id}/delete/", s.handleBookDeleteConfirm)
		r.Post("/{id}/delete/", s.handleBookDelete)
		r.Post("/{id}/vote/", s.handleVote)
	})

	for _, kind := range domain.Kinds {
		r.Route("/"+string(kind), func(r chi.Router) {
			r.Get("/list/", s.catalogHandler(kind, s.handleCatalogList))
			r.Get("/create/", s.catalogHandler(kind, s.handleCatalogCreateForm))
			r.Post("/create/", s.catalogHandler(kind, s.handleCatalogCreate))
			r.Get("/{id}/", s.catalogHandler(kind, s.handleCatalogDetail))
			r.Get("/{id}/update/", s.catalogHandler(kind, s.handleCatalogUpdateForm))
			r.Post("/{id}/update/", s.catalogHandler(kind, s.handleCatalogUpdate))
			r.Get("/{id}/delete/", s.catalogHandler(kind, s.handleCatalogDeleteConfirm))
			r.Post("/{id}/delete/", s.catalogHandler(kind, s.handleCatalogDelete))
		})
	}

	r.Route("/profile", func(r chi.Router) {
		r.Get("/list/", s.handleProfileList)
		r.Get("/{id}/", s.handleProfileDetail)
		r.Get("/{id}/update/", s.handleProfileUpdateForm)
		r.Post("/{id}/update/", s.handleProfileUpdate)
		r.Post("/{id}/owned/{bookID}/", s.handleOwnedToggle)
		r.Post("/{id}/friends/{friendID}/", s.handleFriendToggle)
	})

	r.Get("/login/", s.handleLoginForm)
	r.With(s.throttle).Post("/login/", s.handleLogin)
	r.Get("/logout/", s.handleLogout)
	r.Post("/logout/", s.handleLogout)
	r.Get("/register/", s.handleRegisterForm)
	r.With(s.throttle).Post("/register/", s.handleRegister)

	r.Get("/gbooks/", s.handleGoogleBooksList)
	r.Get("/gbooks/{gid}/", s.handleGoogleBooksDetail)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.notFound(w, r)
	})
}

// view is the data every page template receives.
type view struct {
	Title  string
	Path   string
	Actor  *domain.Actor
	Flash  *flash
	Errors map[string]string
	Form   map[string]string
	Data   any
	Pager  *pager
}

func (s *Server) newView(r *http.Request, title string) *view {
	return &view{
		Title: title,
		Path:  r.URL.Path,
		Actor: domain.ActorFrom(r.Context()),
		Form:  map[string]string{},
	}
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"intp": func(v *int) string {
		if v == nil {
			return ""
		}
		return fmt.Sprint(*v)
	},
	"floatp": func(v *float64) string {
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%.1f", *v)
	},
	"names": func(entities []*domain.CatalogEntity) string {
		return strings.Join(domain.Names(entities), ", ")
	},
	"kindPath": func(k domain.Kind) string {
		return "/" + string(k)
	},
	"creator": func(o domain.OptionalID) string {
		id, _ := o.Get()
		return id
	},
	"seq": func(from, to int) []int {
		out := make([]int, 0, to-from+1)
		for i := from; i <= to; i++ {
			out = append(out, i)
		}
		return out
	},
}

// parsePages builds one template set per page file, each sharing base.html.
func parsePages(fsys fs.FS) (map[string]*template.Template, error) {
	files, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(strings.TrimPrefix(file, "templates/"), ".html")
		if name == "base" {
			continue
		}
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(fsys, "templates/base.html", file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// render executes a page into a buffer so template errors never leave a
// half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, v *view) {
	tmpl, ok := s.pages[page]
	if !ok {
		s.logger.Error("unknown template", "page", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if v.Flash == nil {
		v.Flash = s.popFlash(w, r)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", v); err != nil {
		s.logger.Error("failed to execute template", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "not_found", s.newView(r, "Not found"))
}

// redirect issues the 302 used after every successful write.
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusFound)
}

// pageParams reads ?page= and applies the configured page size.
func (s *Server) pageParams(r *http.Request) store.PageParams {
	return store.PageParams{Page: atoiOr(r.URL.Query().Get("page"), 1), PerPage: s.opts.PageSize}
}
