// Package api provides the REST API under /api/v1, built with huma on chi.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/mybooks/mybooks-server/internal/ratelimit"
	"github.com/mybooks/mybooks-server/internal/store"
)

// Options configures the API surface.
type Options struct {
	Version            string
	CORSAllowedOrigins []string
	// AuthLimiter throttles registration and token requests per client IP.
	// Nil disables throttling.
	AuthLimiter *ratelimit.KeyedRateLimiter
	PageSize    int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    store.Store
	services *Services
	api      huma.API
	opts     Options
	logger   *slog.Logger
}

// NewServer registers the API on router. Routes live in a chi group so the
// CORS and token middleware do not touch the web pages sharing the router.
func NewServer(router chi.Router, st store.Store, services *Services, opts Options, logger *slog.Logger) *Server {
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	if len(opts.CORSAllowedOrigins) == 0 {
		opts.CORSAllowedOrigins = []string{"*"}
	}

	s := &Server{
		store:    st,
		services: services,
		opts:     opts,
		logger:   logger,
	}

	humaConfig := huma.DefaultConfig("MyBooks API", opts.Version)
	humaConfig.Info.Description = "Library catalog: books, authors, categories, publishers, profiles and votes."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	router.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
		r.Use(authMiddleware(services.Auth, logger))
		s.api = humachi.New(r, humaConfig)
		// Preflight requests match no huma operation; route them through
		// the group so the CORS handler answers them.
		r.Options("/api/*", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerBookRoutes()
	s.registerCatalogRoutes()
	s.registerProfileRoutes()
	s.registerVoteRoutes()
	s.registerSearchRoutes()
	s.registerGoogleBooksRoutes()

	return s
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}
