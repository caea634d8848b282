package providers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/do/v2"

	"github.com/mybooks/mybooks-server/internal/api"
	"github.com/mybooks/mybooks-server/internal/config"
	"github.com/mybooks/mybooks-server/internal/logger"
	"github.com/mybooks/mybooks-server/internal/metrics"
	"github.com/mybooks/mybooks-server/internal/service"
	"github.com/mybooks/mybooks-server/internal/store"
	"github.com/mybooks/mybooks-server/internal/web"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// HandlerDeps is everything the root handler serves.
type HandlerDeps struct {
	Config  *config.Config
	Store   store.Store
	API     *api.Services
	Web     *web.Services
	Limiter *AuthLimiterHandle // optional
	Logger  *logger.Logger
	Version string
}

// NewHandler builds the root router: the REST API under /api/v1, the web
// pages, /health and /metrics, behind the shared middleware stack.
func NewHandler(deps HandlerDeps) (http.Handler, error) {
	cfg := deps.Config

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(metrics.Middleware)

	apiOpts := api.Options{
		Version:            deps.Version,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		PageSize:           cfg.Catalog.PageSize,
	}
	webOpts := web.Options{
		SecureCookies: strings.HasPrefix(cfg.Server.PublicURL, "https://"),
		PageSize:      cfg.Catalog.PageSize,
	}
	if deps.Limiter != nil {
		apiOpts.AuthLimiter = deps.Limiter.KeyedRateLimiter
		webOpts.LoginLimiter = deps.Limiter.KeyedRateLimiter
	}

	api.NewServer(r, deps.Store, deps.API, apiOpts, deps.Logger.Component("api"))
	if _, err := web.NewServer(r, deps.Web, webOpts, deps.Logger.Component("web")); err != nil {
		return nil, err
	}
	r.Handle("/metrics", metrics.Handler())

	return r, nil
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	limiter := do.MustInvoke[*AuthLimiterHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	authService := do.MustInvoke[*service.AuthService](i)
	bookService := do.MustInvoke[*service.BookService](i)
	catalogService := do.MustInvoke[*service.CatalogService](i)
	profileService := do.MustInvoke[*service.ProfileService](i)
	voteService := do.MustInvoke[*service.VoteService](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	metadataService := do.MustInvoke[*service.MetadataService](i)

	handler, err := NewHandler(HandlerDeps{
		Config: cfg,
		Store:  storeHandle.Store,
		API: &api.Services{
			Auth:     authService,
			Books:    bookService,
			Catalog:  catalogService,
			Profiles: profileService,
			Votes:    voteService,
			Search:   searchService,
			Metadata: metadataService,
		},
		Web: &web.Services{
			Auth:     authService,
			Books:    bookService,
			Catalog:  catalogService,
			Profiles: profileService,
			Votes:    voteService,
			Metadata: metadataService,
		},
		Limiter: limiter,
		Logger:  log,
		Version: Version,
	})
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "public_url", cfg.Server.PublicURL)

	return &HTTPServerHandle{Server: srv}, nil
}

// Version is stamped at build time with -ldflags "-X ...providers.Version=...".
var Version = "dev"
