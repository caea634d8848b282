// Package di provides dependency injection configuration for the MyBooks server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/mybooks/mybooks-server/internal/auth"
	"github.com/mybooks/mybooks-server/internal/config"
	"github.com/mybooks/mybooks-server/internal/di/providers"
	"github.com/mybooks/mybooks-server/internal/logger"
	"github.com/mybooks/mybooks-server/internal/metadata/googlebooks"
	"github.com/mybooks/mybooks-server/internal/service"
	"github.com/mybooks/mybooks-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Metadata layer
	do.Provide(injector, providers.ProvideMetadataCache)
	do.Provide(injector, providers.ProvideGoogleBooksClient)
	do.Provide(injector, providers.ProvideMetadataService)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideAuthLimiter)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideReconciler)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvideVoteService)

	// Workers
	do.Provide(injector, providers.ProvideIndexCheckJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. Providers are lazy, so this is what
// opens the database and starts the server.
func Bootstrap(injector *do.RootScope) error {
	steps := []func() error{
		invoke[*config.Config](injector),
		invoke[*logger.Logger](injector),
		invoke[*validation.Validator](injector),
		invoke[*providers.StoreHandle](injector),
		invoke[*providers.SearchIndexHandle](injector),
		invoke[*service.SearchService](injector),
		invoke[*providers.MetadataCacheHandle](injector),
		invoke[*googlebooks.Client](injector),
		invoke[*service.MetadataService](injector),
		invoke[*auth.TokenService](injector),
		invoke[*providers.AuthLimiterHandle](injector),

		// Business services
		invoke[*service.AuthService](injector),
		invoke[*service.BookService](injector),
		invoke[*service.CatalogService](injector),
		invoke[*service.ProfileService](injector),
		invoke[*service.VoteService](injector),

		// Workers
		invoke[*providers.IndexCheckJob](injector),

		// Server
		invoke[*providers.HTTPServerHandle](injector),
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func invoke[T any](injector do.Injector) func() error {
	return func() error {
		_, err := do.Invoke[T](injector)
		return err
	}
}
