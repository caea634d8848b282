// Package providers contains dependency injection providers for the MyBooks server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/mybooks/mybooks-server/internal/config"
	"github.com/mybooks/mybooks-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting MyBooks Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
		"addr", cfg.Server.Addr(),
		"page_size", cfg.Catalog.PageSize,
		"gbooks_cache", cfg.GoogleBooks.CacheTTL > 0,
	)
	if cfg.GoogleBooks.APIKey == "" {
		log.Debug("google books API key not set, using anonymous quota")
	}

	return log, nil
}
