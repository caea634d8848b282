package providers

import (
	"github.com/samber/do/v2"

	"github.com/mybooks/mybooks-server/internal/config"
	"github.com/mybooks/mybooks-server/internal/logger"
	"github.com/mybooks/mybooks-server/internal/metadata/cache"
	"github.com/mybooks/mybooks-server/internal/metadata/googlebooks"
	"github.com/mybooks/mybooks-server/internal/service"
)

// MetadataCacheHandle wraps the provider response cache. Cache is nil when
// caching is disabled.
type MetadataCacheHandle struct {
	*cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *MetadataCacheHandle) Shutdown() error {
	if h.Cache == nil {
		return nil
	}
	return h.Close()
}

// ProvideMetadataCache opens the Badger cache for Google Books responses.
func ProvideMetadataCache(i do.Injector) (*MetadataCacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.GoogleBooks.CacheTTL == 0 {
		log.Info("Metadata cache disabled")
		return &MetadataCacheHandle{}, nil
	}

	c, err := cache.Open(cache.Options{
		Path:   cfg.Data.CachePath,
		TTL:    cfg.GoogleBooks.CacheTTL,
		Logger: log.Component("cache"),
	})
	if err != nil {
		return nil, err
	}
	return &MetadataCacheHandle{Cache: c}, nil
}

// ProvideGoogleBooksClient provides the Google Books API client.
func ProvideGoogleBooksClient(i do.Injector) (*googlebooks.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	cacheHandle := do.MustInvoke[*MetadataCacheHandle](i)

	client := googlebooks.New(googlebooks.Options{
		BaseURL: cfg.GoogleBooks.BaseURL,
		APIKey:  cfg.GoogleBooks.APIKey,
		Timeout: cfg.GoogleBooks.Timeout,
		Cache:   cacheHandle.Cache,
		Logger:  log.Component("googlebooks"),
	})

	log.Info("Google Books client initialized",
		"base_url", cfg.GoogleBooks.BaseURL,
		"api_key", cfg.GoogleBooks.APIKey != "",
		"cached", cacheHandle.Cache != nil,
	)

	return client, nil
}

// ProvideMetadataService provides the book finder service.
func ProvideMetadataService(i do.Injector) (*service.MetadataService, error) {
	client := do.MustInvoke[*googlebooks.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMetadataService(client, log.Component("metadata")), nil
}
