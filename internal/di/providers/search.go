package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/mybooks/mybooks-server/internal/config"
	"github.com/mybooks/mybooks-server/internal/logger"
	"github.com/mybooks/mybooks-server/internal/search"
	"github.com/mybooks/mybooks-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.Open(search.Options{
		Path:   cfg.Data.SearchIndexPath,
		Logger: log.Component("search"),
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "path", cfg.Data.SearchIndexPath, "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(indexHandle.Index, storeHandle.Store, log.Component("search")), nil
}

// IndexCheckJob keeps the search index in step with the database: once at
// startup and then every indexCheckInterval.
type IndexCheckJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *IndexCheckJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideIndexCheckJob starts the periodic index check.
func ProvideIndexCheckJob(i do.Injector) (*IndexCheckJob, error) {
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	check := func() {
		if err := searchService.ReindexIfStale(ctx); err != nil {
			log.Error("Search index check failed", "error", err)
		}
	}

	go func() {
		ticker := time.NewTicker(indexCheckInterval)
		defer ticker.Stop()

		check()
		for {
			select {
			case <-ticker.C:
				check()
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Search index check job started", "interval", indexCheckInterval)

	return &IndexCheckJob{cancel: cancel}, nil
}
