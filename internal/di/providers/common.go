package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// indexCheckInterval is how often the search index is compared with the database.
	indexCheckInterval = time.Hour
)
