package api

import "github.com/mybooks/mybooks-server/internal/service"

// Services groups the business services used by the API handlers.
type Services struct {
	Auth     *service.AuthService
	Books    *service.BookService
	Catalog  *service.CatalogService
	Profiles *service.ProfileService
	Votes    *service.VoteService
	Search   *service.SearchService // optional
	Metadata *service.MetadataService
}
