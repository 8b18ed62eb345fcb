package repository

import (
	"context"

	"cosmosdump/internal/dump/domain/model"
	"cosmosdump/internal/shared/paging"
)

// AccountSource is the remote NoSQL account, seen as three paginated
// listings. Implementations must not retry inside a page fetch beyond what
// their SDK transport already does; the traversal decides what a failure
// means.
type AccountSource interface {
	// Databases lists database identifiers of the account
	Databases(ctx context.Context) paging.Pager[[]string]
	// Collections lists collection identifiers inside one database
	Collections(ctx context.Context, databaseID string) paging.Pager[[]string]
	// Documents lists every document of one collection
	Documents(ctx context.Context, databaseID, collectionID string) paging.Pager[[]model.Document]
	// Kind names the backing service, for logs
	Kind() string
	// Close releases the client
	Close(ctx context.Context) error
}
