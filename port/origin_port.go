package port

import (
	"context"

	"offline-hub/domain"
)

// OriginPort defines the interface to the authoritative StoryPile origin.
type OriginPort interface {
	// ListArticles fetches the remote article listing. A non-empty
	// updatedSince is passed through as the incremental filter parameter
	// and restricts the response to records updated after that instant.
	ListArticles(ctx context.Context, updatedSince string) ([]domain.ArticleSnapshot, error)

	// FetchPage fetches a same-origin page or fragment by pathname with
	// same-origin credentials.
	FetchPage(ctx context.Context, pathname string) (*domain.CachedResponse, error)

	// FetchExternal fetches a resource credential-less (images, external
	// shell assets). Cross-origin fetches yield opaque responses that can
	// still be cached and replayed.
	FetchExternal(ctx context.Context, rawURL string) (*domain.CachedResponse, error)

	// CheckHealth probes the origin health endpoint.
	CheckHealth(ctx context.Context) error
}
