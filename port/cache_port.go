package port

import (
	"context"

	"offline-hub/domain"
)

// ResponseCachePort defines the interface for the named response caches.
// Keys are canonical pathnames (or full URLs for cross-origin entries);
// callers must store and look up with the same canonical form.
type ResponseCachePort interface {
	// Match returns the cached response for a key, or domain.ErrNotFound.
	Match(ctx context.Context, ns domain.CacheNamespace, key string) (*domain.CachedResponse, error)

	// Put stores a response under a key. Writes are last-write-wins.
	Put(ctx context.Context, ns domain.CacheNamespace, key string, res *domain.CachedResponse) error

	// Delete removes a key and reports whether an entry was removed.
	Delete(ctx context.Context, ns domain.CacheNamespace, key string) (bool, error)

	// Keys lists all keys stored in a namespace.
	Keys(ctx context.Context, ns domain.CacheNamespace) ([]string, error)
}
