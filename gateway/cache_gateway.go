// Package gateway provides anti-corruption layer implementations.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"offline-hub/domain"
	"offline-hub/metrics"
	"offline-hub/port"
)

// CacheGateway implements ResponseCachePort using a driver, enforcing
// namespace validity and canonical key forms before they reach storage.
type CacheGateway struct {
	driver port.ResponseCachePort
}

// NewCacheGateway creates a new CacheGateway.
func NewCacheGateway(driver port.ResponseCachePort) *CacheGateway {
	return &CacheGateway{driver: driver}
}

// Match returns the cached response for a key, or domain.ErrNotFound.
func (g *CacheGateway) Match(ctx context.Context, ns domain.CacheNamespace, key string) (*domain.CachedResponse, error) {
	if err := validateLookup(ns, key); err != nil {
		return nil, err
	}

	res, err := g.driver.Match(ctx, ns, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.ErrorContext(ctx, "cache match failed", "namespace", ns.String(), "key", key, "error", err)
		}
		return nil, err
	}

	metrics.RecordCacheOperation(ns.String(), "match")

	return res, nil
}

// Put stores a response under a key.
func (g *CacheGateway) Put(ctx context.Context, ns domain.CacheNamespace, key string, res *domain.CachedResponse) error {
	if err := validateLookup(ns, key); err != nil {
		return err
	}
	if res == nil {
		return errors.New("response is nil")
	}

	if err := g.driver.Put(ctx, ns, key, res); err != nil {
		slog.ErrorContext(ctx, "cache put failed", "namespace", ns.String(), "key", key, "error", err)
		return err
	}

	metrics.RecordCacheOperation(ns.String(), "put")

	return nil
}

// Delete removes a key and reports whether an entry was removed.
func (g *CacheGateway) Delete(ctx context.Context, ns domain.CacheNamespace, key string) (bool, error) {
	if err := validateLookup(ns, key); err != nil {
		return false, err
	}

	deleted, err := g.driver.Delete(ctx, ns, key)
	if err != nil {
		slog.ErrorContext(ctx, "cache delete failed", "namespace", ns.String(), "key", key, "error", err)
		return false, err
	}

	metrics.RecordCacheOperation(ns.String(), "delete")

	return deleted, nil
}

// Keys lists all keys stored in a namespace.
func (g *CacheGateway) Keys(ctx context.Context, ns domain.CacheNamespace) ([]string, error) {
	if !ns.IsValid() {
		return nil, fmt.Errorf("unknown cache namespace %q", ns.String())
	}

	return g.driver.Keys(ctx, ns)
}

func validateLookup(ns domain.CacheNamespace, key string) error {
	if !ns.IsValid() {
		return fmt.Errorf("unknown cache namespace %q", ns.String())
	}
	if key == "" {
		return errors.New("cache key is empty")
	}
	return nil
}
