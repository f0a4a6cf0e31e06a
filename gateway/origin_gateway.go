package gateway

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"offline-hub/domain"
	"offline-hub/port"
)

// OriginGateway implements OriginPort using a driver, validating
// snapshots coming off the wire before they reach the sync engine.
type OriginGateway struct {
	driver port.OriginPort
}

// NewOriginGateway creates a new OriginGateway.
func NewOriginGateway(driver port.OriginPort) *OriginGateway {
	return &OriginGateway{driver: driver}
}

// ListArticles fetches the remote article listing and drops records the
// mirror cannot hold. A malformed listing surfaces as an error from the
// driver before any snapshot is returned, so no partial state leaks out.
func (g *OriginGateway) ListArticles(ctx context.Context, updatedSince string) ([]domain.ArticleSnapshot, error) {
	articles, err := g.driver.ListArticles(ctx, updatedSince)
	if err != nil {
		return nil, err
	}

	valid := make([]domain.ArticleSnapshot, 0, len(articles))
	for _, a := range articles {
		if err := a.Validate(); err != nil {
			slog.WarnContext(ctx, "dropping invalid remote article",
				"article_id", a.ID,
				"error", err,
			)
			continue
		}
		valid = append(valid, a)
	}

	return valid, nil
}

// FetchPage fetches a same-origin page or fragment by pathname.
func (g *OriginGateway) FetchPage(ctx context.Context, pathname string) (*domain.CachedResponse, error) {
	if !strings.HasPrefix(pathname, "/") {
		return nil, errors.New("pathname must be rooted")
	}

	return g.driver.FetchPage(ctx, pathname)
}

// FetchExternal fetches a resource credential-less.
func (g *OriginGateway) FetchExternal(ctx context.Context, rawURL string) (*domain.CachedResponse, error) {
	if rawURL == "" {
		return nil, errors.New("external URL is empty")
	}

	return g.driver.FetchExternal(ctx, rawURL)
}

// CheckHealth probes the origin health endpoint.
func (g *OriginGateway) CheckHealth(ctx context.Context) error {
	return g.driver.CheckHealth(ctx)
}
