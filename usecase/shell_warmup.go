package usecase

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"offline-hub/domain"
	"offline-hub/port"
)

// ShellWarmup pre-caches the offline shell documents and their static
// assets so navigation fallbacks work before the first sync pass.
type ShellWarmup struct {
	cache     port.ResponseCachePort
	origin    port.OriginPort
	assetURLs []string
	logger    *slog.Logger
}

// NewShellWarmup creates a new ShellWarmup. assetURLs lists absolute
// URLs of shell stylesheets and scripts, typically CDN-hosted.
func NewShellWarmup(cache port.ResponseCachePort, origin port.OriginPort, assetURLs []string, logger *slog.Logger) *ShellWarmup {
	return &ShellWarmup{
		cache:     cache,
		origin:    origin,
		assetURLs: assetURLs,
		logger:    logger,
	}
}

// Warm fetches every shell resource in parallel. Failures are logged
// and skipped: a partially warmed shell still beats an empty cache,
// and previously cached copies are left in place.
func (s *ShellWarmup) Warm(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, pathname := range []string{domain.ShellListingPath, domain.ShellDetailPath} {
		g.Go(func() error {
			resp, err := s.origin.FetchPage(gctx, pathname)
			if err != nil {
				s.logger.WarnContext(gctx, "shell document warmup skipped", "path", pathname, "error", err)
				return nil
			}
			if err := s.cache.Put(gctx, domain.NamespacePages, pathname, resp); err != nil {
				s.logger.WarnContext(gctx, "shell document caching failed", "path", pathname, "error", err)
			}
			return nil
		})
	}

	for _, rawURL := range s.assetURLs {
		g.Go(func() error {
			resp, err := s.origin.FetchExternal(gctx, rawURL)
			if err != nil {
				s.logger.WarnContext(gctx, "shell asset warmup skipped", "url", rawURL, "error", err)
				return nil
			}
			if err := s.cache.Put(gctx, domain.NamespaceAssets, rawURL, resp); err != nil {
				s.logger.WarnContext(gctx, "shell asset caching failed", "url", rawURL, "error", err)
			}
			return nil
		})
	}

	_ = g.Wait()
	s.logger.InfoContext(ctx, "shell warmup finished", "documents", 2, "assets", len(s.assetURLs))
}
