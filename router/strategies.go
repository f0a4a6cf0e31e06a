package router

import (
	"context"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"offline-hub/domain"
	"offline-hub/metrics"
)

// Request outcomes recorded per route class.
const (
	outcomeNetwork     = "network"
	outcomeCache       = "cache"
	outcomeFallback    = "fallback"
	outcomeSynthesized = "synthesized"
)

const offlinePage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Offline</title>
</head>
<body>
  <main style="max-width: 40rem; margin: 4rem auto; font-family: sans-serif; text-align: center;">
    <h1>You are offline</h1>
    <p>This page is not available offline. Saved articles can still be read from the article list.</p>
    <p><a href="/articles">Go to saved articles</a></p>
  </main>
</body>
</html>`

// fetchOrigin performs the network attempt for an intercepted request.
// Same-origin requests carry the reader's credentials; cross-origin
// requests are fetched credential-less and come back opaque.
func (rt *Router) fetchOrigin(ctx context.Context, u *url.URL, sameOrigin bool) (*domain.CachedResponse, error) {
	if sameOrigin {
		return rt.origin.FetchPage(ctx, u.RequestURI())
	}
	return rt.origin.FetchExternal(ctx, u.String())
}

// writeCached replays a stored or freshly fetched response. Opaque
// entries carry no status and are replayed as 200.
func writeCached(c echo.Context, res *domain.CachedResponse) error {
	h := c.Response().Header()
	for k, v := range res.Headers {
		h.Set(k, v)
	}
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	c.Response().WriteHeader(status)
	_, err := c.Response().Write(res.Body)
	return err
}

// networkOnly serves API traffic. Nothing is ever cached; when the
// origin is unreachable the client gets an explicit offline error.
func (rt *Router) networkOnly(c echo.Context, u *url.URL) error {
	ctx := c.Request().Context()

	res, err := rt.fetchOrigin(ctx, u, true)
	if err != nil {
		rt.logger.WarnContext(ctx, "api request failed while offline", "path", u.Path, "error", err)
		metrics.RecordRequest(domain.RouteAPI.String(), outcomeSynthesized)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "offline"})
	}
	metrics.RecordRequest(domain.RouteAPI.String(), outcomeNetwork)
	return writeCached(c, res)
}

// cacheFirst serves static assets: a cached copy wins, a miss goes to
// the network and is cached for next time.
func (rt *Router) cacheFirst(c echo.Context, u *url.URL) error {
	ctx := c.Request().Context()
	key := domain.CanonicalCacheKey(u, true)

	if res, err := rt.cache.Match(ctx, domain.NamespaceAssets, key); err == nil {
		metrics.RecordRequest(domain.RouteAsset.String(), outcomeCache)
		return writeCached(c, res)
	}

	res, err := rt.fetchOrigin(ctx, u, true)
	if err != nil {
		metrics.RecordRequest(domain.RouteAsset.String(), outcomeSynthesized)
		return c.String(http.StatusServiceUnavailable, "Offline")
	}
	if err := rt.cache.Put(ctx, domain.NamespaceAssets, key, res); err != nil {
		rt.logger.WarnContext(ctx, "caching asset failed", "key", key, "error", err)
	}
	metrics.RecordRequest(domain.RouteAsset.String(), outcomeNetwork)
	return writeCached(c, res)
}

// cacheFirstImage serves images. Cross-origin images are fetched
// credential-less; the resulting opaque entries are cached and replayed
// without inspection. An unreachable image degrades to an empty 404 so
// the reader renders a broken image instead of an error page.
func (rt *Router) cacheFirstImage(c echo.Context, u *url.URL, sameOrigin bool) error {
	ctx := c.Request().Context()
	key := domain.CanonicalCacheKey(u, sameOrigin)

	if res, err := rt.cache.Match(ctx, domain.NamespaceImages, key); err == nil {
		metrics.RecordRequest(domain.RouteImage.String(), outcomeCache)
		return writeCached(c, res)
	}

	res, err := rt.fetchOrigin(ctx, u, sameOrigin)
	if err != nil {
		metrics.RecordRequest(domain.RouteImage.String(), outcomeSynthesized)
		return c.NoContent(http.StatusNotFound)
	}
	if err := rt.cache.Put(ctx, domain.NamespaceImages, key, res); err != nil {
		rt.logger.WarnContext(ctx, "caching image failed", "key", key, "error", err)
	}
	metrics.RecordRequest(domain.RouteImage.String(), outcomeNetwork)
	return writeCached(c, res)
}

// networkFirstArticle serves listing, detail and card routes. A fresh
// response refreshes the pages cache; when the network attempt fails,
// the fallback chain runs: cached page variants, then the shell
// document, then an offline rendering from the local mirror, then the
// synthesized offline page.
func (rt *Router) networkFirstArticle(c echo.Context, u *url.URL, class domain.RouteClass) error {
	ctx := c.Request().Context()
	key := domain.CanonicalCacheKey(u, true)

	res, err := rt.fetchOrigin(ctx, u, true)
	if err == nil {
		if err := rt.cache.Put(ctx, domain.NamespacePages, key, res); err != nil {
			rt.logger.WarnContext(ctx, "refreshing cached page failed", "key", key, "error", err)
		}
		metrics.RecordRequest(class.String(), outcomeNetwork)
		return writeCached(c, res)
	}
	rt.logger.InfoContext(ctx, "network attempt failed, serving from cache",
		"route", class.String(), "path", u.Path, "error", err)

	if res, ok := rt.matchPageVariants(ctx, u); ok {
		metrics.RecordRequest(class.String(), outcomeCache)
		return writeCached(c, res)
	}

	if shell := shellPathFor(class); shell != "" {
		if res, err := rt.cache.Match(ctx, domain.NamespacePages, shell); err == nil {
			metrics.RecordRequest(class.String(), outcomeFallback)
			return writeCached(c, res)
		}
	}

	if html, ok := rt.renderOffline(ctx, u, class); ok {
		metrics.RecordRequest(class.String(), outcomeFallback)
		return c.HTML(http.StatusServiceUnavailable, html)
	}

	metrics.RecordRequest(class.String(), outcomeSynthesized)
	return c.HTML(http.StatusServiceUnavailable, offlinePage)
}

// matchPageVariants runs the cached-page lookup chain: the bare
// pathname (which is also the query-stripped form of the request URL),
// then the full request URL.
func (rt *Router) matchPageVariants(ctx context.Context, u *url.URL) (*domain.CachedResponse, bool) {
	for _, key := range []string{u.Path, u.String()} {
		if res, err := rt.cache.Match(ctx, domain.NamespacePages, key); err == nil {
			return res, true
		}
	}
	return nil, false
}

// shellPathFor maps a route class to its offline shell document. Card
// fragments have no shell.
func shellPathFor(class domain.RouteClass) string {
	switch class {
	case domain.RouteListing:
		return domain.ShellListingPath
	case domain.RouteDetail:
		return domain.ShellDetailPath
	default:
		return ""
	}
}

// renderOffline synthesizes a view from the local mirror when no cached
// page survives.
func (rt *Router) renderOffline(ctx context.Context, u *url.URL, class domain.RouteClass) (string, bool) {
	var (
		html string
		err  error
	)
	switch class {
	case domain.RouteListing:
		html, err = rt.render.RenderListing(ctx)
	case domain.RouteDetail:
		html, err = rt.render.RenderDetail(ctx, u.Path)
	default:
		return "", false
	}
	if err != nil {
		rt.logger.WarnContext(ctx, "offline rendering failed", "path", u.Path, "error", err)
		return "", false
	}
	return html, true
}

// networkFirstNavigation serves full-page navigations outside the
// article routes. A fresh document refreshes the pages cache; fallback
// is any cached copy of the page, then the listing shell, then the
// synthesized offline page.
func (rt *Router) networkFirstNavigation(c echo.Context, u *url.URL) error {
	ctx := c.Request().Context()
	key := domain.CanonicalCacheKey(u, true)

	res, err := rt.fetchOrigin(ctx, u, true)
	if err == nil {
		if err := rt.cache.Put(ctx, domain.NamespacePages, key, res); err != nil {
			rt.logger.WarnContext(ctx, "refreshing cached page failed", "key", key, "error", err)
		}
		metrics.RecordRequest(domain.RouteNavigation.String(), outcomeNetwork)
		return writeCached(c, res)
	}

	if res, ok := rt.matchPageVariants(ctx, u); ok {
		metrics.RecordRequest(domain.RouteNavigation.String(), outcomeCache)
		return writeCached(c, res)
	}
	if res, err := rt.cache.Match(ctx, domain.NamespacePages, domain.ShellListingPath); err == nil {
		metrics.RecordRequest(domain.RouteNavigation.String(), outcomeFallback)
		return writeCached(c, res)
	}

	metrics.RecordRequest(domain.RouteNavigation.String(), outcomeSynthesized)
	return c.HTML(http.StatusServiceUnavailable, offlinePage)
}

// networkFirstGeneric serves remaining same-origin requests. A fresh
// response is stored into the assets cache; the offline fallback is
// whatever an earlier pass stored under the same key.
func (rt *Router) networkFirstGeneric(c echo.Context, u *url.URL) error {
	ctx := c.Request().Context()
	key := domain.CanonicalCacheKey(u, true)

	res, err := rt.fetchOrigin(ctx, u, true)
	if err == nil {
		if err := rt.cache.Put(ctx, domain.NamespaceAssets, key, res); err != nil {
			rt.logger.WarnContext(ctx, "caching response failed", "key", key, "error", err)
		}
		metrics.RecordRequest(domain.RouteGeneric.String(), outcomeNetwork)
		return writeCached(c, res)
	}

	if res, err := rt.cache.Match(ctx, domain.NamespaceAssets, key); err == nil {
		metrics.RecordRequest(domain.RouteGeneric.String(), outcomeCache)
		return writeCached(c, res)
	}

	metrics.RecordRequest(domain.RouteGeneric.String(), outcomeSynthesized)
	return c.HTML(http.StatusServiceUnavailable, offlinePage)
}
