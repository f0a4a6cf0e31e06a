package router

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"offline-hub/domain"
)

// cacheURLsRequest asks the router to pre-cache a set of URLs into one
// named cache. Rooted pathnames are fetched from the origin with
// credentials; absolute URLs are fetched credential-less.
type cacheURLsRequest struct {
	Cache string   `json:"cache"`
	URLs  []string `json:"urls"`
}

type cacheURLsResponse struct {
	Cache  string   `json:"cache"`
	Cached []string `json:"cached"`
	Failed []string `json:"failed"`
}

type deleteCachedURLRequest struct {
	Cache string `json:"cache"`
	URL   string `json:"url"`
}

func (rt *Router) handleCacheURLs(c echo.Context) error {
	ctx := c.Request().Context()

	var req cacheURLsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	ns := domain.CacheNamespace(req.Cache)
	if !ns.IsValid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown cache: " + req.Cache})
	}
	if len(req.URLs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no urls given"})
	}

	var (
		mu     sync.Mutex
		cached []string
		failed []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, rawURL := range req.URLs {
		g.Go(func() error {
			err := rt.cacheOne(gctx, ns, rawURL)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rt.logger.WarnContext(gctx, "cache-urls: caching failed", "url", rawURL, "error", err)
				failed = append(failed, rawURL)
				return nil
			}
			cached = append(cached, rawURL)
			return nil
		})
	}
	_ = g.Wait()

	return c.JSON(http.StatusOK, cacheURLsResponse{
		Cache:  ns.String(),
		Cached: cached,
		Failed: failed,
	})
}

// cacheOne fetches one URL and stores it under its canonical key.
func (rt *Router) cacheOne(ctx context.Context, ns domain.CacheNamespace, rawURL string) error {
	var (
		res *domain.CachedResponse
		key string
		err error
	)
	if strings.HasPrefix(rawURL, "/") {
		key = domain.StripQuery(rawURL)
		res, err = rt.origin.FetchPage(ctx, rawURL)
	} else {
		u, perr := url.Parse(rawURL)
		if perr != nil || !u.IsAbs() {
			return errors.New("url must be rooted or absolute")
		}
		key = rawURL
		res, err = rt.origin.FetchExternal(ctx, rawURL)
	}
	if err != nil {
		return err
	}
	return rt.cache.Put(ctx, ns, key, res)
}

func (rt *Router) handleDeleteCachedURL(c echo.Context) error {
	ctx := c.Request().Context()

	var req deleteCachedURLRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	ns := domain.CacheNamespace(req.Cache)
	if req.Cache == "" {
		ns = domain.NamespacePages
	}
	if !ns.IsValid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown cache: " + req.Cache})
	}
	if req.URL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no url given"})
	}

	// Rooted pathnames are stored query-stripped; cross-origin entries
	// keep their full URL, query included.
	key := req.URL
	if strings.HasPrefix(key, "/") {
		key = domain.StripQuery(key)
	}

	deleted, err := rt.cache.Delete(ctx, ns, key)
	if err != nil {
		rt.logger.ErrorContext(ctx, "delete-cached-url failed", "url", req.URL, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "deletion failed"})
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": deleted})
}

func (rt *Router) handleCacheList(c echo.Context) error {
	ctx := c.Request().Context()

	ns := domain.NamespacePages
	if q := c.QueryParam("cache"); q != "" {
		ns = domain.CacheNamespace(q)
		if !ns.IsValid() {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown cache: " + q})
		}
	}

	keys, err := rt.cache.Keys(ctx, ns)
	if err != nil {
		rt.logger.ErrorContext(ctx, "cache-list failed", "namespace", ns.String(), "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "listing failed"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"cache": ns.String(),
		"keys":  keys,
	})
}

// handleSync triggers a reconciliation pass on demand. force re-caches
// every remote article even when the diff is empty.
func (rt *Router) handleSync(c echo.Context) error {
	ctx := c.Request().Context()

	force := c.QueryParam("force") == "true"

	var err error
	if force {
		err = rt.sync.ForceSync(ctx)
	} else {
		err = rt.sync.CheckAndSync(ctx)
	}
	switch {
	case errors.Is(err, domain.ErrSyncInFlight):
		return c.JSON(http.StatusConflict, map[string]string{"error": "sync already in progress"})
	case err != nil:
		rt.logger.ErrorContext(ctx, "manual sync failed", "force", force, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "sync failed"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
