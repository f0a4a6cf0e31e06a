package router

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"offline-hub/domain"
	"offline-hub/port"
	"offline-hub/usecase"
)

// Router intercepts reader traffic and serves each request under the
// caching strategy its route class prescribes. Requests it does not
// intercept are reverse-proxied to the origin unmodified.
type Router struct {
	cache     port.ResponseCachePort
	store     port.LocalStorePort
	origin    port.OriginPort
	render    *usecase.RenderUsecase
	sync      *usecase.SyncUsecase
	watcher   *usecase.ConnectivityWatcher
	originURL *url.URL
	proxy     *httputil.ReverseProxy
	logger    *slog.Logger
}

// NewRouter creates a new Router. originURL is the base URL of the
// authoritative origin, used for same-origin detection and as the
// passthrough proxy target.
func NewRouter(
	cache port.ResponseCachePort,
	store port.LocalStorePort,
	origin port.OriginPort,
	render *usecase.RenderUsecase,
	sync *usecase.SyncUsecase,
	watcher *usecase.ConnectivityWatcher,
	originURL *url.URL,
	logger *slog.Logger,
) *Router {
	rt := &Router{
		cache:     cache,
		store:     store,
		origin:    origin,
		render:    render,
		sync:      sync,
		watcher:   watcher,
		originURL: originURL,
		logger:    logger,
	}
	rt.proxy = &httputil.ReverseProxy{
		Director: rt.proxyDirector,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("passthrough proxy failed", "url", r.URL.String(), "error", err)
			w.WriteHeader(http.StatusBadGateway)
		},
	}
	return rt
}

// Register attaches all routes and middleware to the echo instance.
// Specific routes (metrics, commands, stats) win over the catch-all.
func (rt *Router) Register(e *echo.Echo) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/internal/stats", rt.handleStats)

	commands := e.Group("/internal/commands")
	commands.POST("/cache-urls", rt.handleCacheURLs)
	commands.POST("/delete-cached-url", rt.handleDeleteCachedURL)
	commands.GET("/cache-list", rt.handleCacheList)
	commands.POST("/sync", rt.handleSync)

	e.Any("/*", rt.intercept)
}

// intercept classifies the incoming request and dispatches it to the
// matching strategy.
func (rt *Router) intercept(c echo.Context) error {
	req := c.Request()
	u, sameOrigin := rt.requestURL(req)
	navigate := req.Header.Get("Sec-Fetch-Mode") == "navigate"

	class := domain.ClassifyRequest(req.Method, u, sameOrigin, navigate)

	switch class {
	case domain.RouteAPI:
		return rt.networkOnly(c, u)
	case domain.RouteAsset:
		return rt.cacheFirst(c, u)
	case domain.RouteImage:
		return rt.cacheFirstImage(c, u, sameOrigin)
	case domain.RouteListing:
		return rt.networkFirstArticle(c, u, class)
	case domain.RouteDetail:
		return rt.networkFirstArticle(c, u, class)
	case domain.RouteCard:
		return rt.networkFirstArticle(c, u, class)
	case domain.RouteNavigation:
		return rt.networkFirstNavigation(c, u)
	case domain.RouteGeneric:
		return rt.networkFirstGeneric(c, u)
	default:
		rt.proxy.ServeHTTP(c.Response(), req)
		return nil
	}
}

// requestURL normalizes the request target. Proxy-style absolute-form
// targets addressed to another host are cross-origin; everything else
// is treated as same-origin traffic for the configured origin.
func (rt *Router) requestURL(req *http.Request) (*url.URL, bool) {
	u := req.URL
	if u.IsAbs() && u.Host != rt.originURL.Host {
		return u, false
	}
	return &url.URL{Path: u.Path, RawQuery: u.RawQuery}, true
}

// proxyDirector targets the passthrough proxy. Origin-form requests go
// to the configured origin; absolute-form requests keep their host.
func (rt *Router) proxyDirector(req *http.Request) {
	if !req.URL.IsAbs() {
		req.URL.Scheme = rt.originURL.Scheme
		req.URL.Host = rt.originURL.Host
		req.Host = rt.originURL.Host
	}
}

// handleStats reports mirror and cache occupancy for operators.
func (rt *Router) handleStats(c echo.Context) error {
	ctx := c.Request().Context()

	articles, err := rt.store.GetAll(ctx)
	if err != nil {
		rt.logger.ErrorContext(ctx, "stats: reading local mirror failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "stats unavailable"})
	}
	lastSync, err := rt.store.GetLastSyncTime(ctx)
	if err != nil {
		rt.logger.ErrorContext(ctx, "stats: reading last sync time failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "stats unavailable"})
	}

	cacheCounts := make(map[string]int, len(domain.AllNamespaces()))
	for _, ns := range domain.AllNamespaces() {
		keys, err := rt.cache.Keys(ctx, ns)
		if err != nil {
			rt.logger.WarnContext(ctx, "stats: listing cache keys failed", "namespace", ns.String(), "error", err)
			continue
		}
		cacheCounts[ns.String()] = len(keys)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"article_count":  len(articles),
		"last_sync_time": lastSync,
		"cached_keys":    cacheCounts,
		"origin_online":  rt.watcher.Online(),
		"sync_in_flight": rt.sync.InFlight(),
	})
}
