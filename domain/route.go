package domain

import (
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// RouteClass is the classification bucket assigned to an intercepted
// request. It determines the caching strategy the router applies.
type RouteClass string

const (
	// RouteAPI is /api/* traffic: network only, never cached.
	RouteAPI RouteClass = "api"
	// RouteAsset is a script/style/font request: cache first.
	RouteAsset RouteClass = "asset"
	// RouteImage is an image request, same- or cross-origin: cache first,
	// opaque responses tolerated.
	RouteImage RouteClass = "image"
	// RouteListing is the article listing page: network first with the
	// listing shell as fallback.
	RouteListing RouteClass = "listing"
	// RouteDetail is an article detail page: network first with the
	// detail shell as fallback.
	RouteDetail RouteClass = "detail"
	// RouteCard is an article card fragment: network first, no shell.
	RouteCard RouteClass = "card"
	// RouteNavigation is any other same-origin full-page navigation.
	RouteNavigation RouteClass = "navigation"
	// RouteGeneric is any other same-origin request.
	RouteGeneric RouteClass = "generic"
	// RoutePassthrough is not intercepted at all.
	RoutePassthrough RouteClass = "passthrough"
)

// String returns the string representation of the route class.
func (r RouteClass) String() string {
	return string(r)
}

var (
	listingPattern = regexp.MustCompile(`^/articles/?$`)
	detailPattern  = regexp.MustCompile(`^/articles/(\d+)/?$`)
	cardPattern    = regexp.MustCompile(`^/articles/(\d+)/card(_sm)?/?$`)
	assetPattern   = regexp.MustCompile(`(?i)\.(css|js|woff2?|ttf|eot)$`)
	imagePattern   = regexp.MustCompile(`(?i)\.(png|jpe?g|gif|webp|svg|ico)$`)
	apiPattern     = regexp.MustCompile(`^/api/`)
)

// ClassifyRequest assigns a route class to an intercepted request.
// Evaluation follows a strict precedence order; the first match wins.
// Non-GET methods and cross-origin non-image requests are never
// intercepted and classify as passthrough.
func ClassifyRequest(method string, u *url.URL, sameOrigin, navigate bool) RouteClass {
	if method != http.MethodGet {
		return RoutePassthrough
	}

	path := u.Path

	switch {
	case sameOrigin && apiPattern.MatchString(path):
		return RouteAPI
	case sameOrigin && assetPattern.MatchString(path):
		return RouteAsset
	case imagePattern.MatchString(path):
		return RouteImage
	case sameOrigin && listingPattern.MatchString(path):
		return RouteListing
	case sameOrigin && detailPattern.MatchString(path):
		return RouteDetail
	case sameOrigin && cardPattern.MatchString(path):
		return RouteCard
	case sameOrigin && navigate:
		return RouteNavigation
	case sameOrigin:
		return RouteGeneric
	default:
		return RoutePassthrough
	}
}

// ArticleIDFromPath extracts the numeric article id from a detail or card
// pathname. Returns false when the path carries no id.
func ArticleIDFromPath(path string) (int64, bool) {
	for _, pattern := range []*regexp.Regexp{detailPattern, cardPattern} {
		if m := pattern.FindStringSubmatch(path); m != nil {
			id, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				return 0, false
			}
			return id, true
		}
	}
	return 0, false
}

// CanonicalCacheKey derives the stable cache key for a request URL.
// Pages and cards are stored and looked up by pathname, never by full
// request identity, so query strings and header variance cannot cause
// key drift. Cross-origin URLs keep their full form.
func CanonicalCacheKey(u *url.URL, sameOrigin bool) string {
	if !sameOrigin {
		return u.String()
	}
	return u.Path
}

// StripQuery removes the query string from a URL string.
func StripQuery(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}
