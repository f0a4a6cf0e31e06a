package domain

import (
	"fmt"
	"time"
)

// CacheNamespace identifies one of the named response caches.
type CacheNamespace string

// Cache namespaces. Pages and images entries for an article are owned by
// the sync engine; assets entries are populated lazily by the router.
const (
	// NamespacePages holds HTML documents and card fragments keyed by pathname.
	NamespacePages CacheNamespace = "pages"
	// NamespaceAssets holds scripts, styles and fonts.
	NamespaceAssets CacheNamespace = "assets"
	// NamespaceImages holds article images, including cross-origin ones.
	NamespaceImages CacheNamespace = "images"
)

// validNamespaces contains all valid cache namespaces.
var validNamespaces = map[CacheNamespace]bool{
	NamespacePages:  true,
	NamespaceAssets: true,
	NamespaceImages: true,
}

// AllNamespaces returns every known namespace in stable order.
func AllNamespaces() []CacheNamespace {
	return []CacheNamespace{NamespacePages, NamespaceAssets, NamespaceImages}
}

// IsValid returns true if the namespace is a known cache namespace.
func (n CacheNamespace) IsValid() bool {
	return validNamespaces[n]
}

// String returns the string representation of the namespace.
func (n CacheNamespace) String() string {
	return string(n)
}

// CachedResponse is a stored HTTP response: an opaque byte blob plus
// headers, addressed by a canonical key. Opaque entries come from
// credential-less cross-origin fetches; their body is replayed verbatim
// but never inspected.
type CachedResponse struct {
	// Status is the upstream HTTP status code. Zero for opaque entries.
	Status int `json:"status"`
	// Headers are the response headers worth replaying (flattened).
	Headers map[string]string `json:"headers,omitempty"`
	// Body is the raw response body.
	Body []byte `json:"body"`
	// Opaque marks cross-origin responses cached without inspection.
	Opaque bool `json:"opaque,omitempty"`
	// StoredAt is when the entry was written.
	StoredAt time.Time `json:"stored_at"`
}

// ContentType returns the stored Content-Type header, if any.
func (r *CachedResponse) ContentType() string {
	return r.Headers["Content-Type"]
}

// CacheOutcomeKind classifies the result of caching one article's pages.
type CacheOutcomeKind string

const (
	// OutcomeCached means all page entries for the article were stored.
	OutcomeCached CacheOutcomeKind = "cached"
	// OutcomeSkipped means the article was skipped after a failure.
	OutcomeSkipped CacheOutcomeKind = "skipped"
)

// CacheOutcome is the per-article result of the page-caching step.
// Failures are recorded here instead of aborting the batch.
type CacheOutcome struct {
	ArticleID int64
	Kind      CacheOutcomeKind
	// Reason explains a skip. Empty for cached outcomes.
	Reason string
}

// CacheReport aggregates per-article outcomes for one caching batch.
type CacheReport struct {
	Outcomes []CacheOutcome
}

// Add records an outcome.
func (r *CacheReport) Add(id int64, kind CacheOutcomeKind, reason string) {
	r.Outcomes = append(r.Outcomes, CacheOutcome{ArticleID: id, Kind: kind, Reason: reason})
}

// CachedCount returns how many articles were fully cached.
func (r *CacheReport) CachedCount() int {
	count := 0
	for _, o := range r.Outcomes {
		if o.Kind == OutcomeCached {
			count++
		}
	}
	return count
}

// SkippedCount returns how many articles were skipped.
func (r *CacheReport) SkippedCount() int {
	return len(r.Outcomes) - r.CachedCount()
}

// ArticlePagePath returns the canonical detail page pathname for an article.
func ArticlePagePath(id int64) string {
	return fmt.Sprintf("/articles/%d", id)
}

// ArticleCardPath returns the canonical desktop card fragment pathname.
func ArticleCardPath(id int64) string {
	return fmt.Sprintf("/articles/%d/card", id)
}

// ArticleCardSmallPath returns the canonical mobile card fragment pathname.
func ArticleCardSmallPath(id int64) string {
	return fmt.Sprintf("/articles/%d/card_sm", id)
}

// ArticleListingPath is the canonical pathname of the article listing page.
const ArticleListingPath = "/articles"

// Offline shell documents, cached into the pages namespace at warmup.
const (
	ShellListingPath = "/offline/index.html"
	ShellDetailPath  = "/offline/show.html"
)
