package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"sort"
	"strings"
	"time"

	"offline-hub/domain"
	"offline-hub/port"
	"offline-hub/utils"
)

// RenderUsecase reconstructs listing and detail views from the local
// mirror and the pages cache, with no live network dependency. It is
// invoked only when a navigation has no live document to serve.
type RenderUsecase struct {
	store     port.LocalStorePort
	cache     port.ResponseCachePort
	sanitizer *utils.Sanitizer
	logger    *slog.Logger
}

// NewRenderUsecase creates a new RenderUsecase.
func NewRenderUsecase(store port.LocalStorePort, cache port.ResponseCachePort, logger *slog.Logger) *RenderUsecase {
	return &RenderUsecase{
		store:     store,
		cache:     cache,
		sanitizer: utils.NewSanitizer(),
		logger:    logger,
	}
}

var listingTemplate = template.Must(template.New("listing").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>StoryPile — Offline</title>
</head>
<body>
<div class="container py-3">
  <div class="alert alert-secondary" role="status">
    <strong>Offline.</strong> Showing your synced articles.
  </div>
  <div class="row g-3" id="articles-container">
  {{if .Cards}}{{range .Cards}}
    <div class="col-12 col-sm-4">{{.}}</div>
  {{end}}{{else}}
    <div class="col-12 text-center py-5">
      <h5 class="text-muted">No articles available offline</h5>
      <p class="text-muted">Connect to the internet and sync your articles to read them offline.</p>
    </div>
  {{end}}
  </div>
</div>
</body>
</html>
`))

var cardTemplate = template.Must(template.New("card").Parse(`<div class="card h-100">
  {{if .ImageLink}}<img src="{{.ImageLink}}" class="card-img-top" alt="">{{end}}
  <div class="card-body">
    <h5 class="card-title"><a href="/articles/{{.ID}}">{{.Headline}}</a></h5>
    {{if .Subheadline}}<p class="card-text text-muted">{{.Subheadline}}</p>{{end}}
  </div>
</div>`))

var detailTemplate = template.Must(template.New("detail").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Article.Headline}} — Offline</title>
</head>
<body>
<div class="container py-3" id="article-container">
  <div class="alert alert-secondary" role="status">
    <strong>Offline.</strong> Links and actions are disabled until you reconnect.
  </div>
  <h1 class="mb-2">{{.Article.Headline}}</h1>
  {{if .Article.Subheadline}}<p class="lead text-muted mb-3">{{.Article.Subheadline}}</p>{{end}}
  <div class="d-flex align-items-center gap-2 flex-wrap mb-3">
    {{if .Domain}}<span class="btn btn-secondary btn-sm disabled">{{.Domain}}</span>{{end}}
    {{range .Tags}}<span class="badge bg-secondary">{{.}}</span>{{end}}
    {{if .SavedAt}}<small class="text-muted">Saved: {{.SavedAt}}</small>{{end}}
  </div>
  {{if .Article.ImageLink}}<div class="mb-3"><img src="{{.Article.ImageLink}}" class="w-100 rounded" alt=""></div>{{end}}
  {{if .Article.Summary}}
  <div class="card mb-3">
    <div class="card-body">
      <h6 class="card-title">Summary</h6>
      <p class="card-text mb-0">{{.Article.Summary}}</p>
    </div>
  </div>
  {{end}}
  <article>
  {{range .Paragraphs}}<p>{{.}}</p>
  {{end}}
  </article>
</div>
</body>
</html>
`))

// RenderListing reconstructs the article listing from the mirror.
// Snapshots are sorted newest first and archived articles are hidden.
// Each entry uses its cached card fragment when present; otherwise an
// equivalent fragment is synthesized from the snapshot so the listing
// always renders, even with an incomplete fragment cache.
func (u *RenderUsecase) RenderListing(ctx context.Context) (string, error) {
	articles, err := u.store.GetAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load snapshots: %w", err)
	}

	sort.Slice(articles, func(i, j int) bool {
		return articleTime(articles[i]).After(articleTime(articles[j]))
	})

	var cards []template.HTML
	for _, article := range articles {
		if article.Archived {
			continue
		}
		cards = append(cards, u.listingCard(ctx, article))
	}

	var buf bytes.Buffer
	if err := listingTemplate.Execute(&buf, struct {
		Cards []template.HTML
	}{Cards: cards}); err != nil {
		return "", fmt.Errorf("failed to render listing: %w", err)
	}

	return buf.String(), nil
}

// RenderDetail reconstructs one article view from the snapshot whose id
// is embedded in the request path. Returns domain.ErrNotFound when the
// mirror has no such article.
func (u *RenderUsecase) RenderDetail(ctx context.Context, path string) (string, error) {
	id, ok := domain.ArticleIDFromPath(path)
	if !ok {
		return "", fmt.Errorf("no article id in path %q: %w", path, domain.ErrNotFound)
	}

	article, err := u.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("failed to load snapshot %d: %w", id, err)
	}

	data := struct {
		Article    *domain.ArticleSnapshot
		Domain     string
		SavedAt    string
		Tags       []string
		Paragraphs []string
	}{
		Article:    article,
		Domain:     linkDomain(article.Link),
		SavedAt:    savedDate(article.CreatedAt),
		Tags:       splitTags(article.Tags),
		Paragraphs: splitParagraphs(article.Body),
	}

	var buf bytes.Buffer
	if err := detailTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render article %d: %w", id, err)
	}

	return buf.String(), nil
}

// listingCard returns the card markup for one listing entry: the cached
// fragment, sanitized, or a synthesized fallback.
func (u *RenderUsecase) listingCard(ctx context.Context, article domain.ArticleSnapshot) template.HTML {
	cached, err := u.cache.Match(ctx, domain.NamespacePages, domain.ArticleCardPath(article.ID))
	if err == nil && !cached.Opaque {
		return template.HTML(u.sanitizer.SanitizeHTML(string(cached.Body)))
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		u.logger.WarnContext(ctx, "card fragment lookup failed",
			"article_id", article.ID,
			"error", err,
		)
	}

	var buf bytes.Buffer
	if err := cardTemplate.Execute(&buf, article); err != nil {
		u.logger.WarnContext(ctx, "failed to synthesize card", "article_id", article.ID, "error", err)
		return ""
	}

	return template.HTML(buf.String())
}

func articleTime(a domain.ArticleSnapshot) time.Time {
	parsed, err := time.Parse(time.RFC3339, a.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func savedDate(createdAt string) string {
	parsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return ""
	}
	return parsed.Format("January 2, 2006")
}

func linkDomain(link string) string {
	if link == "" {
		return ""
	}
	trimmed := strings.TrimPrefix(strings.TrimPrefix(link, "https://"), "http://")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return trimmed
}

func splitTags(tags string) []string {
	if tags == "" {
		return nil
	}
	var out []string
	for _, tag := range strings.Split(tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func splitParagraphs(body string) []string {
	var out []string
	for _, para := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n\n") {
		if para = strings.TrimSpace(para); para != "" {
			out = append(out, para)
		}
	}
	return out
}
