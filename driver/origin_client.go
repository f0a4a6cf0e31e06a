package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"offline-hub/domain"
)

// OriginClient implements OriginPort against the StoryPile origin.
// Page fetches carry same-origin credentials (a configured session
// cookie); image fetches are always credential-less.
type OriginClient struct {
	baseURL   *url.URL
	cookie    string
	client    *http.Client
	imgClient *http.Client
}

// NewOriginClient creates a new origin client. cookie may be empty when
// the origin does not require a session.
func NewOriginClient(baseURL, cookie string) (*OriginClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid origin URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid origin URL: must start with http:// or https://")
	}

	return &OriginClient{
		baseURL: parsed,
		cookie:  cookie,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		imgClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Origin returns the scheme://host form of the configured origin.
func (c *OriginClient) Origin() string {
	return c.baseURL.Scheme + "://" + c.baseURL.Host
}

// ListArticles fetches the remote article listing as JSON.
func (c *OriginClient) ListArticles(ctx context.Context, updatedSince string) ([]domain.ArticleSnapshot, error) {
	listURL := c.baseURL.JoinPath("/api/articles")
	if updatedSince != "" {
		q := listURL.Query()
		q.Set("updated_since", updatedSince)
		listURL.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build listing request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.attachCredentials(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("article listing fetch failed: %w", domain.ErrOriginUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("article listing returned status %d: %w", resp.StatusCode, domain.ErrOriginUnavailable)
	}

	var articles []domain.ArticleSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
		return nil, fmt.Errorf("failed to decode article listing: %w", err)
	}

	return articles, nil
}

// FetchPage fetches a same-origin page or fragment by pathname.
func (c *OriginClient) FetchPage(ctx context.Context, pathname string) (*domain.CachedResponse, error) {
	pageURL, err := c.baseURL.Parse(pathname)
	if err != nil {
		return nil, fmt.Errorf("invalid pathname %q: %w", pathname, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build page request: %w", err)
	}
	c.attachCredentials(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page fetch for %s failed: %w", pathname, domain.ErrOriginUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("page fetch for %s returned status %d: %w", pathname, resp.StatusCode, domain.ErrOriginUnavailable)
	}

	return readResponse(resp, false)
}

// FetchExternal fetches a resource credential-less. Cross-origin responses
// are marked opaque: they are cached and replayed but never inspected.
func (c *OriginClient) FetchExternal(ctx context.Context, rawURL string) (*domain.CachedResponse, error) {
	extURL, err := c.baseURL.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid external URL %q: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, extURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build external request: %w", err)
	}

	resp, err := c.imgClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("external fetch for %s failed: %w", rawURL, domain.ErrOriginUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("external fetch for %s returned status %d: %w", rawURL, resp.StatusCode, domain.ErrOriginUnavailable)
	}

	opaque := extURL.Host != c.baseURL.Host
	return readResponse(resp, opaque)
}

// CheckHealth probes the origin health endpoint.
func (c *OriginClient) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.JoinPath("/up").String(), nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", domain.ErrOriginUnavailable)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("health check returned status %d: %w", resp.StatusCode, domain.ErrOriginUnavailable)
	}

	return nil
}

// attachCredentials adds the configured same-origin session cookie.
func (c *OriginClient) attachCredentials(req *http.Request) {
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}
}

// readResponse drains a response into a CachedResponse. Opaque entries
// record no status; replaying them yields 200 with the stored body.
func readResponse(resp *http.Response, opaque bool) (*domain.CachedResponse, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	cached := &domain.CachedResponse{
		Body:     body,
		Opaque:   opaque,
		StoredAt: time.Now(),
	}

	if opaque {
		return cached, nil
	}

	cached.Status = resp.StatusCode
	cached.Headers = make(map[string]string, len(resp.Header))
	for name := range resp.Header {
		cached.Headers[name] = resp.Header.Get(name)
	}

	return cached, nil
}
