package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"offline-hub/domain"
)

func TestShellWarmup_Warm(t *testing.T) {
	t.Run("caches shell documents and external assets", func(t *testing.T) {
		cache := new(MockResponseCachePort)
		origin := new(MockOriginPort)

		doc := &domain.CachedResponse{Status: 200, Body: []byte("<html></html>")}
		asset := &domain.CachedResponse{Opaque: true, Body: []byte("css")}

		origin.On("FetchPage", mock.Anything, domain.ShellListingPath).Return(doc, nil)
		origin.On("FetchPage", mock.Anything, domain.ShellDetailPath).Return(doc, nil)
		origin.On("FetchExternal", mock.Anything, "https://cdn.example.com/bootstrap.css").Return(asset, nil)

		cache.On("Put", mock.Anything, domain.NamespacePages, domain.ShellListingPath, doc).Return(nil)
		cache.On("Put", mock.Anything, domain.NamespacePages, domain.ShellDetailPath, doc).Return(nil)
		cache.On("Put", mock.Anything, domain.NamespaceAssets, "https://cdn.example.com/bootstrap.css", asset).Return(nil)

		warmup := NewShellWarmup(cache, origin, []string{"https://cdn.example.com/bootstrap.css"}, discardLogger())
		warmup.Warm(context.Background())

		origin.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("fetch failures are skipped, the rest still warms", func(t *testing.T) {
		cache := new(MockResponseCachePort)
		origin := new(MockOriginPort)

		doc := &domain.CachedResponse{Status: 200, Body: []byte("<html></html>")}
		origin.On("FetchPage", mock.Anything, domain.ShellListingPath).Return(nil, errors.New("offline"))
		origin.On("FetchPage", mock.Anything, domain.ShellDetailPath).Return(doc, nil)
		cache.On("Put", mock.Anything, domain.NamespacePages, domain.ShellDetailPath, doc).Return(nil)

		warmup := NewShellWarmup(cache, origin, nil, discardLogger())
		require.NotPanics(t, func() {
			warmup.Warm(context.Background())
		})

		cache.AssertNumberOfCalls(t, "Put", 1)
	})
}
