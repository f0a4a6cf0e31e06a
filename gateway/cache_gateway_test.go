package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"offline-hub/domain"
)

func TestCacheGateway_Match(t *testing.T) {
	t.Run("delegates to the driver", func(t *testing.T) {
		driver := new(MockResponseCachePort)
		gw := NewCacheGateway(driver)

		want := &domain.CachedResponse{Status: 200, Body: []byte("x")}
		driver.On("Match", mock.Anything, domain.NamespacePages, "/articles/1").Return(want, nil)

		got, err := gw.Match(context.Background(), domain.NamespacePages, "/articles/1")
		require.NoError(t, err)
		assert.Same(t, want, got)
	})

	t.Run("rejects unknown namespaces before the driver sees them", func(t *testing.T) {
		driver := new(MockResponseCachePort)
		gw := NewCacheGateway(driver)

		_, err := gw.Match(context.Background(), domain.CacheNamespace("bogus"), "/x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown cache namespace")
		driver.AssertNotCalled(t, "Match", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects empty keys", func(t *testing.T) {
		driver := new(MockResponseCachePort)
		gw := NewCacheGateway(driver)

		_, err := gw.Match(context.Background(), domain.NamespacePages, "")
		require.Error(t, err)
		driver.AssertNotCalled(t, "Match", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("passes ErrNotFound through untouched", func(t *testing.T) {
		driver := new(MockResponseCachePort)
		gw := NewCacheGateway(driver)

		driver.On("Match", mock.Anything, domain.NamespacePages, "/missing").Return(nil, domain.ErrNotFound)

		_, err := gw.Match(context.Background(), domain.NamespacePages, "/missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCacheGateway_Put(t *testing.T) {
	t.Run("rejects nil responses", func(t *testing.T) {
		driver := new(MockResponseCachePort)
		gw := NewCacheGateway(driver)

		err := gw.Put(context.Background(), domain.NamespacePages, "/x", nil)
		require.Error(t, err)
		driver.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("delegates valid writes", func(t *testing.T) {
		driver := new(MockResponseCachePort)
		gw := NewCacheGateway(driver)

		res := &domain.CachedResponse{Status: 200}
		driver.On("Put", mock.Anything, domain.NamespaceAssets, "/app.css", res).Return(nil)

		require.NoError(t, gw.Put(context.Background(), domain.NamespaceAssets, "/app.css", res))
		driver.AssertExpectations(t)
	})
}

func TestCacheGateway_Delete(t *testing.T) {
	driver := new(MockResponseCachePort)
	gw := NewCacheGateway(driver)

	driver.On("Delete", mock.Anything, domain.NamespacePages, "/articles/1").Return(true, nil)

	deleted, err := gw.Delete(context.Background(), domain.NamespacePages, "/articles/1")
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestCacheGateway_Keys(t *testing.T) {
	t.Run("rejects unknown namespaces", func(t *testing.T) {
		gw := NewCacheGateway(new(MockResponseCachePort))

		_, err := gw.Keys(context.Background(), domain.CacheNamespace("bogus"))
		require.Error(t, err)
	})

	t.Run("surfaces driver failures", func(t *testing.T) {
		driver := new(MockResponseCachePort)
		gw := NewCacheGateway(driver)

		driver.On("Keys", mock.Anything, domain.NamespaceImages).Return(nil, errors.New("scan failed"))

		_, err := gw.Keys(context.Background(), domain.NamespaceImages)
		require.Error(t, err)
	})
}
