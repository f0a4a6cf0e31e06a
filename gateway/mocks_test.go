package gateway

import (
	"context"

	"github.com/stretchr/testify/mock"

	"offline-hub/domain"
)

// MockLocalStorePort is a mock implementation of port.LocalStorePort.
type MockLocalStorePort struct {
	mock.Mock
}

func (m *MockLocalStorePort) GetAll(ctx context.Context) ([]domain.ArticleSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ArticleSnapshot), args.Error(1)
}

func (m *MockLocalStorePort) Get(ctx context.Context, id int64) (*domain.ArticleSnapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ArticleSnapshot), args.Error(1)
}

func (m *MockLocalStorePort) PutMany(ctx context.Context, articles []domain.ArticleSnapshot) (int, error) {
	args := m.Called(ctx, articles)
	return args.Int(0), args.Error(1)
}

func (m *MockLocalStorePort) DeleteMany(ctx context.Context, ids []int64) (int, error) {
	args := m.Called(ctx, ids)
	return args.Int(0), args.Error(1)
}

func (m *MockLocalStorePort) GetLastSyncTime(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockLocalStorePort) SetLastSyncTime(ctx context.Context, timestamp string) error {
	args := m.Called(ctx, timestamp)
	return args.Error(0)
}

func (m *MockLocalStorePort) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockResponseCachePort is a mock implementation of port.ResponseCachePort.
type MockResponseCachePort struct {
	mock.Mock
}

func (m *MockResponseCachePort) Match(ctx context.Context, ns domain.CacheNamespace, key string) (*domain.CachedResponse, error) {
	args := m.Called(ctx, ns, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CachedResponse), args.Error(1)
}

func (m *MockResponseCachePort) Put(ctx context.Context, ns domain.CacheNamespace, key string, res *domain.CachedResponse) error {
	args := m.Called(ctx, ns, key, res)
	return args.Error(0)
}

func (m *MockResponseCachePort) Delete(ctx context.Context, ns domain.CacheNamespace, key string) (bool, error) {
	args := m.Called(ctx, ns, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockResponseCachePort) Keys(ctx context.Context, ns domain.CacheNamespace) ([]string, error) {
	args := m.Called(ctx, ns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockOriginPort is a mock implementation of port.OriginPort.
type MockOriginPort struct {
	mock.Mock
}

func (m *MockOriginPort) ListArticles(ctx context.Context, updatedSince string) ([]domain.ArticleSnapshot, error) {
	args := m.Called(ctx, updatedSince)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ArticleSnapshot), args.Error(1)
}

func (m *MockOriginPort) FetchPage(ctx context.Context, pathname string) (*domain.CachedResponse, error) {
	args := m.Called(ctx, pathname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CachedResponse), args.Error(1)
}

func (m *MockOriginPort) FetchExternal(ctx context.Context, rawURL string) (*domain.CachedResponse, error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CachedResponse), args.Error(1)
}

func (m *MockOriginPort) CheckHealth(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
