package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"offline-hub/domain"
)

func watcherFixture() (*ConnectivityWatcher, *MockOriginPort, *[]domain.Signal) {
	store := new(MockLocalStorePort)
	cache := new(MockResponseCachePort)
	origin := new(MockOriginPort)

	// A sync triggered by the watcher finds nothing to do.
	origin.On("ListArticles", mock.Anything, "").Return([]domain.ArticleSnapshot{}, nil)
	store.On("GetAll", mock.Anything).Return(nil, nil)

	bus := NewSignalBus()
	signals := &[]domain.Signal{}
	bus.Subscribe(func(sig domain.Signal) {
		*signals = append(*signals, sig)
	})

	sync := NewSyncUsecase(store, cache, origin, bus, discardLogger())
	watcher := NewConnectivityWatcher(origin, sync, bus, time.Minute, discardLogger())
	return watcher, origin, signals
}

func TestConnectivityWatcher_Probe(t *testing.T) {
	t.Run("healthy origin at startup triggers a sync without an online signal", func(t *testing.T) {
		watcher, origin, signals := watcherFixture()
		origin.On("CheckHealth", mock.Anything).Return(nil)

		watcher.probe(context.Background())

		assert.True(t, watcher.Online())
		origin.AssertCalled(t, "ListArticles", mock.Anything, "")
		assert.Empty(t, *signals)
	})

	t.Run("unreachable origin at startup goes offline", func(t *testing.T) {
		watcher, origin, signals := watcherFixture()
		origin.On("CheckHealth", mock.Anything).Return(domain.ErrOriginUnavailable)

		watcher.probe(context.Background())

		assert.False(t, watcher.Online())
		origin.AssertNotCalled(t, "ListArticles", mock.Anything, mock.Anything)
		require.Len(t, *signals, 1)
		assert.Equal(t, domain.SignalOffline, (*signals)[0].Type)
	})

	t.Run("recovery publishes online and triggers a sync", func(t *testing.T) {
		watcher, origin, signals := watcherFixture()
		origin.On("CheckHealth", mock.Anything).Return(domain.ErrOriginUnavailable).Once()
		origin.On("CheckHealth", mock.Anything).Return(nil)

		ctx := context.Background()
		watcher.probe(ctx)
		watcher.probe(ctx)

		assert.True(t, watcher.Online())
		origin.AssertCalled(t, "ListArticles", mock.Anything, "")

		types := make([]domain.SignalType, 0, len(*signals))
		for _, sig := range *signals {
			types = append(types, sig.Type)
		}
		assert.Contains(t, types, domain.SignalOffline)
		assert.Contains(t, types, domain.SignalOnline)
	})

	t.Run("steady online state stays quiet", func(t *testing.T) {
		watcher, origin, signals := watcherFixture()
		origin.On("CheckHealth", mock.Anything).Return(nil)

		ctx := context.Background()
		watcher.probe(ctx)
		watcher.probe(ctx)
		watcher.probe(ctx)

		// Only the startup probe syncs; later healthy probes are not
		// transitions and must not trigger more passes.
		origin.AssertNumberOfCalls(t, "ListArticles", 1)
		assert.Empty(t, *signals)
	})

	t.Run("losing connectivity publishes offline once", func(t *testing.T) {
		watcher, origin, signals := watcherFixture()
		origin.On("CheckHealth", mock.Anything).Return(nil).Once()
		origin.On("CheckHealth", mock.Anything).Return(domain.ErrOriginUnavailable)

		ctx := context.Background()
		watcher.probe(ctx)
		watcher.probe(ctx)
		watcher.probe(ctx)

		assert.False(t, watcher.Online())
		require.Len(t, *signals, 1)
		assert.Equal(t, domain.SignalOffline, (*signals)[0].Type)
	})
}

func TestConnectivityWatcher_Run(t *testing.T) {
	t.Run("stops when the context is cancelled", func(t *testing.T) {
		watcher, origin, _ := watcherFixture()
		origin.On("CheckHealth", mock.Anything).Return(domain.ErrOriginUnavailable)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			watcher.Run(ctx)
			close(done)
		}()

		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("watcher did not stop")
		}
	})
}
