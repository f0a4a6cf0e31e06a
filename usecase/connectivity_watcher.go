package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"offline-hub/domain"
	"offline-hub/metrics"
	"offline-hub/port"
)

// ConnectivityWatcher probes the origin health endpoint and triggers a
// reconciliation pass whenever connectivity is restored. There is no
// backoff: repeated online/offline flapping triggers repeated passes,
// each independently protected by the sync latch.
type ConnectivityWatcher struct {
	origin   port.OriginPort
	sync     *SyncUsecase
	bus      *SignalBus
	interval time.Duration
	logger   *slog.Logger

	online  atomic.Bool
	started atomic.Bool
}

// NewConnectivityWatcher creates a new ConnectivityWatcher.
func NewConnectivityWatcher(
	origin port.OriginPort,
	sync *SyncUsecase,
	bus *SignalBus,
	interval time.Duration,
	logger *slog.Logger,
) *ConnectivityWatcher {
	return &ConnectivityWatcher{
		origin:   origin,
		sync:     sync,
		bus:      bus,
		interval: interval,
		logger:   logger,
	}
}

// Online reports the last observed connectivity state.
func (w *ConnectivityWatcher) Online() bool {
	return w.online.Load()
}

// Run probes connectivity until the context is cancelled. The first
// probe runs immediately; a sync is triggered right away when the
// origin is reachable at startup.
func (w *ConnectivityWatcher) Run(ctx context.Context) {
	w.probe(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.probe(ctx)
		}
	}
}

// probe checks the origin once and handles state transitions.
func (w *ConnectivityWatcher) probe(ctx context.Context) {
	err := w.origin.CheckHealth(ctx)
	nowOnline := err == nil

	first := !w.started.Swap(true)
	wasOnline := w.online.Swap(nowOnline)
	metrics.SetOriginOnline(nowOnline)

	switch {
	case nowOnline && (first || !wasOnline):
		if !first {
			w.logger.InfoContext(ctx, "back online, checking for changes")
			w.bus.Publish(domain.Signal{Type: domain.SignalOnline})
		}
		if err := w.sync.CheckAndSync(ctx); err != nil && !errors.Is(err, domain.ErrSyncInFlight) {
			w.logger.ErrorContext(ctx, "connectivity-triggered sync failed", "error", err)
		}
	case !nowOnline && (first || wasOnline):
		w.logger.InfoContext(ctx, "origin unreachable, going offline", "error", err)
		w.bus.Publish(domain.Signal{Type: domain.SignalOffline})
	}
}
