// Package usecase contains business logic for offline-hub.
package usecase

import (
	"sync"
	"time"

	"offline-hub/domain"
)

// SignalBus fans sync and connectivity signals out to presentation
// listeners. It is the only coupling point between the engine and
// whatever renders status to the user.
type SignalBus struct {
	mu        sync.RWMutex
	listeners []func(domain.Signal)
	last      domain.Signal
}

// NewSignalBus creates a new SignalBus.
func NewSignalBus() *SignalBus {
	return &SignalBus{}
}

// Subscribe registers a listener. Listeners are invoked synchronously in
// registration order; they must not block.
func (b *SignalBus) Subscribe(fn func(domain.Signal)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// Publish delivers a signal to every listener.
func (b *SignalBus) Publish(sig domain.Signal) {
	if sig.EmittedAt.IsZero() {
		sig.EmittedAt = time.Now()
	}

	b.mu.Lock()
	b.last = sig
	listeners := make([]func(domain.Signal), len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(sig)
	}
}

// Last returns the most recently published signal. The zero Signal is
// returned before anything has been published.
func (b *SignalBus) Last() domain.Signal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last
}
