package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offline-hub/domain"
)

func TestSignalBus(t *testing.T) {
	t.Run("delivers to every listener in order", func(t *testing.T) {
		bus := NewSignalBus()

		var first, second []domain.SignalType
		bus.Subscribe(func(sig domain.Signal) { first = append(first, sig.Type) })
		bus.Subscribe(func(sig domain.Signal) { second = append(second, sig.Type) })

		bus.Publish(domain.Signal{Type: domain.SignalSyncStarted})
		bus.Publish(domain.Signal{Type: domain.SignalSyncComplete})

		want := []domain.SignalType{domain.SignalSyncStarted, domain.SignalSyncComplete}
		assert.Equal(t, want, first)
		assert.Equal(t, want, second)
	})

	t.Run("fills EmittedAt when absent", func(t *testing.T) {
		bus := NewSignalBus()

		var got domain.Signal
		bus.Subscribe(func(sig domain.Signal) { got = sig })
		bus.Publish(domain.Signal{Type: domain.SignalOnline})

		assert.False(t, got.EmittedAt.IsZero())
	})

	t.Run("Last returns the most recent signal", func(t *testing.T) {
		bus := NewSignalBus()

		assert.Empty(t, bus.Last().Type)

		bus.Publish(domain.Signal{Type: domain.SignalOffline})
		bus.Publish(domain.Signal{Type: domain.SignalOnline})

		assert.Equal(t, domain.SignalOnline, bus.Last().Type)
	})

	t.Run("publishing without listeners is safe", func(t *testing.T) {
		bus := NewSignalBus()
		require.NotPanics(t, func() {
			bus.Publish(domain.Signal{Type: domain.SignalSyncFailed})
		})
	})
}
