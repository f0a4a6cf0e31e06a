package domain

import "time"

// SignalType identifies a sync engine or connectivity signal.
type SignalType string

// Signal types. These signals are the only coupling point between the
// engine and presentation code.
const (
	// SignalSyncStarted is emitted when a reconciliation pass begins
	// applying a non-empty change set.
	SignalSyncStarted SignalType = "SyncStarted"
	// SignalSyncComplete is emitted after a successful apply.
	SignalSyncComplete SignalType = "SyncComplete"
	// SignalSyncFailed is emitted when a reconciliation pass fails.
	SignalSyncFailed SignalType = "SyncFailed"
	// SignalOnline is emitted when origin connectivity is restored.
	SignalOnline SignalType = "Online"
	// SignalOffline is emitted when origin connectivity is lost.
	SignalOffline SignalType = "Offline"
)

// Signal is one structured status event.
type Signal struct {
	// Type identifies what kind of signal this is.
	Type SignalType
	// PassID identifies the reconciliation pass, when applicable.
	PassID string
	// NewCount, UpdatedCount and DeletedCount carry apply counts for
	// SyncComplete signals.
	NewCount     int
	UpdatedCount int
	DeletedCount int
	// Error carries the failure message for SyncFailed signals.
	Error string
	// EmittedAt is when the signal was produced.
	EmittedAt time.Time
}

// TotalChanges returns the number of applied changes for a completion
// signal.
func (s Signal) TotalChanges() int {
	return s.NewCount + s.UpdatedCount + s.DeletedCount
}
