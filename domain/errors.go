package domain

import "errors"

// Sentinel errors shared across layers. A cache or store miss is a normal
// branch outcome, distinguished from real failures with errors.Is.
var (
	// ErrNotFound signals an absent article snapshot or cache entry.
	ErrNotFound = errors.New("not found")
	// ErrSyncInFlight signals that a reconciliation pass is already
	// running. The call that receives it was dropped, not deferred.
	ErrSyncInFlight = errors.New("sync already in flight")
	// ErrOriginUnavailable signals that the origin rejected a fetch or
	// answered with a non-ok status.
	ErrOriginUnavailable = errors.New("origin unavailable")
)
