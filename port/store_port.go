// Package port defines interfaces for external dependencies.
package port

import (
	"context"

	"offline-hub/domain"
)

// LocalStorePort defines the interface for the persistent article mirror.
// Every call is one all-or-nothing transaction; implementations never
// leave partial writes behind on failure.
type LocalStorePort interface {
	// GetAll returns every mirrored article snapshot.
	GetAll(ctx context.Context) ([]domain.ArticleSnapshot, error)

	// Get returns one snapshot by id, or domain.ErrNotFound.
	Get(ctx context.Context, id int64) (*domain.ArticleSnapshot, error)

	// PutMany upserts the given snapshots and returns how many were written.
	PutMany(ctx context.Context, articles []domain.ArticleSnapshot) (int, error)

	// DeleteMany removes the given ids and returns how many rows were deleted.
	DeleteMany(ctx context.Context, ids []int64) (int, error)

	// GetLastSyncTime returns the last successful sync timestamp, or an
	// empty string when no sync has completed yet.
	GetLastSyncTime(ctx context.Context) (string, error)

	// SetLastSyncTime records the end of a successful reconciliation pass.
	SetLastSyncTime(ctx context.Context, timestamp string) error

	// Clear removes all snapshots and metadata.
	Clear(ctx context.Context) error
}
