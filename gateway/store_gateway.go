package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"offline-hub/domain"
	"offline-hub/port"
)

// StoreGateway implements LocalStorePort using a driver, validating
// snapshots before they reach the persistent mirror.
type StoreGateway struct {
	driver port.LocalStorePort
}

// NewStoreGateway creates a new StoreGateway.
func NewStoreGateway(driver port.LocalStorePort) *StoreGateway {
	return &StoreGateway{driver: driver}
}

// GetAll returns every article snapshot in the mirror.
func (g *StoreGateway) GetAll(ctx context.Context) ([]domain.ArticleSnapshot, error) {
	articles, err := g.driver.GetAll(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "reading article mirror failed", "error", err)
		return nil, err
	}
	return articles, nil
}

// Get returns one snapshot by id, or domain.ErrNotFound.
func (g *StoreGateway) Get(ctx context.Context, id int64) (*domain.ArticleSnapshot, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid article id %d", id)
	}
	return g.driver.Get(ctx, id)
}

// PutMany upserts snapshots and returns how many were written. Invalid
// snapshots reject the whole batch: a partial upsert would leave the
// mirror inconsistent with the reconciliation pass that produced it.
func (g *StoreGateway) PutMany(ctx context.Context, articles []domain.ArticleSnapshot) (int, error) {
	for _, a := range articles {
		if err := a.Validate(); err != nil {
			return 0, fmt.Errorf("invalid snapshot %d: %w", a.ID, err)
		}
	}

	count, err := g.driver.PutMany(ctx, articles)
	if err != nil {
		slog.ErrorContext(ctx, "article upsert failed", "count", len(articles), "error", err)
		return 0, err
	}
	return count, nil
}

// DeleteMany removes snapshots by id and returns how many existed.
func (g *StoreGateway) DeleteMany(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	count, err := g.driver.DeleteMany(ctx, ids)
	if err != nil {
		slog.ErrorContext(ctx, "article deletion failed", "count", len(ids), "error", err)
		return 0, err
	}
	return count, nil
}

// GetLastSyncTime returns the stored sync timestamp, empty when no pass
// has completed yet.
func (g *StoreGateway) GetLastSyncTime(ctx context.Context) (string, error) {
	return g.driver.GetLastSyncTime(ctx)
}

// SetLastSyncTime records the completion timestamp of a pass.
func (g *StoreGateway) SetLastSyncTime(ctx context.Context, timestamp string) error {
	if timestamp == "" {
		return errors.New("sync timestamp is empty")
	}
	return g.driver.SetLastSyncTime(ctx, timestamp)
}

// Clear empties the mirror and its metadata.
func (g *StoreGateway) Clear(ctx context.Context) error {
	return g.driver.Clear(ctx)
}
