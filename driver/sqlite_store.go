// Package driver provides implementations for external dependencies.
package driver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"offline-hub/domain"
)

// schemaVersion is the current schema version, recorded in PRAGMA
// user_version. It must only ever increase.
const schemaVersion = 1

const lastSyncTimeKey = "lastSyncTime"

// migrations holds the schema migration statements per version.
// migrations[n] brings the schema from version n to version n+1.
// Statements are idempotent so reopening an initialized store never
// alters existing data.
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS articles (
			id INTEGER PRIMARY KEY,
			headline TEXT NOT NULL DEFAULT '',
			subheadline TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			image_link TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '',
			link TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL DEFAULT '',
			favourited INTEGER NOT NULL DEFAULT 0,
			archived INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_updated_at ON articles (updated_at)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	},
}

// SQLiteStore implements LocalStorePort on an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (and migrates) the article mirror under dataDir.
// The database is opened with WAL mode and a single writer, matching
// SQLite's concurrency model.
func OpenSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "offline-hub.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the schema version recorded in the database.
func (s *SQLiteStore) SchemaVersion() (int, error) {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// migrate applies pending schema migrations. Each version is applied in
// one transaction together with the user_version bump.
func (s *SQLiteStore) migrate() error {
	current, err := s.SchemaVersion()
	if err != nil {
		return err
	}
	if current > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, schemaVersion)
	}

	for version := current; version < schemaVersion; version++ {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}

		for _, stmt := range migrations[version] {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration to version %d failed: %w", version+1, err)
			}
		}

		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to bump schema version: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration to version %d: %w", version+1, err)
		}
	}

	return nil
}

// GetAll returns every mirrored article snapshot.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]domain.ArticleSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, headline, subheadline, body, summary, image_link, tags,
		       link, created_at, updated_at, favourited, archived
		FROM articles`)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.ArticleSnapshot
	for rows.Next() {
		var a domain.ArticleSnapshot
		if err := rows.Scan(&a.ID, &a.Headline, &a.Subheadline, &a.Body, &a.Summary,
			&a.ImageLink, &a.Tags, &a.Link, &a.CreatedAt, &a.UpdatedAt,
			&a.Favourited, &a.Archived); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate article rows: %w", err)
	}

	return articles, nil
}

// Get returns one snapshot by id, or domain.ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*domain.ArticleSnapshot, error) {
	var a domain.ArticleSnapshot
	err := s.db.QueryRowContext(ctx, `
		SELECT id, headline, subheadline, body, summary, image_link, tags,
		       link, created_at, updated_at, favourited, archived
		FROM articles WHERE id = ?`, id).
		Scan(&a.ID, &a.Headline, &a.Subheadline, &a.Body, &a.Summary,
			&a.ImageLink, &a.Tags, &a.Link, &a.CreatedAt, &a.UpdatedAt,
			&a.Favourited, &a.Archived)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article %d: %w", id, err)
	}

	return &a, nil
}

// PutMany upserts the given snapshots in one transaction.
func (s *SQLiteStore) PutMany(ctx context.Context, articles []domain.ArticleSnapshot) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO articles (id, headline, subheadline, body, summary, image_link,
		                      tags, link, created_at, updated_at, favourited, archived)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			headline = excluded.headline,
			subheadline = excluded.subheadline,
			body = excluded.body,
			summary = excluded.summary,
			image_link = excluded.image_link,
			tags = excluded.tags,
			link = excluded.link,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			favourited = excluded.favourited,
			archived = excluded.archived`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, a := range articles {
		if err := a.Validate(); err != nil {
			return 0, fmt.Errorf("invalid article snapshot: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, a.ID, a.Headline, a.Subheadline, a.Body,
			a.Summary, a.ImageLink, a.Tags, a.Link, a.CreatedAt, a.UpdatedAt,
			a.Favourited, a.Archived); err != nil {
			return 0, fmt.Errorf("failed to upsert article %d: %w", a.ID, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit upserts: %w", err)
	}

	return saved, nil
}

// DeleteMany removes the given ids in one transaction.
func (s *SQLiteStore) DeleteMany(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleted := 0
	for _, id := range ids {
		result, err := tx.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", id)
		if err != nil {
			return 0, fmt.Errorf("failed to delete article %d: %w", id, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to count deleted rows: %w", err)
		}
		deleted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit deletes: %w", err)
	}

	return deleted, nil
}

// GetLastSyncTime returns the recorded last sync timestamp, or an empty
// string when no sync has completed yet.
func (s *SQLiteStore) GetLastSyncTime(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM meta WHERE key = ?", lastSyncTimeKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last sync time: %w", err)
	}

	return value, nil
}

// SetLastSyncTime records the end of a successful reconciliation pass.
func (s *SQLiteStore) SetLastSyncTime(ctx context.Context, timestamp string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		lastSyncTimeKey, timestamp)
	if err != nil {
		return fmt.Errorf("failed to set last sync time: %w", err)
	}

	return nil
}

// Clear removes all snapshots and metadata in one transaction.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM articles"); err != nil {
		return fmt.Errorf("failed to clear articles: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM meta"); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clear: %w", err)
	}

	return nil
}
